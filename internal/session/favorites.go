package session

import (
	"encoding/json"
	"log/slog"
	"slices"

	"SementesSocial/internal/localstore"
)

const FavoritesKey = "ranking-favoritos"

// Favorites is the ranking page's set of favorited user ids. It is unrelated
// to friendships and lives under its own key.
type Favorites struct {
	storage localstore.Storage
	logger  *slog.Logger
}

func NewFavorites(storage localstore.Storage, logger *slog.Logger) *Favorites {
	if logger == nil {
		logger = slog.Default()
	}
	return &Favorites{storage: storage, logger: logger}
}

func (f *Favorites) List() []string {
	raw, ok, err := f.storage.Get(FavoritesKey)
	if err != nil {
		f.logger.Warn("favorites: read failed", "err", err)
		return nil
	}
	if !ok {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		f.logger.Warn("favorites: discarding malformed record", "err", err)
		if rmErr := f.storage.Remove(FavoritesKey); rmErr != nil {
			f.logger.Error("favorites: remove malformed record failed", "err", rmErr)
		}
		return nil
	}
	return ids
}

func (f *Favorites) Contains(id string) bool {
	return slices.Contains(f.List(), id)
}

// Toggle adds or removes id and reports whether it is now a favorite.
func (f *Favorites) Toggle(id string) (bool, error) {
	ids := f.List()
	added := false
	if i := slices.Index(ids, id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	} else {
		ids = append(ids, id)
		added = true
	}
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return false, err
	}
	if err := f.storage.Set(FavoritesKey, string(b)); err != nil {
		return false, err
	}
	return added, nil
}
