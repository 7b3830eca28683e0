// Package session resolves the signed-in actor from the client-held session
// record. A Provider is built once at the root and injected where needed.
package session

import (
	"encoding/json"
	"log/slog"
	"strings"

	"SementesSocial/internal/domain"
	"SementesSocial/internal/localstore"
)

const Key = "usuario-dados"

type Provider struct {
	storage localstore.Storage
	logger  *slog.Logger
}

func NewProvider(storage localstore.Storage, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{storage: storage, logger: logger}
}

// Actor returns the stored actor. A missing record yields false; a malformed
// one is removed from storage and also yields false.
func (p *Provider) Actor() (domain.Actor, bool) {
	raw, ok, err := p.storage.Get(Key)
	if err != nil {
		p.logger.Warn("session: read failed", "err", err)
		return domain.Actor{}, false
	}
	if !ok {
		return domain.Actor{}, false
	}

	var a domain.Actor
	if err := json.Unmarshal([]byte(raw), &a); err != nil || strings.TrimSpace(a.ID) == "" {
		p.logger.Warn("session: discarding malformed record", "err", err)
		if rmErr := p.storage.Remove(Key); rmErr != nil {
			p.logger.Error("session: remove malformed record failed", "err", rmErr)
		}
		return domain.Actor{}, false
	}
	return a, true
}

func (p *Provider) Save(a domain.Actor) error {
	a.ID = strings.TrimSpace(a.ID)
	if a.ID == "" {
		return domain.FieldError("id", "required")
	}
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return p.storage.Set(Key, string(b))
}

func (p *Provider) Clear() error {
	return p.storage.Remove(Key)
}
