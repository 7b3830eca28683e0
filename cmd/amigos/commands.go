package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"SementesSocial/internal/domain"
	"SementesSocial/internal/friends"
	"SementesSocial/internal/session"
	"SementesSocial/internal/widget"
)

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "grava o usuário local usado pelas outras ações",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "id", Usage: "id do usuário", Required: true},
		&cli.StringFlag{Name: "nome", Usage: "nome exibido"},
		&cli.IntFlag{Name: "sementes", Usage: "saldo de sementes"},
	},
	Action: func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()

		actor := domain.Actor{
			ID:       strings.TrimSpace(c.String("id")),
			Nome:     strings.TrimSpace(c.String("nome")),
			Sementes: c.Int("sementes"),
		}
		if err := e.session.Save(actor); err != nil {
			return err
		}
		fmt.Fprintf(e.out, "sessão salva para %s\n", displayName(actor.Nome, actor.ID))
		return nil
	},
}

var logoutCommand = &cli.Command{
	Name:  "logout",
	Usage: "apaga a sessão local",
	Action: func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()
		return e.session.Clear()
	},
}

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "mostra amigos, solicitações pendentes e sugestões",
	Action: withWidget(widget.Opts{}, func(c *cli.Context, e *env, w *widget.Widget) error {
		favorites := session.NewFavorites(e.storage, e.logger)
		printFriends(e.out, w.FriendsView(), favorites)
		printPending(e.out, w.Pending())
		printUsers(e.out, "Sugestões", w.Suggested())
		return nil
	}),
}

var searchCommand = &cli.Command{
	Name:      "search",
	Usage:     "busca usuários por nome ou email",
	ArgsUsage: "<termo>",
	Action: withWidget(widget.Opts{}, func(c *cli.Context, e *env, w *widget.Widget) error {
		query := strings.Join(c.Args().Slice(), " ")
		if len([]rune(strings.TrimSpace(query))) < friends.MinSearchLength {
			return cli.Exit(fmt.Sprintf("digite pelo menos %d caracteres", friends.MinSearchLength), 2)
		}
		rows, err := w.Search(c.Context, query)
		if err != nil {
			return err
		}
		printUsers(e.out, "Resultados", rows)
		return nil
	}),
}

var addCommand = &cli.Command{
	Name:      "add",
	Usage:     "envia uma solicitação de amizade",
	ArgsUsage: "<usuarioId>",
	Action: withWidget(widget.Opts{}, func(c *cli.Context, e *env, w *widget.Widget) error {
		id, err := requireArg(c, "usuarioId")
		if err != nil {
			return err
		}
		if err := w.SendRequest(c.Context, id); err != nil {
			return err
		}
		fmt.Fprintln(e.out, "solicitação enviada")
		return nil
	}),
}

var acceptCommand = &cli.Command{
	Name:      "accept",
	Usage:     "aceita uma solicitação pendente",
	ArgsUsage: "<solicitacaoId>",
	Action: withWidget(widget.Opts{}, func(c *cli.Context, e *env, w *widget.Widget) error {
		id, err := requireArg(c, "solicitacaoId")
		if err != nil {
			return err
		}
		if err := w.AcceptRequest(c.Context, id); err != nil {
			return err
		}
		fmt.Fprintln(e.out, "solicitação aceita")
		return nil
	}),
}

var rejectCommand = &cli.Command{
	Name:      "reject",
	Usage:     "rejeita uma solicitação pendente",
	ArgsUsage: "<solicitacaoId>",
	Action: withWidget(widget.Opts{}, func(c *cli.Context, e *env, w *widget.Widget) error {
		id, err := requireArg(c, "solicitacaoId")
		if err != nil {
			return err
		}
		if err := w.RejectRequest(c.Context, id); err != nil {
			return err
		}
		fmt.Fprintln(e.out, "solicitação rejeitada")
		return nil
	}),
}

var removeCommand = &cli.Command{
	Name:      "remove",
	Usage:     "remove um amigo",
	ArgsUsage: "<amigoId>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "não pede confirmação"},
	},
	Action: func(c *cli.Context) error {
		opts := widget.Opts{}
		if c.Bool("yes") {
			opts.Confirmer = friends.ConfirmFunc(func(context.Context, string) bool { return true })
		}
		return withWidget(opts, func(c *cli.Context, e *env, w *widget.Widget) error {
			id, err := requireArg(c, "amigoId")
			if err != nil {
				return err
			}
			err = w.RemoveFriend(c.Context, id)
			if errors.Is(err, friends.ErrNotConfirmed) {
				fmt.Fprintln(e.out, "cancelado")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, "amigo removido")
			return nil
		})(c)
	},
}

var chatCommand = &cli.Command{
	Name:      "chat",
	Usage:     "abre uma conversa com um amigo (linha vazia ou /sair encerra)",
	ArgsUsage: "<amigoId>",
	Action: func(c *cli.Context) error {
		out := c.App.Writer
		opts := widget.Opts{
			OnMessage: func(friend domain.Friend, m domain.Message) {
				printMessage(out, m)
			},
		}
		return withWidget(opts, func(c *cli.Context, e *env, w *widget.Widget) error {
			id, err := requireArg(c, "amigoId")
			if err != nil {
				return err
			}
			conv, err := w.OpenConversation(id)
			if errors.Is(err, domain.ErrNotFound) {
				return cli.Exit("esse usuário não está na sua lista de amigos", 2)
			}
			if err != nil {
				return err
			}

			friend := conv.Friend()
			status := "offline"
			if w.IsOnline(friend.ID) {
				status = "online"
			}
			fmt.Fprintf(e.out, "── %s (%s) ──\n", friend.Nome, status)
			for _, m := range conv.Messages() {
				printMessage(e.out, m)
			}

			lines := make(chan string)
			stop := make(chan struct{})
			defer close(stop)
			go func() {
				defer close(lines)
				sc := bufio.NewScanner(e.in)
				for sc.Scan() {
					select {
					case lines <- sc.Text():
					case <-stop:
						return
					case <-c.Context.Done():
						return
					}
				}
			}()
			for {
				select {
				case <-c.Context.Done():
					return nil
				case line, ok := <-lines:
					if !ok || strings.TrimSpace(line) == "" || line == "/sair" {
						w.CloseConversation()
						return nil
					}
					conv.SetDraft(line)
					conv.SendDraft()
				}
			}
		})(c)
	},
}

var watchCommand = &cli.Command{
	Name:  "watch",
	Usage: "fica online e acompanha quais amigos estão conectados",
	Action: func(c *cli.Context) error {
		out := c.App.Writer
		changes := make(chan []string, 1)
		opts := widget.Opts{
			OnPresence: func(online []string) {
				select {
				case changes <- online:
				default:
				}
			},
		}
		return withWidget(opts, func(c *cli.Context, e *env, w *widget.Widget) error {
			var last string
			for {
				select {
				case <-c.Context.Done():
					return nil
				case <-changes:
					rows := w.FriendsView()
					var names []string
					for _, r := range rows {
						if r.Online {
							names = append(names, r.Nome)
						}
					}
					line := strings.Join(names, ", ")
					if line == last {
						continue
					}
					last = line
					if line == "" {
						line = "nenhum amigo online"
					}
					fmt.Fprintf(out, "%s  %s\n", time.Now().Format("15:04:05"), line)
				}
			}
		})(c)
	},
}

var favoriteCommand = &cli.Command{
	Name:      "favorite",
	Usage:     "marca ou desmarca um usuário como favorito no ranking",
	ArgsUsage: "<usuarioId>",
	Action: func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()

		favorites := session.NewFavorites(e.storage, e.logger)
		if c.NArg() == 0 {
			for _, id := range favorites.List() {
				fmt.Fprintln(e.out, id)
			}
			return nil
		}
		on, err := favorites.Toggle(c.Args().First())
		if err != nil {
			return err
		}
		if on {
			fmt.Fprintln(e.out, "adicionado aos favoritos")
		} else {
			fmt.Fprintln(e.out, "removido dos favoritos")
		}
		return nil
	},
}

// withWidget opens the environment, mounts a widget for the duration of fn
// and tears both down afterwards.
func withWidget(opts widget.Opts, fn func(*cli.Context, *env, *widget.Widget) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()

		w, err := e.mount(c.Context, opts)
		if err != nil {
			return err
		}
		defer w.Unmount()
		return fn(c, e, w)
	}
}

func requireArg(c *cli.Context, name string) (string, error) {
	v := strings.TrimSpace(c.Args().First())
	if v == "" {
		return "", cli.Exit(fmt.Sprintf("faltou o argumento <%s>", name), 2)
	}
	return v, nil
}

func displayName(nome, id string) string {
	if nome == "" {
		return id
	}
	return nome
}

func printFriends(out io.Writer, rows []widget.FriendRow, favorites *session.Favorites) {
	fmt.Fprintf(out, "Amigos (%d)\n", len(rows))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		dot := "○"
		if r.Online {
			dot = "●"
		}
		star := ""
		if favorites.Contains(r.ID) {
			star = "★"
		}
		fmt.Fprintf(tw, "  %s %s%s\t%s\t%d sementes\t%s\n", dot, r.Nome, star, r.Nivel, r.Sementes, r.ID)
	}
	_ = tw.Flush()
}

func printPending(out io.Writer, list []domain.PendingRequest) {
	fmt.Fprintf(out, "Solicitações (%d)\n", len(list))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, p := range list {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", p.RemetenteNome, p.DataEnvio.Local().Format("02/01 15:04"), p.Mensagem, p.ID)
	}
	_ = tw.Flush()
}

func printUsers(out io.Writer, title string, rows []widget.UserRow) {
	fmt.Fprintf(out, "%s (%d)\n", title, len(rows))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		dot := "○"
		if r.Online {
			dot = "●"
		}
		fmt.Fprintf(tw, "  %s %s\t%s\t%d sementes\t%s\n", dot, r.Nome, r.Nivel, r.Sementes, r.ID)
	}
	_ = tw.Flush()
}

func printMessage(out io.Writer, m domain.Message) {
	fmt.Fprintf(out, "[%s] %s: %s\n", m.Timestamp.Local().Format("15:04"), m.RemetenteNome, m.Conteudo)
}
