// Command amigos is a terminal front end for the friends widget: it keeps a
// local session, talks to the REST backend and polls presence while running.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "amigos",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Usage:     "amigos, solicitações, presença e chat do Sementes",
		Commands: []*cli.Command{
			loginCommand,
			logoutCommand,
			listCommand,
			searchCommand,
			addCommand,
			acceptCommand,
			rejectCommand,
			removeCommand,
			chatCommand,
			watchCommand,
			favoriteCommand,
		},
	}
}
