package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"

	"github.com/dmitrijs2005/rmcatalog/internal/client/backup"
	"github.com/dmitrijs2005/rmcatalog/internal/client/client"
	"github.com/dmitrijs2005/rmcatalog/internal/client/config"
	"github.com/dmitrijs2005/rmcatalog/internal/client/services"
	"github.com/dmitrijs2005/rmcatalog/internal/client/store"
	"github.com/dmitrijs2005/rmcatalog/internal/client/view"
	"github.com/dmitrijs2005/rmcatalog/internal/logging"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	remote      client.Client
	local       services.LocalCharacterService
	store       *store.Store
	render      view.Renderer
	reader      *bufio.Reader
	out         io.Writer
	interactive bool

	newUploader func(ctx context.Context, cfg config.S3) (backup.Uploader, error)
}

// NewApp opens the local database and wires the remote client, local
// storage and store. Colours are used only when out is a terminal and the
// configuration allows it; prompts only when in is a terminal.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		l.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	remote, err := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, l)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, l, remote, services.NewLocalCharacterService(db, l), in, out)
	a.db = db
	a.interactive = isTerminalFile(in)
	a.render.Color = !c.NoColor && isTerminalFile(out)
	return a, nil
}

func newApp(c *config.Config, l logging.Logger, remote client.Client, local services.LocalCharacterService, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		logger: l,
		remote: remote,
		local:  local,
		store:  store.New(remote, local, l),
		render: view.Renderer{Locale: view.ParseLocale(c.Locale)},
		reader: bufio.NewReader(in),
		out:    out,
		newUploader: func(ctx context.Context, cfg config.S3) (backup.Uploader, error) {
			return backup.NewS3Client(ctx, cfg)
		},
	}
}

// Close releases the database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
