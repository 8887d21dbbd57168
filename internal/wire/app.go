package wire

import (
	"context"
	"log"
	"os"

	"github.com/spf13/viper"

	"github.com/markpad/markpad/internal/bridge"
	"github.com/markpad/markpad/internal/config"
	"github.com/markpad/markpad/internal/document"
	"github.com/markpad/markpad/internal/export"
	"github.com/markpad/markpad/internal/imaging"
	"github.com/markpad/markpad/internal/render"
	"github.com/markpad/markpad/internal/state"
)

// App aggregates the major services for easy injection.
type App struct {
	V        *viper.Viper
	Settings config.Settings
	Log      *log.Logger
	Files    bridge.FileBridge
	Dialogs  bridge.DialogBridge
	Store    state.Store
	Renderer *render.Renderer
	Exporter *export.Exporter
	Images   *imaging.Pipeline
	Tabs     *document.Manager
}

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, v *viper.Viper) (*App, error) {
	logger := log.New(os.Stderr, "markpad ", log.LstdFlags)

	store, err := state.Open(ctx, "sqlite://"+config.DefaultStatePath(v))
	if err != nil {
		return nil, err
	}

	files := bridge.LocalFiles{}
	dialogs := bridge.NoDialogs{}

	return &App{
		V:        v,
		Settings: config.FromViper(v),
		Log:      logger,
		Files:    files,
		Dialogs:  dialogs,
		Store:    store,
		Renderer: render.New(),
		Exporter: export.NewExporter(files, nil, logger),
		Images:   imaging.NewPipeline(files, logger),
		Tabs:     document.NewManager(),
	}, nil
}

// Close releases resources owned by the app.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
