package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"lessons/internal/blocktype"
	"lessons/internal/config"
	"lessons/internal/domain"
	"lessons/internal/editor"
	"lessons/internal/remote"
	"lessons/internal/service"
	"lessons/internal/storage"
)

var configPath string

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lessons",
	Short: "Lessons - block-based lesson document authoring engine",
	Long: `Lessons maintains ordered documents of typed content blocks, keeps a
read-only preview in sync with the model, and persists documents on a
debounced schedule.

Agents interact with it over MCP (lessons serve); humans use the import,
preview and watch subcommands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "lessons.yml", "Path to the config file")
}

// appEnv is the shared wiring built by every subcommand.
type appEnv struct {
	cfg      *config.Config
	store    domain.Store
	registry *blocktype.Registry
	sessions *service.SessionService
	cleanup  func()
}

// buildEnv loads config and wires the store, registry, and services.
func buildEnv(emitter editor.EventEmitter) (*appEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	var store domain.Store
	cleanup := func() {}
	switch cfg.Store.Driver {
	case "sqlite", "postgres", "mysql":
		db, err := storage.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		store = storage.NewStore(db)
		cleanup = func() { db.Close() }
	case "mongo":
		ms, err := storage.OpenMongo(cfg.Store.DSN, cfg.Store.Database)
		if err != nil {
			return nil, err
		}
		store = ms
	case "remote":
		// The remote service owns session/node CRUD; local metadata rides
		// in a sqlite sidecar while saves go over HTTP.
		db, err := storage.Open("sqlite", filepath.Join(cfg.DataDir, "metadata.db"))
		if err != nil {
			return nil, err
		}
		store = &remoteStore{
			Store: storage.NewStore(db),
			saver: remote.NewClient(cfg.Store.DSN, 10*time.Second),
		}
		cleanup = func() { db.Close() }
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	registry := blocktype.NewBuiltinRegistry()
	sessions := service.NewSessionService(store, registry, emitter, cfg.Debounce())
	return &appEnv{
		cfg:      cfg,
		store:    store,
		registry: registry,
		sessions: sessions,
		cleanup:  cleanup,
	}, nil
}

// remoteStore keeps CRUD and hydration local but routes document saves to
// the remote authoring service.
type remoteStore struct {
	*storage.Store
	saver domain.DocumentSaver
}

func (r *remoteStore) SaveDocument(ctx context.Context, sessionID, nodeID string, doc domain.SerializedDocument) error {
	return r.saver.SaveDocument(ctx, sessionID, nodeID, doc)
}
