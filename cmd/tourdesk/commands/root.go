package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/tourdesk/internal/catalog"
	"github.com/kingrea/tourdesk/internal/config"
	"github.com/kingrea/tourdesk/internal/server"
	"github.com/kingrea/tourdesk/internal/store"
	"github.com/kingrea/tourdesk/internal/transport"
)

var (
	projectDir string
	backendURL string
	cfg        *config.Config
)

func Execute() error {
	root := &cobra.Command{
		Use:          "tourdesk",
		Short:        "Compose and validate multi-day tour packages",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return nil
			}
			if projectDir == "" {
				dir, err := os.Getwd()
				if err != nil {
					return err
				}
				projectDir = dir
			}
			loaded, err := config.Load(projectDir)
			if err != nil {
				return err
			}
			if url := strings.TrimSpace(backendURL); url != "" {
				loaded.Project.Backend.URL = strings.TrimRight(url, "/")
			}
			cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&projectDir, "dir", "", "project directory holding .tourdesk (default current directory)")
	root.PersistentFlags().StringVar(&backendURL, "backend", "", "backend base URL (e.g. http://127.0.0.1:8780); empty works offline")

	root.AddCommand(initCmd(), newCmd(), editCmd(), listCmd(), checkCmd(), serveCmd())
	return root.Execute()
}

// deps is what an editor or listing session talks to.
type deps struct {
	tours   transport.Transport
	catalog catalog.Source
	close   func() error
}

// openDeps returns the remote backend when one is configured and an
// in-process backend over the local database otherwise.
func openDeps() (*deps, error) {
	if !cfg.Offline() {
		client := transport.NewHTTP(cfg.BackendURL())
		client.HTTP.Timeout = cfg.BackendTimeout()
		return &deps{tours: client, catalog: client, close: func() error { return nil }}, nil
	}
	backend, st, err := openBackend()
	if err != nil {
		return nil, err
	}
	return &deps{tours: backend, catalog: backend, close: st.Close}, nil
}

func openBackend() (*server.Backend, *store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath()), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return server.NewBackend(st, catalog.NewFileSource(cfg.CatalogPath())), st, nil
}

// loadCatalog fetches every collection, returning whatever arrived along
// with the first failure.
func loadCatalog(ctx context.Context, src catalog.Source) (*catalog.Catalog, error) {
	c := catalog.New()
	ctx, cancel := context.WithTimeout(ctx, cfg.BackendTimeout())
	defer cancel()
	err := catalog.LoadAll(ctx, src, c)
	return c, err
}
