// Package app wires configuration, the record store, the remote client, and
// the coordinators into the running postbox application.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"postbox/internal/config"
	"postbox/internal/detail"
	"postbox/internal/list"
	"postbox/internal/prefs"
	"postbox/internal/remote"
	"postbox/internal/repo"
	"postbox/internal/store"
	"postbox/internal/ui"
)

// Options configure the postbox application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/postbox/prefs.toml
	BaseURL    string // overrides the configured API base URL
	DBPath     string // overrides the configured database path
}

// Run boots the postbox TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(opts.BaseURL) != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if strings.TrimSpace(opts.DBPath) != "" {
		cfg.DBPath = opts.DBPath
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := remote.NewClient(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open post cache: %w", err)
	}
	defer func() { _ = st.Close() }()

	repository := repo.New(client, st)

	coordinator := list.New(ctx, repository)
	defer coordinator.Close()

	// One coordinator per post id for the life of the session: reopening a
	// post inside the grace window reattaches to the live subscription
	// instead of starting a fresh one.
	var (
		detMu sync.Mutex
		dets  = make(map[int64]*detail.Coordinator)
	)

	uiOpts := ui.Options{
		Context: ctx,
		List:    coordinator,
		Details: func(id int64) *detail.Coordinator {
			detMu.Lock()
			defer detMu.Unlock()
			d, ok := dets[id]
			if !ok {
				d = detail.New(ctx, repository, id, detail.Options{})
				dets[id] = d
			}
			return d
		},
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	}
	return ui.Run(uiOpts)
}
