package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/boardkit/boardkit/internal/board"
	"github.com/boardkit/boardkit/internal/bus"
	"github.com/boardkit/boardkit/internal/config"
	"github.com/boardkit/boardkit/internal/contract"
	"github.com/boardkit/boardkit/internal/share"
	"github.com/boardkit/boardkit/internal/store"
	"github.com/boardkit/boardkit/internal/telemetry"
)

// session is an open board document plus everything needed to mutate it:
// the backing database, contract registries, bus, and share store.
type session struct {
	Cfg       config.Config
	DB        *store.DB
	Contracts *contract.Registry
	Consumers *contract.ConsumerRegistry
	Share     *share.Store
	Telemetry *telemetry.Emitter
}

// documentPath resolves the board file from the --file flag or config.
func documentPath(cfg config.Config) string {
	if p := viper.GetString("file"); p != "" {
		return p
	}
	return cfg.DocumentPath
}

// openSession opens the resolved document file and loads the newest
// document in it. The document is migrated to the current schema before
// use; migrations are repaired in memory and persisted on the next save.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	path := documentPath(cfg)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("board document not found: %s", path)
	}

	ctx := cmd.Context()
	db, err := store.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	doc, err := loadNewest(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if _, err := board.Migrate(doc); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", doc.ID, err)
	}

	contracts := contract.NewRegistry()
	consumers := contract.NewConsumerRegistry(contracts)
	if err := contract.RegisterBuiltins(contracts, consumers); err != nil {
		db.Close()
		return nil, err
	}
	if err := loadManifests(cfg.ManifestDir, contracts, consumers); err != nil {
		db.Close()
		return nil, err
	}

	sh := share.NewStore(doc, bus.New(), contracts, consumers)

	var emitter *telemetry.Emitter
	if cfg.TelemetryPath != "" {
		emitter, err = telemetry.NewEmitter(cfg.TelemetryPath)
		if err != nil {
			db.Close()
			return nil, err
		}
		sh.Telemetry = emitter
	}

	return &session{
		Cfg:       cfg,
		DB:        db,
		Contracts: contracts,
		Consumers: consumers,
		Share:     sh,
		Telemetry: emitter,
	}, nil
}

func (s *session) Close() {
	s.DB.Close()
}

// Save persists the session's document and clears the dirty flag.
func (s *session) Save(ctx context.Context) error {
	if err := s.DB.Save(ctx, s.Share.Doc); err != nil {
		return fmt.Errorf("save %s: %w", s.Share.Doc.ID, err)
	}
	s.Share.ClearDirty()
	return nil
}

// loadNewest returns the most recently saved document in the store.
func loadNewest(ctx context.Context, db *store.DB) (*board.Document, error) {
	infos, err := db.Documents(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("store holds no documents")
	}
	return db.Load(ctx, infos[0].ID)
}

// loadManifests registers contracts and consumer declarations from every
// .toml manifest in dir. An empty dir skips the scan.
func loadManifests(dir string, contracts *contract.Registry, consumers *contract.ConsumerRegistry) error {
	if dir == "" {
		return nil
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.toml"))
	if err != nil {
		return fmt.Errorf("scan manifests: %w", err)
	}
	for _, p := range paths {
		m, err := contract.LoadManifest(p)
		if err != nil {
			return err
		}
		if err := m.Apply(contracts, consumers); err != nil {
			return fmt.Errorf("manifest %s: %w", p, err)
		}
	}
	return nil
}

// widgetTitle returns a widget's display title, falling back to its id, or
// a missing marker when the widget is no longer on the canvas.
func widgetTitle(doc *board.Document, id string) string {
	w, ok := doc.Widget(id)
	if !ok {
		return id + " (missing)"
	}
	if w.Title == "" {
		return w.ID
	}
	return w.Title
}
