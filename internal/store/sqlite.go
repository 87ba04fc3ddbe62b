// Package store persists Boardkit documents. A .boardkit file is a SQLite
// database in WAL mode: the widget payload is stored as a JSON column, and
// the data-sharing permissions and links live in their own tables so the
// "one logical permission per triple" invariant is enforced by a UNIQUE
// constraint rather than by caller discipline.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/boardkit/boardkit/internal/board"
)

// ErrDocumentNotFound is returned when a load names a document id with no
// row in the store.
var ErrDocumentNotFound = errors.New("document not found")

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id             TEXT PRIMARY KEY,
    schema_version INTEGER NOT NULL,
    title          TEXT NOT NULL DEFAULT '',
    widgets        TEXT NOT NULL,
    saved_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS permissions (
    id                 TEXT PRIMARY KEY,
    document_id        TEXT NOT NULL,
    consumer_widget_id TEXT NOT NULL,
    provider_widget_id TEXT NOT NULL,
    contract_id        TEXT NOT NULL,
    scope              TEXT NOT NULL DEFAULT 'read',
    granted_at         TEXT NOT NULL,
    UNIQUE(document_id, consumer_widget_id, provider_widget_id, contract_id)
);

CREATE TABLE IF NOT EXISTS links (
    document_id        TEXT NOT NULL,
    consumer_widget_id TEXT NOT NULL,
    provider_widget_id TEXT NOT NULL,
    contract_id        TEXT NOT NULL,
    UNIQUE(document_id, consumer_widget_id, provider_widget_id, contract_id)
);
`

// DB is a document store backed by a local SQLite database in WAL mode.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) a .boardkit database at path, enables WAL mode
// and busy timeout, and creates the schema tables if they do not exist.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// Limit to one connection. SQLite only supports a single writer; using
	// one connection avoids SQLITE_BUSY contention between pooled
	// connections that each need their own PRAGMA setup. WAL mode still
	// benefits external readers and provides crash-safe writes.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Save writes a document snapshot in a single transaction. The persisted
// permission and link rows are replaced wholesale from the document's
// dataSharing section, so the two tables can never hold rows for a
// permission the document no longer has.
func (s *DB) Save(ctx context.Context, d *board.Document) error {
	widgets, err := json.Marshal(d.Widgets)
	if err != nil {
		return fmt.Errorf("store: marshal widgets: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	const upsertDoc = `
		INSERT INTO documents (id, schema_version, title, widgets, saved_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			schema_version = excluded.schema_version,
			title          = excluded.title,
			widgets        = excluded.widgets,
			saved_at       = CURRENT_TIMESTAMP`
	if _, err := tx.ExecContext(ctx, upsertDoc, d.ID, d.SchemaVersion, d.Title, string(widgets)); err != nil {
		return fmt.Errorf("store: save document %q: %w", d.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM permissions WHERE document_id = ?", d.ID); err != nil {
		return fmt.Errorf("store: clear permissions for %q: %w", d.ID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM links WHERE document_id = ?", d.ID); err != nil {
		return fmt.Errorf("store: clear links for %q: %w", d.ID, err)
	}

	const insertPerm = `
		INSERT INTO permissions (id, document_id, consumer_widget_id, provider_widget_id, contract_id, scope, granted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	permStmt, err := tx.PrepareContext(ctx, insertPerm)
	if err != nil {
		return fmt.Errorf("store: prepare permission insert: %w", err)
	}
	defer permStmt.Close()

	for _, p := range d.DataSharing.Permissions {
		if _, err := permStmt.ExecContext(ctx, p.ID, d.ID, p.ConsumerWidgetID, p.ProviderWidgetID,
			p.ContractID, p.Scope, p.GrantedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("store: save permission %q: %w", p.ID, err)
		}
	}

	const insertLink = `
		INSERT INTO links (document_id, consumer_widget_id, provider_widget_id, contract_id)
		VALUES (?, ?, ?, ?)`
	linkStmt, err := tx.PrepareContext(ctx, insertLink)
	if err != nil {
		return fmt.Errorf("store: prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	for _, l := range d.DataSharing.Links {
		if _, err := linkStmt.ExecContext(ctx, d.ID, l.ConsumerWidgetID, l.ProviderWidgetID, l.ContractID); err != nil {
			return fmt.Errorf("store: save link %s -> %s/%s: %w", l.ConsumerWidgetID, l.ProviderWidgetID, l.ContractID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit save of %q: %w", d.ID, err)
	}
	return nil
}

// Load reads a document by id. The caller runs board.Migrate on the result;
// Load itself does not mutate what it reads.
func (s *DB) Load(ctx context.Context, id string) (*board.Document, error) {
	var d board.Document
	var widgets string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, schema_version, title, widgets FROM documents WHERE id = ?", id).
		Scan(&d.ID, &d.SchemaVersion, &d.Title, &widgets)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: load %q: %w", id, ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(widgets), &d.Widgets); err != nil {
		return nil, fmt.Errorf("store: unmarshal widgets of %q: %w", id, err)
	}

	perms, err := s.loadPermissions(ctx, id)
	if err != nil {
		return nil, err
	}
	links, err := s.loadLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	d.DataSharing = board.DataSharing{Permissions: perms, Links: links}
	return &d, nil
}

// loadPermissions returns the document's permissions in insertion order.
func (s *DB) loadPermissions(ctx context.Context, docID string) ([]board.Permission, error) {
	const q = `SELECT id, consumer_widget_id, provider_widget_id, contract_id, scope, granted_at
		FROM permissions WHERE document_id = ? ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, q, docID)
	if err != nil {
		return nil, fmt.Errorf("store: query permissions: %w", err)
	}
	defer rows.Close()

	perms := []board.Permission{}
	for rows.Next() {
		var p board.Permission
		var granted string
		if err := rows.Scan(&p.ID, &p.ConsumerWidgetID, &p.ProviderWidgetID, &p.ContractID, &p.Scope, &granted); err != nil {
			return nil, fmt.Errorf("store: scan permission: %w", err)
		}
		p.GrantedAt, err = parseTimestamp(granted)
		if err != nil {
			return nil, fmt.Errorf("store: parse granted_at: %w", err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate permissions: %w", err)
	}
	return perms, nil
}

// loadLinks returns the document's links in insertion order.
func (s *DB) loadLinks(ctx context.Context, docID string) ([]board.Link, error) {
	const q = `SELECT consumer_widget_id, provider_widget_id, contract_id
		FROM links WHERE document_id = ? ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, q, docID)
	if err != nil {
		return nil, fmt.Errorf("store: query links: %w", err)
	}
	defer rows.Close()

	links := []board.Link{}
	for rows.Next() {
		var l board.Link
		if err := rows.Scan(&l.ConsumerWidgetID, &l.ProviderWidgetID, &l.ContractID); err != nil {
			return nil, fmt.Errorf("store: scan link: %w", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate links: %w", err)
	}
	return links, nil
}

// DocumentInfo summarises one stored document.
type DocumentInfo struct {
	ID            string
	Title         string
	SchemaVersion int
	SavedAt       time.Time
}

// Documents lists every document in the store, most recently saved first.
func (s *DB) Documents(ctx context.Context) ([]DocumentInfo, error) {
	const q = `SELECT id, title, schema_version, saved_at FROM documents ORDER BY saved_at DESC, id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()

	var infos []DocumentInfo
	for rows.Next() {
		var info DocumentInfo
		var ts string
		if err := rows.Scan(&info.ID, &info.Title, &info.SchemaVersion, &ts); err != nil {
			return nil, fmt.Errorf("store: scan document: %w", err)
		}
		info.SavedAt, err = parseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("store: parse saved_at: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate documents: %w", err)
	}
	return infos, nil
}

// Delete removes a document and its data-sharing rows.
func (s *DB) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for _, q := range []string{
		"DELETE FROM permissions WHERE document_id = ?",
		"DELETE FROM links WHERE document_id = ?",
		"DELETE FROM documents WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("store: delete %q: %w", id, err)
		}
	}
	return tx.Commit()
}

// Close releases the database connection.
func (s *DB) Close() error {
	return s.db.Close()
}

// timestampFormats lists the formats SQLite drivers may produce for
// CURRENT_TIMESTAMP. modernc.org/sqlite typically returns RFC 3339
// (with "T" separator and "Z" suffix), while canonical SQLite returns
// the space-separated DateTime format.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
}

// parseTimestamp attempts to parse a SQLite timestamp string using known
// formats.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
