// Package persistence mirrors the in-memory Graph Store to SurrealDB, purely as a
// snapshot/reload mechanism: queries are always answered in memory, never routed through
// this package (SPEC_FULL §6.1, "never on the hot query path").
package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"

	"github.com/heefoo/codeintel/internal/graph"
	"github.com/heefoo/codeintel/internal/lang"
	"github.com/heefoo/codeintel/internal/parser"
)

// Config names the SurrealDB endpoint and namespace/database to persist into.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// Store is the optional persistence adapter. A nil *Store is valid and every method on it
// is a no-op, so engines that never configure persistence pay nothing for it.
type Store struct {
	db *surrealdb.DB
}

// Open connects, signs in (if credentials are set) and selects the namespace/database.
func Open(cfg Config) (*Store, error) {
	db, err := surrealdb.New(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("persistence: connect: %w", err)
	}

	ctx := context.Background()
	if cfg.Username != "" {
		if _, err := db.SignIn(ctx, map[string]interface{}{
			"user": cfg.Username,
			"pass": cfg.Password,
		}); err != nil {
			return nil, fmt.Errorf("persistence: sign in: %w", err)
		}
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("persistence: use namespace/database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close(context.Background())
}

// RunMigrations defines the symbols/calls/imports/refs tables and their indexes. Safe to
// call repeatedly: "already exists" errors from a prior run are swallowed, mirroring the
// corpus's own migration style.
func (s *Store) RunMigrations(ctx context.Context) error {
	if s == nil {
		return nil
	}
	migrations := []string{
		`DEFINE TABLE symbols SCHEMAFULL`,
		`DEFINE FIELD id ON symbols TYPE string`,
		`DEFINE FIELD name ON symbols TYPE string`,
		`DEFINE FIELD qualified_name ON symbols TYPE string`,
		`DEFINE FIELD kind ON symbols TYPE string`,
		`DEFINE FIELD language ON symbols TYPE string`,
		`DEFINE FIELD file_path ON symbols TYPE string`,
		`DEFINE FIELD start_line ON symbols TYPE int`,
		`DEFINE FIELD end_line ON symbols TYPE int`,
		`DEFINE FIELD signature ON symbols TYPE option<string>`,
		`DEFINE FIELD doc_comment ON symbols TYPE option<string>`,
		`DEFINE INDEX idx_symbols_id ON symbols FIELDS id UNIQUE`,
		`DEFINE INDEX idx_symbols_file ON symbols FIELDS file_path`,
		`DEFINE INDEX idx_symbols_name ON symbols FIELDS name`,

		`DEFINE TABLE calls SCHEMAFULL`,
		`DEFINE FIELD caller_symbol_id ON calls TYPE string`,
		`DEFINE FIELD callee_name ON calls TYPE string`,
		`DEFINE FIELD file_path ON calls TYPE string`,
		`DEFINE FIELD line ON calls TYPE int`,
		`DEFINE INDEX idx_calls_caller ON calls FIELDS caller_symbol_id`,
		`DEFINE INDEX idx_calls_callee ON calls FIELDS callee_name`,

		`DEFINE TABLE imports SCHEMAFULL`,
		`DEFINE FIELD source_file_path ON imports TYPE string`,
		`DEFINE FIELD imported_module ON imports TYPE string`,
		`DEFINE INDEX idx_imports_file ON imports FIELDS source_file_path`,

		`DEFINE TABLE refs SCHEMAFULL`,
		`DEFINE FIELD name ON refs TYPE string`,
		`DEFINE FIELD file_path ON refs TYPE string`,
		`DEFINE FIELD line ON refs TYPE int`,
		`DEFINE FIELD containing_symbol_id ON refs TYPE option<string>`,
		`DEFINE INDEX idx_refs_name ON refs FIELDS name`,
	}

	for _, m := range migrations {
		if _, err := surrealdb.Query[any](ctx, s.db, m, nil); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				continue
			}
			return fmt.Errorf("persistence: migration %q: %w", m, err)
		}
	}
	return nil
}

// PersistFile replaces everything persisted for filePath: one transaction deletes the
// file's old rows, then each Symbol, CallEdge, ImportEdge and Reference is inserted by its
// own query. The inserts are not part of that transaction, so an error part-way through
// leaves the file's rows partly written.
func (s *Store) PersistFile(ctx context.Context, filePath string, fp *parser.FileParse) error {
	if s == nil {
		return nil
	}

	del := `BEGIN TRANSACTION;
	         DELETE FROM calls WHERE file_path = $path;
	         DELETE FROM imports WHERE source_file_path = $path;
	         DELETE FROM refs WHERE file_path = $path;
	         DELETE FROM symbols WHERE file_path = $path;
	         COMMIT TRANSACTION;`
	if _, err := surrealdb.Query[any](ctx, s.db, del, map[string]any{"path": filePath}); err != nil {
		return fmt.Errorf("persistence: delete stale %s: %w", filePath, err)
	}

	for _, sym := range fp.Symbols {
		q := `CREATE symbols CONTENT $data`
		if _, err := surrealdb.Query[any](ctx, s.db, q, map[string]any{"data": map[string]any{
			"id":             sym.ID,
			"name":           sym.Name,
			"qualified_name": sym.QualifiedName,
			"kind":           string(sym.Kind),
			"language":       string(sym.Language),
			"file_path":      sym.FilePath,
			"start_line":     sym.StartLine,
			"end_line":       sym.EndLine,
			"signature":      sym.Signature,
			"doc_comment":    sym.DocComment,
		}}); err != nil {
			return fmt.Errorf("persistence: insert symbol %s: %w", sym.ID, err)
		}
	}

	for _, c := range fp.Calls {
		q := `CREATE calls CONTENT $data`
		if _, err := surrealdb.Query[any](ctx, s.db, q, map[string]any{"data": map[string]any{
			"caller_symbol_id": c.CallerSymbolID,
			"callee_name":      c.CalleeName,
			"file_path":        c.FilePath,
			"line":             c.Line,
		}}); err != nil {
			return fmt.Errorf("persistence: insert call edge: %w", err)
		}
	}

	for _, im := range fp.Imports {
		q := `CREATE imports CONTENT $data`
		if _, err := surrealdb.Query[any](ctx, s.db, q, map[string]any{"data": map[string]any{
			"source_file_path": im.SourceFilePath,
			"imported_module":  im.ImportedModule,
		}}); err != nil {
			return fmt.Errorf("persistence: insert import edge: %w", err)
		}
	}

	for _, r := range fp.References {
		q := `CREATE refs CONTENT $data`
		if _, err := surrealdb.Query[any](ctx, s.db, q, map[string]any{"data": map[string]any{
			"name":                  r.Name,
			"file_path":             r.FilePath,
			"line":                  r.Line,
			"containing_symbol_id":  r.ContainingSymbolID,
		}}); err != nil {
			return fmt.Errorf("persistence: insert reference: %w", err)
		}
	}

	return nil
}

// DeleteFile removes everything persisted for filePath.
func (s *Store) DeleteFile(ctx context.Context, filePath string) error {
	if s == nil {
		return nil
	}
	q := `BEGIN TRANSACTION;
	       DELETE FROM calls WHERE file_path = $path;
	       DELETE FROM imports WHERE source_file_path = $path;
	       DELETE FROM refs WHERE file_path = $path;
	       DELETE FROM symbols WHERE file_path = $path;
	       COMMIT TRANSACTION;`
	_, err := surrealdb.Query[any](ctx, s.db, q, map[string]any{"path": filePath})
	if err != nil {
		return fmt.Errorf("persistence: delete %s: %w", filePath, err)
	}
	return nil
}

type storedSymbol struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QualifiedName string `json:"qualified_name"`
	Kind          string `json:"kind"`
	Language      string `json:"language"`
	FilePath      string `json:"file_path"`
	StartLine     int    `json:"start_line"`
	EndLine       int    `json:"end_line"`
	Signature     string `json:"signature"`
	DocComment    string `json:"doc_comment"`
}

type storedCall struct {
	CallerSymbolID string `json:"caller_symbol_id"`
	CalleeName     string `json:"callee_name"`
	FilePath       string `json:"file_path"`
	Line           int    `json:"line"`
}

type storedImport struct {
	SourceFilePath string `json:"source_file_path"`
	ImportedModule string `json:"imported_module"`
}

type storedRef struct {
	Name                string `json:"name"`
	FilePath            string `json:"file_path"`
	Line                int    `json:"line"`
	ContainingSymbolID  string `json:"containing_symbol_id"`
}

// Reload rebuilds a graph.Store from everything currently persisted. Used to restore
// engine state across process restarts; the in-memory store is the only thing ever
// queried afterward.
func (s *Store) Reload(ctx context.Context) (*graph.Store, error) {
	store := graph.New()
	if s == nil {
		return store, nil
	}

	symRows, err := surrealdb.Query[[]storedSymbol](ctx, s.db, `SELECT * FROM symbols`, nil)
	if err != nil {
		return nil, fmt.Errorf("persistence: reload symbols: %w", err)
	}
	callRows, err := surrealdb.Query[[]storedCall](ctx, s.db, `SELECT * FROM calls`, nil)
	if err != nil {
		return nil, fmt.Errorf("persistence: reload calls: %w", err)
	}
	importRows, err := surrealdb.Query[[]storedImport](ctx, s.db, `SELECT * FROM imports`, nil)
	if err != nil {
		return nil, fmt.Errorf("persistence: reload imports: %w", err)
	}
	refRows, err := surrealdb.Query[[]storedRef](ctx, s.db, `SELECT * FROM refs`, nil)
	if err != nil {
		return nil, fmt.Errorf("persistence: reload refs: %w", err)
	}

	byFile := make(map[string]*parser.FileParse)
	get := func(path string) *parser.FileParse {
		fp, ok := byFile[path]
		if !ok {
			fp = &parser.FileParse{}
			byFile[path] = fp
		}
		return fp
	}

	if symRows != nil && len(*symRows) > 0 {
		for _, row := range (*symRows)[0].Result {
			fp := get(row.FilePath)
			fp.Symbols = append(fp.Symbols, parser.Symbol{
				ID:            row.ID,
				Name:          row.Name,
				QualifiedName: row.QualifiedName,
				Kind:          lang.KindFromString(row.Kind),
				Language:      lang.Language(row.Language),
				FilePath:      row.FilePath,
				StartLine:     row.StartLine,
				EndLine:       row.EndLine,
				Signature:     row.Signature,
				DocComment:    row.DocComment,
			})
		}
	}
	if callRows != nil && len(*callRows) > 0 {
		for _, row := range (*callRows)[0].Result {
			fp := get(row.FilePath)
			fp.Calls = append(fp.Calls, parser.CallEdge{
				CallerSymbolID: row.CallerSymbolID,
				CalleeName:     row.CalleeName,
				FilePath:       row.FilePath,
				Line:           row.Line,
			})
		}
	}
	if importRows != nil && len(*importRows) > 0 {
		for _, row := range (*importRows)[0].Result {
			fp := get(row.SourceFilePath)
			fp.Imports = append(fp.Imports, parser.ImportEdge{
				SourceFilePath: row.SourceFilePath,
				ImportedModule: row.ImportedModule,
			})
		}
	}
	if refRows != nil && len(*refRows) > 0 {
		for _, row := range (*refRows)[0].Result {
			fp := get(row.FilePath)
			fp.References = append(fp.References, parser.Reference{
				Name:               row.Name,
				FilePath:           row.FilePath,
				Line:               row.Line,
				ContainingSymbolID: row.ContainingSymbolID,
			})
		}
	}

	for path, fp := range byFile {
		store.IndexFile(path, fp)
	}
	return store, nil
}
