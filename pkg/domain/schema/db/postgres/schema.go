package postgres

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	kpool "github.com/opst/dmcatalog/pkg/conn/db/postgres/pool"
	kschema "github.com/opst/dmcatalog/pkg/domain/schema/db"
)

type pgSchema struct {
	pool kpool.Pool
	fsys fs.FS

	// directory of the schema repository on the local filesystem.
	//
	// empty if the repository is not on it (for example, embedded).
	// When empty, changes of the repository are not watched.
	dir string
}

var _ kschema.SchemaInterface = &pgSchema{}

// New creates a new Schema with the repository on the local filesystem.
//
// # Args
//
// - schemaRepository: The path to the schema repository directory.
func New(pool kpool.Pool, schemaRepository string) *pgSchema {
	return &pgSchema{
		pool: pool,
		fsys: os.DirFS(schemaRepository),
		dir:  filepath.Clean(schemaRepository),
	}
}

// NewFS creates a new Schema with the repository in fsys.
func NewFS(pool kpool.Pool, fsys fs.FS) *pgSchema {
	return &pgSchema{pool: pool, fsys: fsys}
}

type version struct {
	Version int
	Root    string
}

// Apply executes *.sql files of the version, in the order of their names.
func (v version) Apply(ctx context.Context, fsys fs.FS, conn kpool.Queryer) error {
	entries, err := fs.ReadDir(fsys, v.Root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		query, err := fs.ReadFile(fsys, path.Join(v.Root, e.Name()))
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, string(query)); err != nil {
			return fmt.Errorf("schema version %d, %s: %w", v.Version, e.Name(), err)
		}
	}
	return nil
}

func (s *pgSchema) Version(ctx context.Context) (int, error) {
	return currentVersion(ctx, s.pool)
}

func currentVersion(ctx context.Context, conn kpool.Queryer) (int, error) {
	var version *int
	if err := conn.QueryRow(
		ctx, `select max("version") from "schema_version"`,
	).Scan(&version); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
			if pgerr.Code == pgerrcode.UndefinedTable {
				return 0, nil
			}
		}
		return -1, err
	}
	if version == nil {
		return 0, nil
	}
	return *version, nil
}

func (s *pgSchema) Latest(context.Context) (int, error) {
	vs, err := s.versions()
	if err != nil {
		return -1, err
	}
	if len(vs) == 0 {
		return 0, nil
	}
	return vs[len(vs)-1].Version, nil
}

func (s *pgSchema) Upgrade(ctx context.Context) error {
	schemaVersions, err := s.versions()
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// upgraders should not run concurrently.
	if _, err := tx.Exec(
		ctx, `select pg_advisory_xact_lock(hashtextextended('schema_version', 0))`,
	); err != nil {
		return err
	}

	current, err := currentVersion(ctx, tx)
	if err != nil {
		return err
	}

	for _, v := range schemaVersions {
		if v.Version <= current {
			continue
		}
		if err := v.Apply(ctx, s.fsys, tx); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `delete from "schema_version"`); err != nil {
			return err
		}
		if _, err := tx.Exec(
			ctx, `insert into "schema_version" ("version") values ($1)`, v.Version,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *pgSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, can := context.WithCancelCause(ctx)

	checkVersion := func() {
		latest, err := s.Latest(cctx)
		if err != nil {
			can(fmt.Errorf("failed to read schema repository: %w", err))
			return
		}
		current, err := s.Version(cctx)
		if err != nil {
			can(fmt.Errorf("failed to get current schema version: %w", err))
			return
		}
		if current < latest {
			can(fmt.Errorf(
				"schema is outdated: %d (in db) < %d (in repository)", current, latest,
			))
		}
	}

	if s.dir == "" {
		checkVersion()
		return cctx, func() { can(nil) }
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		can(err)
		return cctx, func() {}
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		can(err)
		return cctx, func() {}
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if s.dir != filepath.Dir(ev.Name) {
					continue
				}
				checkVersion()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				can(fmt.Errorf("watching schema repository: %w", err))
				return
			}
		}
	}()

	checkVersion()
	return cctx, func() { can(nil) }
}

// versions lookup the schema versions from the repository, sorted by version number.
func (s *pgSchema) versions() ([]version, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, err
	}

	schemaVersions := make([]version, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		schemaVersions = append(schemaVersions, version{Version: v, Root: entry.Name()})
	}
	slices.SortFunc(
		schemaVersions,
		func(i, j version) int { return cmp.Compare(i.Version, j.Version) },
	)
	return schemaVersions, nil
}

func Null() *nullSchema {
	return &nullSchema{}
}

// nullSchema is the schema of storages without database.
type nullSchema struct{}

var _ kschema.SchemaInterface = nullSchema{}

// Upgrade does nothing. There are no tables to be upgraded.
func (nullSchema) Upgrade(context.Context) error {
	return nil
}

func (nullSchema) Version(context.Context) (int, error) {
	return -1, nil
}

func (nullSchema) Latest(context.Context) (int, error) {
	return -1, nil
}

func (nullSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	return ctx, func() {}
}
