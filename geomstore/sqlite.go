package geomstore

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eak1mov/go-tilecore/geometry"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// SQLite is a Store backed by a SQLite database, with geometries kept as WKB.
//
// Note: User must properly initialize the sqlite3 library generic driver
// (e.g. import _ "github.com/mattn/go-sqlite3") before using this type.
type SQLite struct {
	db         *sql.DB
	insertStmt *sql.Stmt
	selectStmt *sql.Stmt
	logger     *slog.Logger
}

type sqliteConfig struct {
	Logger *slog.Logger
}

type SQLiteOption func(*sqliteConfig)

func WithLogger(logger *slog.Logger) SQLiteOption {
	return func(c *sqliteConfig) { c.Logger = logger }
}

// NewSQLite opens (or creates) the database at filePath.
//
// The returned SQLite must be closed after use to release database resources.
func NewSQLite(filePath string, opts ...SQLiteOption) (*SQLite, error) {
	config := sqliteConfig{
		Logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&config)
	}

	var err error
	db, err := sql.Open("sqlite3", filePath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// A single connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS geometries (
			id INTEGER PRIMARY KEY,
			geom_type INTEGER NOT NULL,
			geom BLOB NOT NULL
		);
	`)
	if err != nil {
		return nil, err
	}

	insertStmt, err := db.Prepare("INSERT OR REPLACE INTO geometries (id, geom_type, geom) VALUES (?, ?, ?)")
	if err != nil {
		return nil, err
	}

	selectStmt, err := db.Prepare("SELECT geom_type, geom FROM geometries WHERE id = ?")
	if err != nil {
		insertStmt.Close()
		return nil, err
	}

	config.Logger.Debug("tilecore: geometry store opened", "path", filePath)
	return &SQLite{db, insertStmt, selectStmt, config.Logger}, nil
}

func (s *SQLite) Close() error {
	return errors.Join(s.insertStmt.Close(), s.selectStmt.Close(), s.db.Close())
}

func (s *SQLite) put(id uint32, geomType geometry.Type, g orb.Geometry) error {
	data, err := wkb.Marshal(g)
	if err != nil {
		return fmt.Errorf("encoding geometry %d: %w", id, err)
	}
	_, err = s.insertStmt.Exec(id, geomType, data)
	return err
}

func (s *SQLite) StorePoint(id uint32, p orb.Point) error {
	return s.put(id, geometry.TypePoint, p)
}

func (s *SQLite) StoreLineString(id uint32, ls orb.LineString) error {
	return s.put(id, geometry.TypeLineString, ls)
}

func (s *SQLite) StoreMultiLineString(id uint32, mls orb.MultiLineString) error {
	return s.put(id, geometry.TypeMultiLineString, mls)
}

func (s *SQLite) StoreMultiPolygon(id uint32, mp orb.MultiPolygon) error {
	return s.put(id, geometry.TypePolygon, mp)
}

func (s *SQLite) Retrieve(id uint32) (geometry.Geometry, error) {
	var geomType geometry.Type
	var data []byte
	if err := s.selectStmt.QueryRow(id).Scan(&geomType, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return geometry.Geometry{}, ErrNotFound
		}
		return geometry.Geometry{}, err
	}

	g, err := wkb.Unmarshal(data)
	if err != nil {
		return geometry.Geometry{}, fmt.Errorf("decoding geometry %d: %w", id, err)
	}
	result, err := geometry.New(g)
	if err != nil {
		return geometry.Geometry{}, err
	}
	if result.Type() != geomType {
		s.logger.Warn("tilecore: stored geometry type mismatch", "id", id, "stored", geomType, "decoded", result.Type())
		return geometry.Geometry{}, fmt.Errorf("%w: geometry %d stored as %v, decoded as %v",
			geometry.ErrGeometryType, id, geomType, result.Type())
	}
	return result, nil
}
