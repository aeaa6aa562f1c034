// Package store persists gate assignments in sqlite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/fumin/swapnet"
)

const (
	tableGates = "gates"
	tableMeta  = "meta"

	keyModes = "modes"
)

// Store is a sqlite database holding one gate assignment and its number of modes.
type Store struct {
	Path string

	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := newDB(dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return &Store{Path: dbPath, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put replaces the stored assignment with gates on n modes.
func (s *Store) Put(ctx context.Context, n int, gates map[swapnet.ModeTuple]swapnet.Gate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := put(ctx, tx, n, gates); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "")
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func put(ctx context.Context, tx *sql.Tx, n int, gates map[swapnet.ModeTuple]swapnet.Gate) error {
	sqlStr := fmt.Sprintf(`DELETE FROM %s`, tableGates)
	if _, err := tx.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`INSERT OR REPLACE INTO %s (k, v) VALUES (?, ?)`, tableMeta)
	if _, err := tx.ExecContext(ctx, sqlStr, keyModes, n); err != nil {
		return errors.Wrap(err, fmt.Sprintf("%s %d", sqlStr, n))
	}

	sqlStr = fmt.Sprintf(`INSERT INTO %s (modes, arity, w0, w1, w2, exponent, shift) VALUES (?, ?, ?, ?, ?, ?, ?)`, tableGates)
	for key, g := range gates {
		if g == nil {
			return errors.Wrapf(swapnet.ErrUnsupportedArity, "nil gate at %v", key)
		}
		p := g.Params()
		var w [3]float64
		copy(w[:], p.Weights)
		args := []any{key.String(), g.Arity(), w[0], w[1], w[2], p.Exponent, p.GlobalShift}
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s %#v", sqlStr, args))
		}
	}
	return nil
}

// Get returns the stored number of modes and gates.
func (s *Store) Get(ctx context.Context) (int, map[swapnet.ModeTuple]swapnet.Gate, error) {
	sqlStr := fmt.Sprintf(`SELECT v FROM %s WHERE k=?`, tableMeta)
	var n int
	err := s.db.QueryRowContext(ctx, sqlStr, keyModes).Scan(&n)
	switch {
	case err == sql.ErrNoRows:
		return -1, nil, errors.Errorf("no gates in %s", s.Path)
	case err != nil:
		return -1, nil, errors.Wrap(err, "")
	}

	sqlStr = fmt.Sprintf(`SELECT modes, arity, w0, w1, w2, exponent, shift FROM %s ORDER BY modes`, tableGates)
	rows, err := s.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return -1, nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	gates := make(map[swapnet.ModeTuple]swapnet.Gate)
	for rows.Next() {
		var modes string
		var arity int
		var w [3]float64
		var p swapnet.Params
		if err := rows.Scan(&modes, &arity, &w[0], &w[1], &w[2], &p.Exponent, &p.GlobalShift); err != nil {
			return -1, nil, errors.Wrap(err, "")
		}
		key, err := swapnet.ParseModeTuple(modes)
		if err != nil {
			return -1, nil, errors.Wrap(err, "")
		}
		p.Weights = w[:numWeights(arity)]
		g, err := swapnet.NewGate(arity, p)
		if err != nil {
			return -1, nil, errors.Wrap(err, modes)
		}
		gates[key] = g
	}
	if err := rows.Err(); err != nil {
		return -1, nil, errors.Wrap(err, "")
	}
	return n, gates, nil
}

func numWeights(arity int) int {
	switch arity {
	case 2:
		return 2
	case 3, 4:
		return 3
	default:
		return 0
	}
}

func newDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", dbPath))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	if err := prepareDB(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "")
	}

	return db, nil
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (k TEXT PRIMARY KEY, v INTEGER) STRICT`, tableMeta)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	sqlStr = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (modes TEXT PRIMARY KEY, arity INTEGER, w0 REAL, w1 REAL, w2 REAL, exponent REAL, shift REAL) STRICT`, tableGates)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
