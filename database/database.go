// Package database is the façade over the pager and the B+Tree: it owns
// the open file and exposes the handful of operations the command loop
// actually calls — insert, a full-table scan, and close. There is no
// multi-table registry and no row-count bookkeeping; a store is always
// exactly one table.
package database

import (
	"fmt"

	"flatdb/btree"
	"flatdb/page"
	"flatdb/pager"
	"flatdb/row"
)

// ErrDuplicateKey is returned by Insert for a key that already exists.
var ErrDuplicateKey = btree.ErrDuplicateKey

// DB is an open single-table store.
type DB struct {
	pager *pager.Pager
	tree  *btree.BTree
}

// Open opens path, creating it if missing, and initialises an empty leaf
// root at page 0 for a brand-new file.
func Open(path string) (*DB, error) {
	p, err := pager.Open(path)
	if err != nil {
		return nil, err
	}
	if p.NumPages() == 0 {
		root, err := p.GetPage(0)
		if err != nil {
			return nil, err
		}
		page.InitializeLeaf(root.Data[:])
		page.SetIsRoot(root.Data[:], true)
	}
	return &DB{pager: p, tree: btree.New(p)}, nil
}

// Insert adds row to the table. It returns ErrDuplicateKey if row.ID is
// already present; any other error (capacity, corruption, I/O) is fatal.
func (db *DB) Insert(r row.Row) error {
	if err := db.tree.Insert(r); err != nil {
		return err
	}
	return nil
}

// SelectAll returns every row in ascending key order.
func (db *DB) SelectAll() ([]row.Row, error) {
	var rows []row.Row
	cursor, err := db.tree.StartCursor()
	if err != nil {
		return nil, err
	}
	for !cursor.EndOfTable {
		r, err := db.tree.CursorValue(cursor)
		if err != nil {
			return nil, fmt.Errorf("database: select: %w", err)
		}
		rows = append(rows, r)
		if err := db.tree.Advance(&cursor); err != nil {
			return nil, fmt.Errorf("database: select: %w", err)
		}
	}
	return rows, nil
}

// Pager exposes the underlying pager for the .btree diagnostic dump; no
// other caller needs it.
func (db *DB) Pager() *pager.Pager { return db.pager }

// Close flushes every resident page and closes the file. Durability is
// guaranteed only after this returns.
func (db *DB) Close() error {
	return db.pager.Close()
}
