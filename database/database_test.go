package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"flatdb/row"
)

func openTestDB(t *testing.T) (*DB, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return db, path
}

func TestSelectAllOnFreshDB(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	rows, err := db.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows on a fresh database, got %d", len(rows))
	}
}

func TestInsertAndSelectAll(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	want := row.Row{ID: 1, Username: "alice", Email: "alice@example.com"}
	if err := db.Insert(want); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	rows, err := db.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(rows) != 1 || rows[0] != want {
		t.Errorf("expected [%+v], got %+v", want, rows)
	}
}

func TestInsertDuplicateKeyFails(t *testing.T) {
	db, _ := openTestDB(t)
	defer db.Close()

	r := row.Row{ID: 1, Username: "alice", Email: "alice@example.com"}
	if err := db.Insert(r); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := db.Insert(r)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestCloseAndReopenPersistsRows(t *testing.T) {
	db, path := openTestDB(t)

	for id := uint32(1); id <= 5; id++ {
		r := row.Row{ID: id, Username: "user", Email: "user@example.com"}
		if err := db.Insert(r); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open (reopen): %v", err)
	}
	defer reopened.Close()

	rows, err := reopened.SelectAll()
	if err != nil {
		t.Fatalf("SelectAll: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 rows after reopen, got %d", len(rows))
	}
	for i, r := range rows {
		if r.ID != uint32(i+1) {
			t.Errorf("expected ascending ids after reopen, got %+v", rows)
			break
		}
	}
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.db")
	if err := os.WriteFile(path, make([]byte, 10), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Errorf("expected Open to reject a file whose length isn't a page multiple")
	}
}
