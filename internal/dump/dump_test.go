package dump

import (
	"bytes"
	"strings"
	"testing"

	"flatdb/database"
	"flatdb/row"
)

func TestConstants(t *testing.T) {
	var buf bytes.Buffer
	Constants(&buf)
	out := buf.String()
	for _, want := range []string{
		"ROW_SIZE: 291",
		"LEAF_NODE_MAX_CELLS:",
		"INTERNAL_NODE_MAX_CELLS:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestTreeOnSingleLeafRoot(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/dump.db"

	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	defer db.Close()

	if err := db.Insert(row.Row{ID: 1, Username: "a", Email: "a@example.com"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := db.Insert(row.Row{ID: 2, Username: "b", Email: "b@example.com"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var buf bytes.Buffer
	if err := Tree(&buf, db.Pager(), 0); err != nil {
		t.Fatalf("Tree: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "- leaf (size 2)") {
		t.Errorf("expected leaf size line, got:\n%s", out)
	}
	if !strings.Contains(out, "- 1") || !strings.Contains(out, "- 2") {
		t.Errorf("expected both keys dumped, got:\n%s", out)
	}
}

func TestTreeOnPromotedRoot(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/dump_promoted.db"

	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	defer db.Close()

	for id := uint32(1); id <= 20; id++ {
		if err := db.Insert(row.Row{ID: id, Username: "u", Email: "u@example.com"}); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}

	var buf bytes.Buffer
	if err := Tree(&buf, db.Pager(), 0); err != nil {
		t.Fatalf("Tree: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "- internal (size") {
		t.Errorf("expected internal root after 20 inserts, got:\n%s", out)
	}
	if !strings.Contains(out, "- key ") {
		t.Errorf("expected at least one separator key line, got:\n%s", out)
	}
}
