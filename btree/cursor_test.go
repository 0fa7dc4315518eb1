package btree

import "testing"

func TestStartCursorOnEmptyTreeIsEndOfTable(t *testing.T) {
	tree := newTestTree(t)
	c, err := tree.StartCursor()
	if err != nil {
		t.Fatalf("StartCursor: %v", err)
	}
	if !c.EndOfTable {
		t.Errorf("expected EndOfTable on a fresh tree")
	}
}

func TestAdvancePastLastCellSetsEndOfTable(t *testing.T) {
	tree := newTestTree(t)
	if err := tree.Insert(testRow(1)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	c, err := tree.StartCursor()
	if err != nil {
		t.Fatalf("StartCursor: %v", err)
	}
	if err := tree.Advance(&c); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !c.EndOfTable {
		t.Errorf("expected EndOfTable after advancing past the only row")
	}
}

func TestAdvanceIsNoOpAtEndOfTable(t *testing.T) {
	tree := newTestTree(t)
	c, err := tree.StartCursor()
	if err != nil {
		t.Fatalf("StartCursor: %v", err)
	}
	if !c.EndOfTable {
		t.Fatalf("expected EndOfTable on empty tree")
	}
	before := c
	if err := tree.Advance(&c); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if c != before {
		t.Errorf("expected Advance to be a no-op once EndOfTable is set")
	}
}

func TestAdvanceCrossesLeafBoundary(t *testing.T) {
	tree := newTestTree(t)
	for id := uint32(1); id <= 20; id++ {
		if err := tree.Insert(testRow(id)); err != nil {
			t.Fatalf("Insert(%d): %v", id, err)
		}
	}
	ids := collectAscending(t, tree)
	if len(ids) != 20 {
		t.Fatalf("expected 20 rows, got %d", len(ids))
	}
}
