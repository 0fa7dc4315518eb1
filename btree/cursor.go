package btree

import (
	"flatdb/page"
	"flatdb/row"
)

// StartCursor returns a cursor at the first row in ascending key order,
// descending to the leftmost leaf. If the tree is empty, EndOfTable is
// set immediately.
func (t *BTree) StartCursor() (Cursor, error) {
	return t.Find(0)
}

// Advance moves the cursor to the next cell in ascending key order,
// following the leaf chain across page boundaries. It is a no-op once
// EndOfTable is set.
func (t *BTree) Advance(c *Cursor) error {
	if c.EndOfTable {
		return nil
	}
	pg, err := t.page(c.PageIdx)
	if err != nil {
		return err
	}
	buf := pg.Data[:]
	c.CellIdx++
	if c.CellIdx < page.GetLeafNumCells(buf) {
		return nil
	}

	next := page.GetLeafNextLeaf(buf)
	if next == 0 {
		c.EndOfTable = true
		return nil
	}
	nextPg, err := t.page(next)
	if err != nil {
		return err
	}
	c.PageIdx = next
	c.CellIdx = 0
	if page.GetLeafNumCells(nextPg.Data[:]) == 0 {
		c.EndOfTable = true
	}
	return nil
}

// CursorValue deserialises the row at the cursor's current position. It
// re-resolves the page on every call rather than keeping an interior
// pointer around.
func (t *BTree) CursorValue(c Cursor) (row.Row, error) {
	pg, err := t.page(c.PageIdx)
	if err != nil {
		return row.Row{}, err
	}
	raw := page.GetLeafValue(pg.Data[:], c.CellIdx)
	return row.Deserialize(raw)
}
