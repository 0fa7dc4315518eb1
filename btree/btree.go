// Package btree implements the on-disk B+Tree: ordered search, leaf and
// internal splits with parent fix-ups, root promotion, and cursor-based
// iteration over the leaf chain. Page 0 is permanently the root — there
// is no separate metadata page — and the right-child slot uses an
// explicit empty sentinel so an internal node can be told apart from one
// that simply hasn't acquired a right child yet. Every split rewrites
// the parent pointer of each child it moves, so a page's parent pointer
// is always correct after an Insert returns.
package btree

import (
	"errors"
	"fmt"
	"sort"

	"flatdb/page"
	"flatdb/pager"
	"flatdb/row"
)

// ErrDuplicateKey is returned by Insert when the key already exists. It is
// a user error, not a fatal one: callers surface it and keep running.
var ErrDuplicateKey = errors.New("btree: key already exists")

// BTree drives the page codec against pages obtained from a Pager. Page 0
// is always the root; its identity never changes across splits —
// createRoot copies the old root's bytes aside instead of relocating it.
type BTree struct {
	pager *pager.Pager
}

// New wraps an already-open Pager. If the pager has no pages yet, the
// caller (the database façade) is responsible for initialising page 0 as
// an empty root leaf before any Insert/Find call.
func New(p *pager.Pager) *BTree {
	return &BTree{pager: p}
}

// Cursor is a logical position: a page index, a cell index within that
// page, and whether it has run off the end of the table. It never holds
// a page pointer, so it stays valid across any number of intervening
// GetPage calls.
type Cursor struct {
	PageIdx    uint32
	CellIdx    uint32
	EndOfTable bool
}

func (t *BTree) page(idx uint32) (*pager.Page, error) {
	return t.pager.GetPage(idx)
}

func (t *BTree) fetch(idx uint32) []byte {
	pg, err := t.pager.GetPage(idx)
	if err != nil {
		panic(fmt.Sprintf("btree: fetch page %d: %v", idx, err))
	}
	return pg.Data[:]
}

func (t *BTree) nodeMaxKey(idx uint32) (uint32, error) {
	pg, err := t.page(idx)
	if err != nil {
		return 0, err
	}
	return page.NodeMaxKey(pg.Data[:], t.fetch), nil
}

func (t *BTree) allocate() (uint32, error) {
	idx, err := t.pager.AllocatePage()
	if err != nil {
		return 0, err
	}
	if _, err := t.pager.GetPage(idx); err != nil {
		return 0, err
	}
	return idx, nil
}

// Find descends from the root to the leaf that would contain key,
// returning a cursor at the matching cell, or at the insertion point if
// key is absent.
func (t *BTree) Find(key uint32) (Cursor, error) {
	idx := uint32(0)
	for {
		pg, err := t.page(idx)
		if err != nil {
			return Cursor{}, err
		}
		buf := pg.Data[:]
		if page.GetNodeType(buf) == page.NodeLeaf {
			cellIdx := leafSearch(buf, key)
			numCells := page.GetLeafNumCells(buf)
			return Cursor{PageIdx: idx, CellIdx: cellIdx, EndOfTable: cellIdx == numCells}, nil
		}
		idx = internalChildFor(buf, key)
	}
}

func leafSearch(buf []byte, key uint32) uint32 {
	numCells := page.GetLeafNumCells(buf)
	i := sort.Search(int(numCells), func(i int) bool {
		return page.GetLeafKey(buf, uint32(i)) >= key
	})
	return uint32(i)
}

func keyInsertIndex(buf []byte, numKeys uint32, key uint32) uint32 {
	i := sort.Search(int(numKeys), func(i int) bool {
		return page.GetInternalKey(buf, uint32(i)) >= key
	})
	return uint32(i)
}

func internalChildFor(buf []byte, key uint32) uint32 {
	numKeys := page.GetInternalNumKeys(buf)
	i := keyInsertIndex(buf, numKeys, key)
	if i == numKeys {
		return page.GetInternalRightChild(buf)
	}
	return page.GetInternalChild(buf, i)
}

// Insert adds row into the tree, splitting and promoting the root as
// needed. It returns ErrDuplicateKey if row.ID already exists.
func (t *BTree) Insert(r row.Row) error {
	cursor, err := t.Find(r.ID)
	if err != nil {
		return err
	}
	if !cursor.EndOfTable {
		pg, err := t.page(cursor.PageIdx)
		if err != nil {
			return err
		}
		if page.GetLeafKey(pg.Data[:], cursor.CellIdx) == r.ID {
			return ErrDuplicateKey
		}
	}
	return t.leafInsert(cursor, r.ID, r)
}

func (t *BTree) leafInsert(cursor Cursor, key uint32, r row.Row) error {
	pg, err := t.page(cursor.PageIdx)
	if err != nil {
		return err
	}
	buf := pg.Data[:]
	numCells := page.GetLeafNumCells(buf)
	if numCells < page.LeafMaxCells {
		for i := numCells; i > cursor.CellIdx; i-- {
			page.CopyLeafCell(buf, i, buf, i-1)
		}
		if err := page.SetLeafCell(buf, cursor.CellIdx, key, r); err != nil {
			return err
		}
		page.SetLeafNumCells(buf, numCells+1)
		return nil
	}
	return t.leafSplitAndInsert(cursor, key, r)
}

// leafSplitAndInsert splits a full leaf, distributing the LeafMaxCells+1
// cells (LeafMaxCells existing plus the one being inserted) across the
// old page and a freshly allocated sibling. Iterating the conceptual slot
// index downward and writing old's share back into old's own buffer is
// safe here because every write at slot i only ever reads from source
// slot i or i-1, both still untouched at that point in the descent.
func (t *BTree) leafSplitAndInsert(cursor Cursor, key uint32, r row.Row) error {
	oldIdx := cursor.PageIdx
	oldPg, err := t.page(oldIdx)
	if err != nil {
		return err
	}
	oldBuf := oldPg.Data[:]

	newIdx, err := t.allocate()
	if err != nil {
		return err
	}
	newPg, err := t.page(newIdx)
	if err != nil {
		return err
	}
	newBuf := newPg.Data[:]

	page.InitializeLeaf(newBuf)
	page.SetParentPointer(newBuf, page.GetParentPointer(oldBuf))
	page.SetLeafNextLeaf(newBuf, page.GetLeafNextLeaf(oldBuf))
	page.SetLeafNextLeaf(oldBuf, newIdx)

	for i := int(page.LeafMaxCells); i >= 0; i-- {
		idx := uint32(i)
		var destBuf []byte
		var destIdx uint32
		if idx < page.LeftSplitCount {
			destBuf, destIdx = oldBuf, idx
		} else {
			destBuf, destIdx = newBuf, idx-page.LeftSplitCount
		}
		switch {
		case idx == cursor.CellIdx:
			if err := page.SetLeafCell(destBuf, destIdx, key, r); err != nil {
				return err
			}
		case idx > cursor.CellIdx:
			page.CopyLeafCell(destBuf, destIdx, oldBuf, idx-1)
		default:
			page.CopyLeafCell(destBuf, destIdx, oldBuf, idx)
		}
	}
	page.SetLeafNumCells(oldBuf, page.LeftSplitCount)
	page.SetLeafNumCells(newBuf, page.RightSplitCount)

	if page.GetIsRoot(oldBuf) {
		_, err := t.createRoot(newIdx)
		return err
	}

	parentIdx := page.GetParentPointer(oldBuf)
	newOldMax := page.GetLeafKey(oldBuf, page.LeftSplitCount-1)
	if err := t.updateKeyForChild(parentIdx, oldIdx, newOldMax); err != nil {
		return err
	}
	return t.internalInsert(parentIdx, newIdx)
}

// createRoot promotes a split root into an internal node with two
// children, while keeping the root itself at page 0. The old root's
// bytes are copied verbatim to a freshly allocated left child; every
// child a copied internal node owns has its parent pointer rewritten,
// since they all still name page 0.
func (t *BTree) createRoot(rightChildIdx uint32) (uint32, error) {
	leftIdx, err := t.allocate()
	if err != nil {
		return 0, err
	}
	rootPg, err := t.page(0)
	if err != nil {
		return 0, err
	}
	leftPg, err := t.page(leftIdx)
	if err != nil {
		return 0, err
	}
	*leftPg = *rootPg
	leftBuf := leftPg.Data[:]

	page.SetIsRoot(leftBuf, false)
	if page.GetNodeType(leftBuf) == page.NodeInternal {
		numKeys := page.GetInternalNumKeys(leftBuf)
		for i := uint32(0); i < numKeys; i++ {
			childBuf, err := t.page(page.GetInternalChild(leftBuf, i))
			if err != nil {
				return 0, err
			}
			page.SetParentPointer(childBuf.Data[:], leftIdx)
		}
		rcPg, err := t.page(page.GetInternalRightChild(leftBuf))
		if err != nil {
			return 0, err
		}
		page.SetParentPointer(rcPg.Data[:], leftIdx)
	}
	leftMax := page.NodeMaxKey(leftBuf, t.fetch)

	rootBuf := rootPg.Data[:]
	page.InitializeInternal(rootBuf)
	page.SetIsRoot(rootBuf, true)
	page.SetInternalNumKeys(rootBuf, 1)
	page.SetInternalChild(rootBuf, 0, leftIdx)
	page.SetInternalKey(rootBuf, 0, leftMax)
	page.SetInternalRightChild(rootBuf, rightChildIdx)

	page.SetParentPointer(leftBuf, 0)
	rightPg, err := t.page(rightChildIdx)
	if err != nil {
		return 0, err
	}
	page.SetParentPointer(rightPg.Data[:], 0)

	return leftIdx, nil
}

// updateKeyForChild finds the cell in the parent page whose child is
// childIdx and rewrites its key. A child installed as the right-child
// slot has no stored key (the right child is always the largest), so
// this is a silent no-op for it.
func (t *BTree) updateKeyForChild(parentIdx, childIdx, newKey uint32) error {
	pg, err := t.page(parentIdx)
	if err != nil {
		return err
	}
	buf := pg.Data[:]
	numKeys := page.GetInternalNumKeys(buf)
	for i := uint32(0); i < numKeys; i++ {
		if page.GetInternalChild(buf, i) == childIdx {
			page.SetInternalKey(buf, i, newKey)
			return nil
		}
	}
	return nil
}

// internalInsert splices childIdx into the internal node at parentIdx,
// splitting it first if it is already at InternalMax.
func (t *BTree) internalInsert(parentIdx, childIdx uint32) error {
	pg, err := t.page(parentIdx)
	if err != nil {
		return err
	}
	buf := pg.Data[:]

	if page.GetInternalNumKeys(buf) >= page.InternalMax {
		return t.internalSplitAndInsert(parentIdx, childIdx)
	}

	childPg, err := t.page(childIdx)
	if err != nil {
		return err
	}
	page.SetParentPointer(childPg.Data[:], parentIdx)

	if page.RightChildIsEmpty(buf) {
		page.SetInternalRightChild(buf, childIdx)
		return nil
	}

	newMax := page.NodeMaxKey(childPg.Data[:], t.fetch)
	rightChildIdx := page.GetInternalRightChild(buf)
	rightPg, err := t.page(rightChildIdx)
	if err != nil {
		return err
	}
	rightMax := page.NodeMaxKey(rightPg.Data[:], t.fetch)

	oldNumKeys := page.GetInternalNumKeys(buf)
	newNumKeys := oldNumKeys + 1
	if newMax > rightMax {
		page.SetInternalCell(buf, oldNumKeys, rightChildIdx, rightMax)
		page.SetInternalRightChild(buf, childIdx)
	} else {
		dest := keyInsertIndex(buf, oldNumKeys, newMax)
		for i := newNumKeys - 1; i > dest; i-- {
			page.CopyInternalCell(buf, i, buf, i-1)
		}
		page.SetInternalCell(buf, dest, childIdx, newMax)
	}
	page.SetInternalNumKeys(buf, newNumKeys)
	return nil
}

// internalSplitAndInsert splits a full internal node. The top half of
// its children (the largest keys, plus the former right child) move to
// a new sibling by replaying internalInsert against it; the remaining
// highest cell in the old node is promoted to fill the right-child slot
// it gave up.
func (t *BTree) internalSplitAndInsert(parentIdx, childIdx uint32) error {
	oldIdx := parentIdx
	oldPg, err := t.page(oldIdx)
	if err != nil {
		return err
	}

	newIdx, err := t.allocate()
	if err != nil {
		return err
	}
	newPg, err := t.page(newIdx)
	if err != nil {
		return err
	}
	page.InitializeInternal(newPg.Data[:])

	isRootSplit := page.GetIsRoot(oldPg.Data[:])
	var parentOfOld uint32
	if isRootSplit {
		newLeftIdx, err := t.createRoot(newIdx)
		if err != nil {
			return err
		}
		oldIdx = newLeftIdx
		oldPg, err = t.page(oldIdx)
		if err != nil {
			return err
		}
		parentOfOld = 0
	} else {
		parentOfOld = page.GetParentPointer(oldPg.Data[:])
		page.SetParentPointer(newPg.Data[:], parentOfOld)
	}

	numKeys := page.GetInternalNumKeys(oldPg.Data[:])
	totalChildren := numKeys + 1
	leftChildren := (totalChildren + 1) / 2

	for pos := leftChildren; pos < totalChildren; pos++ {
		buf := oldPg.Data[:]
		var moving uint32
		if pos < numKeys {
			moving = page.GetInternalChild(buf, pos)
		} else {
			moving = page.GetInternalRightChild(buf)
		}
		if err := t.internalInsert(newIdx, moving); err != nil {
			return err
		}
	}

	oldBuf := oldPg.Data[:]
	page.SetInternalNumKeys(oldBuf, leftChildren)
	lastIdx := leftChildren - 1
	promoted := page.GetInternalChild(oldBuf, lastIdx)
	page.SetInternalRightChild(oldBuf, promoted)
	page.SetInternalNumKeys(oldBuf, lastIdx)

	childPg, err := t.page(childIdx)
	if err != nil {
		return err
	}
	childMax := page.NodeMaxKey(childPg.Data[:], t.fetch)
	oldMaxAfterSplit := page.NodeMaxKey(oldPg.Data[:], t.fetch)

	var targetIdx uint32
	if childMax <= oldMaxAfterSplit {
		targetIdx = oldIdx
	} else {
		targetIdx = newIdx
	}
	if err := t.internalInsert(targetIdx, childIdx); err != nil {
		return err
	}

	finalOldMax := page.NodeMaxKey(oldPg.Data[:], t.fetch)
	if err := t.updateKeyForChild(parentOfOld, oldIdx, finalOldMax); err != nil {
		return err
	}
	if !isRootSplit {
		return t.internalInsert(parentOfOld, newIdx)
	}
	return nil
}
