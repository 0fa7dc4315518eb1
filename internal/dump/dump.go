// Package dump renders the diagnostic output behind the .btree and
// .constants meta-commands: a pre-order walk of the tree and a listing
// of the fixed layout sizes that govern it.
package dump

import (
	"fmt"
	"io"
	"strings"

	"flatdb/page"
	"flatdb/pager"
	"flatdb/row"
)

// Tree writes an indented pre-order dump of the tree rooted at pageIdx:
// "- leaf (size N)" followed by one "- N" line per key, or
// "- internal (size N)" with each child dumped before the "- key K" line
// that separates it from the next.
func Tree(w io.Writer, p *pager.Pager, pageIdx uint32) error {
	return tree(w, p, pageIdx, 0)
}

func tree(w io.Writer, p *pager.Pager, pageIdx uint32, level uint32) error {
	pg, err := p.GetPage(pageIdx)
	if err != nil {
		return err
	}
	buf := pg.Data[:]
	indent := strings.Repeat("  ", int(level))

	if page.GetNodeType(buf) == page.NodeLeaf {
		numCells := page.GetLeafNumCells(buf)
		fmt.Fprintf(w, "%s- leaf (size %d)\n", indent, numCells)
		for i := uint32(0); i < numCells; i++ {
			fmt.Fprintf(w, "%s  - %d\n", indent, page.GetLeafKey(buf, i))
		}
		return nil
	}

	numKeys := page.GetInternalNumKeys(buf)
	fmt.Fprintf(w, "%s- internal (size %d)\n", indent, numKeys)
	for i := uint32(0); i < numKeys; i++ {
		child := page.GetInternalChild(buf, i)
		if err := tree(w, p, child, level+1); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s  - key %d\n", indent, page.GetInternalKey(buf, i))
	}
	rightChild := page.GetInternalRightChild(buf)
	return tree(w, p, rightChild, level+1)
}

// Constants writes the layout constants .constants reports, including
// INTERNAL_NODE_MAX_CELLS so the fixed fan-out that governs internal
// splits is visible rather than hidden inline.
func Constants(w io.Writer) {
	fmt.Fprintf(w, "ROW_SIZE: %d\n", row.Size)
	fmt.Fprintf(w, "COMMON_NODE_HEADER_SIZE: %d\n", 6)
	fmt.Fprintf(w, "LEAF_NODE_HEADER_SIZE: %d\n", page.LeafHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_CELL_SIZE: %d\n", page.LeafCellSize)
	fmt.Fprintf(w, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", page.Size-page.LeafHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_MAX_CELLS: %d\n", page.LeafMaxCells)
	fmt.Fprintf(w, "INTERNAL_NODE_CELL_SIZE: %d\n", page.InternalCellSize)
	fmt.Fprintf(w, "INTERNAL_NODE_MAX_CELLS: %d\n", page.InternalMax)
}
