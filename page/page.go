// Package page encapsulates the byte layout of a single 4096-byte page.
// It is the only place in the module that knows an absolute header or
// cell offset — the pager and the B+Tree reach every field through the
// accessors here.
package page

import (
	"encoding/binary"
	"fmt"

	"flatdb/row"
)

// Size is the fixed page size in bytes; every page in the file is exactly
// this many bytes, and the file length is always a whole multiple of it.
const Size = 4096

// NodeType identifies whether a page holds a leaf or an internal node.
type NodeType uint8

const (
	NodeInternal NodeType = 0
	NodeLeaf     NodeType = 1
)

// Common node header: type(1) | is_root(1) | parent_page_idx(4).
const (
	nodeTypeOffset   = 0
	isRootOffset     = 1
	parentPtrOffset  = 2
	commonHeaderSize = 6
)

// Leaf header, appended after the common header: num_cells(4) | next_leaf(4).
const (
	leafNumCellsOffset = commonHeaderSize
	leafNextLeafOffset = commonHeaderSize + 4
	LeafHeaderSize     = commonHeaderSize + 8
)

// Leaf cell: key(4) | Row (row.Size).
const (
	LeafKeySize   = 4
	LeafCellSize  = LeafKeySize + row.Size
	leafCellStart = LeafHeaderSize
)

// LeafMaxCells is the number of leaf cells a page can hold.
const LeafMaxCells = (Size - LeafHeaderSize) / LeafCellSize

// LeftSplitCount and RightSplitCount divide the LeafMaxCells+1 cells present
// during a leaf split; the left node gets the larger half when the total
// is odd.
const (
	LeftSplitCount  = (LeafMaxCells + 1 + 1) / 2
	RightSplitCount = (LeafMaxCells + 1) - LeftSplitCount
)

// Internal header, appended after the common header: num_keys(4) | right_child(4).
const (
	internalNumKeysOffset    = commonHeaderSize
	internalRightChildOffset = commonHeaderSize + 4
	InternalHeaderSize       = commonHeaderSize + 8
)

// Internal cell: child_page_idx(4) | key(4).
const (
	InternalChildSize  = 4
	InternalKeySize    = 4
	InternalCellSize   = InternalChildSize + InternalKeySize
	internalCellStart  = InternalHeaderSize
)

// InternalMax is pinned low to exercise the internal-split path without
// needing thousands of rows. A production build would instead use
// (Size-InternalHeaderSize)/InternalCellSize.
const InternalMax = 3

// NoChild is the sentinel for "this internal cell/right-child slot is empty".
const NoChild = 0xFFFFFFFF

func mustRange(i, n uint32, what string) {
	if i >= n {
		panic(fmt.Sprintf("page: %s index %d out of range (have %d)", what, i, n))
	}
}

// --- common header ---

func GetNodeType(buf []byte) NodeType { return NodeType(buf[nodeTypeOffset]) }

func SetNodeType(buf []byte, t NodeType) { buf[nodeTypeOffset] = byte(t) }

func GetIsRoot(buf []byte) bool { return buf[isRootOffset] != 0 }

func SetIsRoot(buf []byte, v bool) {
	if v {
		buf[isRootOffset] = 1
	} else {
		buf[isRootOffset] = 0
	}
}

func GetParentPointer(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[parentPtrOffset : parentPtrOffset+4])
}

func SetParentPointer(buf []byte, idx uint32) {
	binary.LittleEndian.PutUint32(buf[parentPtrOffset:parentPtrOffset+4], idx)
}

// --- leaf node ---

func InitializeLeaf(buf []byte) {
	SetNodeType(buf, NodeLeaf)
	SetIsRoot(buf, false)
	SetLeafNumCells(buf, 0)
	SetLeafNextLeaf(buf, 0)
}

func GetLeafNumCells(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[leafNumCellsOffset : leafNumCellsOffset+4])
}

func SetLeafNumCells(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf[leafNumCellsOffset:leafNumCellsOffset+4], n)
}

// GetLeafNextLeaf returns the next sibling in the leaf chain, or 0 for
// "no sibling". Page 0 is always the root and is never a right sibling of
// another leaf, which is what makes the 0 sentinel safe here.
func GetLeafNextLeaf(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[leafNextLeafOffset : leafNextLeafOffset+4])
}

func SetLeafNextLeaf(buf []byte, idx uint32) {
	binary.LittleEndian.PutUint32(buf[leafNextLeafOffset:leafNextLeafOffset+4], idx)
}

func leafCellOffset(i uint32) int {
	return leafCellStart + int(i)*LeafCellSize
}

func GetLeafKey(buf []byte, i uint32) uint32 {
	mustRange(i, GetLeafNumCells(buf), "leaf cell")
	off := leafCellOffset(i)
	return binary.LittleEndian.Uint32(buf[off : off+LeafKeySize])
}

func SetLeafKey(buf []byte, i uint32, key uint32) {
	off := leafCellOffset(i)
	binary.LittleEndian.PutUint32(buf[off:off+LeafKeySize], key)
}

// GetLeafValue returns the raw row bytes for cell i. The slice aliases the
// page buffer: callers must not retain it across a GetPage call for a
// different page index.
func GetLeafValue(buf []byte, i uint32) []byte {
	mustRange(i, GetLeafNumCells(buf), "leaf cell")
	off := leafCellOffset(i) + LeafKeySize
	return buf[off : off+row.Size]
}

func SetLeafCell(buf []byte, i uint32, key uint32, r row.Row) error {
	off := leafCellOffset(i)
	binary.LittleEndian.PutUint32(buf[off:off+LeafKeySize], key)
	return row.Serialize(r, buf[off+LeafKeySize:off+LeafCellSize])
}

// CopyLeafCell copies cell src of srcBuf into cell dst of dstBuf.
func CopyLeafCell(dstBuf []byte, dst uint32, srcBuf []byte, src uint32) {
	srcOff := leafCellOffset(src)
	dstOff := leafCellOffset(dst)
	copy(dstBuf[dstOff:dstOff+LeafCellSize], srcBuf[srcOff:srcOff+LeafCellSize])
}

// --- internal node ---

func InitializeInternal(buf []byte) {
	SetNodeType(buf, NodeInternal)
	SetIsRoot(buf, false)
	SetInternalNumKeys(buf, 0)
	SetInternalRightChild(buf, NoChild)
}

func GetInternalNumKeys(buf []byte) uint32 {
	return binary.LittleEndian.Uint32(buf[internalNumKeysOffset : internalNumKeysOffset+4])
}

func SetInternalNumKeys(buf []byte, n uint32) {
	binary.LittleEndian.PutUint32(buf[internalNumKeysOffset:internalNumKeysOffset+4], n)
}

func GetInternalRightChild(buf []byte) uint32 {
	v := binary.LittleEndian.Uint32(buf[internalRightChildOffset : internalRightChildOffset+4])
	if v == NoChild {
		panic("page: read of empty internal right-child sentinel")
	}
	return v
}

// RightChildIsEmpty reports whether the right-child slot still holds the
// sentinel, without aborting the way GetInternalRightChild does.
func RightChildIsEmpty(buf []byte) bool {
	return binary.LittleEndian.Uint32(buf[internalRightChildOffset:internalRightChildOffset+4]) == NoChild
}

func SetInternalRightChild(buf []byte, idx uint32) {
	binary.LittleEndian.PutUint32(buf[internalRightChildOffset:internalRightChildOffset+4], idx)
}

func internalCellOffset(i uint32) int {
	return internalCellStart + int(i)*InternalCellSize
}

func GetInternalChild(buf []byte, i uint32) uint32 {
	mustRange(i, GetInternalNumKeys(buf), "internal cell")
	off := internalCellOffset(i)
	v := binary.LittleEndian.Uint32(buf[off : off+InternalChildSize])
	if v == NoChild {
		panic(fmt.Sprintf("page: internal cell %d child is the empty sentinel", i))
	}
	return v
}

func SetInternalChild(buf []byte, i uint32, idx uint32) {
	off := internalCellOffset(i)
	binary.LittleEndian.PutUint32(buf[off:off+InternalChildSize], idx)
}

func GetInternalKey(buf []byte, i uint32) uint32 {
	mustRange(i, GetInternalNumKeys(buf), "internal cell")
	off := internalCellOffset(i) + InternalChildSize
	return binary.LittleEndian.Uint32(buf[off : off+InternalKeySize])
}

func SetInternalKey(buf []byte, i uint32, key uint32) {
	off := internalCellOffset(i) + InternalChildSize
	binary.LittleEndian.PutUint32(buf[off:off+InternalKeySize], key)
}

func SetInternalCell(buf []byte, i uint32, child, key uint32) {
	SetInternalChild(buf, i, child)
	SetInternalKey(buf, i, key)
}

// CopyInternalCell copies cell src of srcBuf into cell dst of dstBuf.
func CopyInternalCell(dstBuf []byte, dst uint32, srcBuf []byte, src uint32) {
	srcOff := internalCellOffset(src)
	dstOff := internalCellOffset(dst)
	copy(dstBuf[dstOff:dstOff+InternalCellSize], srcBuf[srcOff:srcOff+InternalCellSize])
}

// NodeMaxKey returns the maximum key stored in the subtree rooted at this
// page. For a leaf it is the last cell's key; for an internal node it
// recurses into the right child, fetched via fetch.
func NodeMaxKey(buf []byte, fetch func(childIdx uint32) []byte) uint32 {
	if GetNodeType(buf) == NodeLeaf {
		n := GetLeafNumCells(buf)
		if n == 0 {
			panic("page: NodeMaxKey on empty leaf")
		}
		return GetLeafKey(buf, n-1)
	}
	right := GetInternalRightChild(buf)
	return NodeMaxKey(fetch(right), fetch)
}
