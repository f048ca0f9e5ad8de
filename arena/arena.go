// Package arena backs the array/context heap with a page-growable region
// of memory, mirroring the teacher's page-oriented HBIN growth
// (hive/hbin.go, hive/alloc's GrowByPages) but for an in-process heap
// rather than an mmap'd file. On unix targets growth is backed by an
// anonymous golang.org/x/sys/unix.Mmap region, matching internal/mmfile's
// use of the same package for file-backed mappings; other targets fall
// back to a plain growable slice, mirroring internal/mmfile's
// mmfile_fallback.go.
package arena

import (
	"fmt"

	"github.com/renfield/evalcore/internal/buf"
)

// PageSize matches the teacher's HBIN alignment unit (4 KiB), used here
// as the arena's growth granularity.
const PageSize = 4096

// Arena is a contiguous, page-aligned byte region that can only grow
// (never move its logical offsets, never shrink below its high-water
// mark while anything is live in it) — the property chunkstack.Stack and
// array.Heap both need from their backing storage.
type Arena struct {
	data []byte // len == capacity
	used int    // bytes currently handed out
}

// New reserves an arena of at least minBytes, rounded up to a whole
// number of pages.
func New(minBytes int) (*Arena, error) {
	if minBytes <= 0 {
		minBytes = PageSize
	}
	pages := (minBytes + PageSize - 1) / PageSize
	size := pages * PageSize
	data, err := mapRegion(size)
	if err != nil {
		return nil, fmt.Errorf("arena: reserve %d bytes: %w", size, err)
	}
	return &Arena{data: data}, nil
}

// Close releases the underlying mapping. The arena must not be used
// afterwards.
func (a *Arena) Close() error {
	if a == nil || a.data == nil {
		return nil
	}
	err := unmapRegion(a.data)
	a.data = nil
	return err
}

// Cap returns the arena's current reserved capacity in bytes.
func (a *Arena) Cap() int { return len(a.data) }

// Used returns the number of bytes handed out via Take so far.
func (a *Arena) Used() int { return a.used }

// GrowByPages extends the arena by numPages pages, remapping to a larger
// region and copying the live prefix across (mirrors
// hive.Allocator.GrowByPages's page-multiple contract).
func (a *Arena) GrowByPages(numPages int) error {
	if numPages <= 0 {
		return fmt.Errorf("arena: numPages must be positive, got %d", numPages)
	}
	newSize := len(a.data) + numPages*PageSize
	next, err := mapRegion(newSize)
	if err != nil {
		return fmt.Errorf("arena: grow to %d bytes: %w", newSize, err)
	}
	copy(next, a.data[:a.used])
	old := a.data
	a.data = next
	if old != nil {
		if err := unmapRegion(old); err != nil {
			return fmt.Errorf("arena: unmap old region during grow: %w", err)
		}
	}
	return nil
}

// Take hands out the next n bytes of the arena, growing it first if
// necessary, and returns the byte offset at which they start.
//
// The region aliases the arena's backing storage: callers must not
// retain a slice obtained via Bytes across a GrowByPages call without
// re-deriving it from the offset, since growth may remap.
func (a *Arena) Take(n int) (off int, ok bool) {
	need, ok := buf.AddOverflowSafe(a.used, n)
	if !ok {
		return 0, false
	}
	if need > len(a.data) {
		needPages := (need - len(a.data) + PageSize - 1) / PageSize
		if err := a.GrowByPages(needPages); err != nil {
			return 0, false
		}
	}
	off = a.used
	a.used += n
	return off, true
}

// Bytes returns the byte range [off, off+n) of the arena's backing
// storage. Valid only until the next GrowByPages. Panics if the range
// falls outside the arena, like a plain slice expression would — but
// via buf.Slice's overflow-safe bounds arithmetic rather than a raw
// off+n addition, which can wrap on a malformed offset/length pair.
func (a *Arena) Bytes(off, n int) []byte {
	region, ok := buf.Slice(a.data, off, n)
	if !ok {
		panic(fmt.Sprintf("arena: range [%d, %d) out of bounds (cap=%d)", off, off+n, len(a.data)))
	}
	return region
}

// freedPoisonByte mirrors cell.freedPoisonByte; kept as an unexported
// duplicate to avoid a dependency cycle (cell does not, and should not,
// import arena).
const freedPoisonByte = 0xFF

// Poison overwrites [off, off+n) with the freed-node marker byte so a
// dangling read is classified as freed by the pointer-kind oracle rather
// than misread as live data. Debug-only; production builds may skip
// calling this.
func (a *Arena) Poison(off, n int) {
	region := a.data[off : off+n]
	for i := range region {
		region[i] = freedPoisonByte
	}
}

// Reset releases all allocations back to the arena without unmapping it,
// for pooling arenas across independent interpreter instances.
func (a *Arena) Reset() {
	a.used = 0
}
