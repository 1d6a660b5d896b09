package kernel

import "sync/atomic"

// This file models the external collaborators spec.md §2 lists as out of
// scope for the core: the kernel allocator, the VM manager, and the
// filesystem. Each is a narrow interface -- the same shape plib.Inspector
// and host.HostReader use (one interface, one concrete implementation
// selected at construction time) -- with an in-process stand-in so the
// scheduler core is testable without a real page table or inode table.

// Page is an opaque handle to an allocator-owned page, such as a kernel
// stack (spec.md: kstack).
type Page uint64

// PageDir is an opaque handle to a VM-owned page directory (spec.md: pgdir).
type PageDir uint64

// Inode is an opaque handle to a filesystem inode (spec.md: cwd).
type Inode uint64

// FileHandle is an opaque handle to an open-file-table entry.
type FileHandle uint64

// Allocator is the kernel page allocator collaborator (alloc_page/free_page).
type Allocator interface {
	AllocPage() (Page, error)
	FreePage(Page)
}

// VM is the virtual-memory manager collaborator (vm_setup/vm_copy/vm_free/vm_switch).
type VM interface {
	// Setup creates a fresh page directory with the kernel mapped in.
	Setup() (PageDir, error)
	// Copy duplicates src (sized sz bytes) into a new page directory, for fork.
	Copy(src PageDir, sz int) (PageDir, error)
	// Free releases a page directory and everything mapped under it.
	Free(PageDir)
	// Switch makes dir the active user address space on the calling CPU.
	Switch(PageDir)
	// Grow resizes dir's user memory from oldSz by delta bytes (may be
	// negative) and returns the resulting size.
	Grow(dir PageDir, oldSz, delta int) (newSz int, err error)
}

// FS is the filesystem collaborator: inode reference-counting for cwd, and
// the open-file-table dup/close pair fork/exit rely on.
type FS interface {
	DupInode(Inode) Inode
	PutInode(Inode)
	RootInode() Inode
	DupFile(FileHandle) FileHandle
	CloseFile(FileHandle)
}

// --- in-process stand-ins -------------------------------------------------

// InMemAllocator hands out monotonically increasing page handles. When cap
// is positive it fails once that many pages are outstanding, letting tests
// exercise AllocSlot's kernel-stack-exhaustion path (spec.md §4.1).
type InMemAllocator struct {
	next   uint64
	cap    int
	outstd int64
}

// NewInMemAllocator returns an InMemAllocator. A non-positive cap means
// unlimited pages.
func NewInMemAllocator(cap int) *InMemAllocator {
	return &InMemAllocator{cap: cap}
}

func (a *InMemAllocator) AllocPage() (Page, error) {
	if a.cap > 0 && atomic.LoadInt64(&a.outstd) >= int64(a.cap) {
		return 0, ErrAllocFailed
	}
	atomic.AddInt64(&a.outstd, 1)
	a.next++
	return Page(a.next), nil
}

func (a *InMemAllocator) FreePage(Page) {
	atomic.AddInt64(&a.outstd, -1)
}

// InMemVM simulates page-directory bookkeeping with plain counters. FailGrow
// and FailCopy, when set, let tests force the -1-returning failure paths of
// Grow/Fork (spec.md §4.1).
type InMemVM struct {
	next uint64

	FailGrow func(dir PageDir, oldSz, delta int) bool
	FailCopy func(src PageDir, sz int) bool
}

func NewInMemVM() *InMemVM { return &InMemVM{} }

func (v *InMemVM) Setup() (PageDir, error) {
	v.next++
	return PageDir(v.next), nil
}

func (v *InMemVM) Copy(src PageDir, sz int) (PageDir, error) {
	if v.FailCopy != nil && v.FailCopy(src, sz) {
		return 0, ErrVMFailed
	}
	v.next++
	return PageDir(v.next), nil
}

func (v *InMemVM) Free(PageDir) {}

func (v *InMemVM) Switch(PageDir) {}

func (v *InMemVM) Grow(dir PageDir, oldSz, delta int) (int, error) {
	if v.FailGrow != nil && v.FailGrow(dir, oldSz, delta) {
		return 0, ErrVMFailed
	}
	newSz := oldSz + delta
	if newSz < 0 {
		newSz = 0
	}
	return newSz, nil
}

// InMemFS simulates inode/file-table reference counting with counters only
// (no real descriptors), since real filesystem access is out of scope
// (spec.md §1).
type InMemFS struct {
	next uint64
}

func NewInMemFS() *InMemFS { return &InMemFS{next: 1} }

func (f *InMemFS) RootInode() Inode { return 1 }

func (f *InMemFS) DupInode(i Inode) Inode { return i }

func (f *InMemFS) PutInode(Inode) {}

func (f *InMemFS) DupFile(h FileHandle) FileHandle { return h }

func (f *InMemFS) CloseFile(FileHandle) {}
