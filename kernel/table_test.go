package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T, policy PolicyKind) *ProcessTable {
	t.Helper()
	tbl := NewProcessTable(Config{Policy: policy, NumCPU: 1})
	_, err := tbl.UserInit(nil)
	require.NoError(t, err)
	return tbl
}

func TestUserInitCreatesRunnableInit(t *testing.T) {
	tbl := newTestTable(t, PolicyRR)
	rows := tbl.Snapshot()
	require.Len(t, rows, 1)
	require.Equal(t, "runnable", rows[0].State)
	require.Equal(t, 1, rows[0].PID)
}

func TestAllocSlotTableFull(t *testing.T) {
	tbl := NewProcessTable(Config{NProc: 2})
	_, err := tbl.AllocSlot()
	require.NoError(t, err)
	_, err = tbl.AllocSlot()
	require.NoError(t, err)
	_, err = tbl.AllocSlot()
	require.ErrorIs(t, err, ErrTableFull)
}

func TestAllocSlotAllocatorFailureRevertsSlot(t *testing.T) {
	tbl := NewProcessTable(Config{NProc: 2, Allocator: NewInMemAllocator(1)})
	_, err := tbl.AllocSlot()
	require.NoError(t, err)

	_, err = tbl.AllocSlot()
	require.ErrorIs(t, err, ErrAllocFailed)

	// the failed slot must have reverted to Unused, so a subsequent
	// AllocSlot with headroom succeeds again.
	tbl.cfg.Allocator.(*InMemAllocator).FreePage(1)
	p, err := tbl.AllocSlot()
	require.NoError(t, err)
	require.Equal(t, Embryo, p.State)
}

func TestForkDuplicatesParentAndSetsParentPID(t *testing.T) {
	tbl := newTestTable(t, PolicyRR)
	childPID, err := tbl.Fork(1)
	require.NoError(t, err)

	rows := tbl.Snapshot()
	require.Len(t, rows, 2)

	tbl.mu.Lock()
	child, ok := tbl.lookup(childPID)
	tbl.mu.Unlock()
	require.True(t, ok)
	require.Equal(t, 1, child.Parent)
	require.Equal(t, Runnable, child.State)
}

func TestExitReparentsChildrenToInit(t *testing.T) {
	tbl := newTestTable(t, PolicyRR)
	midPID, err := tbl.Fork(1)
	require.NoError(t, err)
	grandchildPID, err := tbl.Fork(midPID)
	require.NoError(t, err)

	tbl.Exit(midPID)

	tbl.mu.Lock()
	grandchild, ok := tbl.lookup(grandchildPID)
	tbl.mu.Unlock()
	require.True(t, ok)
	require.Equal(t, 1, grandchild.Parent)
}

func TestExitOfInitPanics(t *testing.T) {
	tbl := newTestTable(t, PolicyRR)
	require.Panics(t, func() { tbl.Exit(1) })
}

func TestReapZombieChildFreesSlot(t *testing.T) {
	tbl := newTestTable(t, PolicyRR)
	childPID, err := tbl.Fork(1)
	require.NoError(t, err)
	tbl.Exit(childPID)

	tbl.mu.Lock()
	cpid, _, _, found := tbl.reapZombieChild(1)
	tbl.mu.Unlock()
	require.True(t, found)
	require.Equal(t, childPID, cpid)

	tbl.mu.Lock()
	_, ok := tbl.lookup(childPID)
	tbl.mu.Unlock()
	require.False(t, ok)
}

func TestKillSleepingProcessBecomesRunnable(t *testing.T) {
	tbl := newTestTable(t, PolicyRR)
	childPID, err := tbl.Fork(1)
	require.NoError(t, err)

	tbl.sleep(childPID, "some-chan", "test")
	require.NoError(t, tbl.Kill(childPID))

	tbl.mu.Lock()
	p, _ := tbl.lookup(childPID)
	state, killed := p.State, p.Killed
	tbl.mu.Unlock()
	require.Equal(t, Runnable, state)
	require.True(t, killed)
}

func TestKillUnknownPID(t *testing.T) {
	tbl := newTestTable(t, PolicyRR)
	require.ErrorIs(t, tbl.Kill(999), ErrUnknownPID)
}

func TestGrowReturnsOldSizeAndUpdatesSz(t *testing.T) {
	tbl := newTestTable(t, PolicyRR)
	old, err := tbl.Grow(1, 4096)
	require.NoError(t, err)
	require.Equal(t, pageSize, old)

	tbl.mu.Lock()
	p, _ := tbl.lookup(1)
	sz := p.Sz
	tbl.mu.Unlock()
	require.Equal(t, pageSize+4096, sz)
}

func TestGrowVMFailureLeavesSizeUnchanged(t *testing.T) {
	vm := NewInMemVM()
	vm.FailGrow = func(PageDir, int, int) bool { return true }
	tbl := NewProcessTable(Config{VM: vm})
	_, err := tbl.UserInit(nil)
	require.NoError(t, err)

	old, err := tbl.Grow(1, 4096)
	require.ErrorIs(t, err, ErrVMFailed)

	tbl.mu.Lock()
	p, _ := tbl.lookup(1)
	sz := p.Sz
	tbl.mu.Unlock()
	require.Equal(t, old, sz)
}

func TestSetPriorityReturnsOldValue(t *testing.T) {
	tbl := NewProcessTable(Config{Policy: PolicyPBS})
	_, err := tbl.UserInit(nil)
	require.NoError(t, err)

	old, err := tbl.SetPriority(1, 10)
	require.NoError(t, err)
	require.Equal(t, DefaultPriority, old)

	tbl.mu.Lock()
	p, _ := tbl.lookup(1)
	pr := p.Priority
	tbl.mu.Unlock()
	require.Equal(t, 10, pr)
}
