package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTickAccumulatesRunAndWaitTimeForMLFQ(t *testing.T) {
	tbl := NewProcessTable(Config{Policy: PolicyMLFQ, NProc: 4})
	running, err := tbl.AllocSlot()
	require.NoError(t, err)
	waiting, err := tbl.AllocSlot()
	require.NoError(t, err)

	tbl.mu.Lock()
	running.State = Running
	waiting.State = Runnable
	tbl.mu.Unlock()

	tbl.Tick()

	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	require.EqualValues(t, 1, running.RTime)
	require.EqualValues(t, 1, running.Q[0])
	require.EqualValues(t, 1, waiting.WTime)
	require.EqualValues(t, 1, waiting.TWTime)
}

func TestTickFlagsMLFQDemotionAtQuantumExpiry(t *testing.T) {
	tbl := NewProcessTable(Config{Policy: PolicyMLFQ, NProc: 4})
	p, err := tbl.AllocSlot()
	require.NoError(t, err)
	tbl.mu.Lock()
	p.State = Running
	p.CurQ = 0
	tbl.mu.Unlock()

	// mlfqQuantum[0] == 1, so a single tick should flag demotion.
	tbl.Tick()

	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	require.True(t, p.preemptPending)
	require.True(t, p.pendingDemote)
}

func TestTickDoesNotFlagDemotionUnderPBS(t *testing.T) {
	tbl := NewProcessTable(Config{Policy: PolicyPBS, NProc: 4})
	p, err := tbl.AllocSlot()
	require.NoError(t, err)
	tbl.mu.Lock()
	p.State = Running
	tbl.mu.Unlock()

	tbl.Tick()

	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	require.False(t, p.preemptPending)
}

func TestYieldAppliesPendingDemotion(t *testing.T) {
	tbl := NewProcessTable(Config{Policy: PolicyMLFQ, NProc: 4})
	p, err := tbl.AllocSlot()
	require.NoError(t, err)
	tbl.mu.Lock()
	p.State = Running
	p.CurQ = 0
	tbl.mu.Unlock()

	tbl.Tick() // flags demotion since mlfqQuantum[0] == 1
	tbl.Yield(p.PID)

	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	require.Equal(t, 1, p.CurQ)
	require.False(t, p.pendingDemote)
	require.Equal(t, Runnable, p.State)
}

func TestAgingPromotesLongWaitingProcess(t *testing.T) {
	tbl := NewProcessTable(Config{Policy: PolicyMLFQ, NProc: 4})
	p, err := tbl.AllocSlot()
	require.NoError(t, err)
	tbl.mu.Lock()
	p.State = Runnable
	p.CurQ = 1
	tbl.mlfqEnqueue(1, p.PID)
	tbl.mu.Unlock()

	for i := 0; i < mlfqAging[1]; i++ {
		tbl.Tick()
	}

	tbl.mu.Lock()
	defer tbl.mu.Unlock()
	require.Equal(t, 0, p.CurQ)
}
