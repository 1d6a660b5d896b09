package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigFillsEveryCollaborator(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, NPROC, cfg.NProc)
	require.Greater(t, cfg.NumCPU, 0)
	require.NotNil(t, cfg.Allocator)
	require.NotNil(t, cfg.VM)
	require.NotNil(t, cfg.FS)
	require.NotNil(t, cfg.Logger)
	require.Equal(t, PolicyRR, cfg.Policy)
}

func TestPolicyKindStringMatchesBuildVocabulary(t *testing.T) {
	require.Equal(t, "SCHED_RR", PolicyRR.String())
	require.Equal(t, "SCHED_FCFS", PolicyFCFS.String())
	require.Equal(t, "SCHED_PBS", PolicyPBS.String())
	require.Equal(t, "SCHED_MLFQ", PolicyMLFQ.String())
}

func TestProcStateStringDefendsOutOfRange(t *testing.T) {
	var bad ProcState = 99
	require.Equal(t, "???", bad.String())
}
