package kernel

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapshotExcludesUnusedSlots(t *testing.T) {
	tbl := newTestTable(t, PolicyRR)
	_, err := tbl.Fork(1)
	require.NoError(t, err)

	rows := tbl.Snapshot()
	require.Len(t, rows, 2)
}

func TestProcInfoTableRendersPIDs(t *testing.T) {
	tbl := newTestTable(t, PolicyRR)
	childPID, err := tbl.Fork(1)
	require.NoError(t, err)

	out := ProcInfoTable(tbl.Snapshot())
	require.Contains(t, out, strconv.Itoa(childPID))
	require.Contains(t, out, "PID")
}

func TestProcDumpReportsSleepTraceAndUnknownPID(t *testing.T) {
	tbl := newTestTable(t, PolicyRR)
	pid, err := tbl.Fork(1)
	require.NoError(t, err)
	tbl.sleep(pid, "chan", "waiting-on-io")

	out := tbl.ProcDump(pid)
	require.True(t, strings.Contains(out, "waiting-on-io"))

	missing := tbl.ProcDump(9999)
	require.Contains(t, missing, "no such process")
}
