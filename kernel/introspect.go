package kernel

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/olekukonko/tablewriter"
)

// ProcInfo is one row of the "ps" table (spec.md §4.6).
type ProcInfo struct {
	PID      int
	Name     string
	State    string
	Priority int
	CurQ     int
	RTime    uint64
	WTime    uint64
	NRun     int
	Q        [numQueues]uint64
}

// Snapshot returns a ProcInfo for every non-Unused slot, in table order,
// the data `ps` and ProcInfo's rendering are built from. It deliberately
// does not take mu: spec.md §4.6 requires proc_info() ("ps") to run lock-
// free so it stays usable to inspect a kernel whose ptable_lock is
// wedged. Racing a concurrent transition can surface a torn or stale row
// -- the same tradeoff the source accepts for the same reason.
func (t *ProcessTable) Snapshot() []ProcInfo {
	out := make([]ProcInfo, 0, len(t.slots))
	for i := range t.slots {
		p := &t.slots[i]
		if p.State == Unused {
			continue
		}
		out = append(out, ProcInfo{
			PID:      p.PID,
			Name:     p.Name,
			State:    p.State.psName(),
			Priority: p.Priority,
			CurQ:     p.CurQ,
			RTime:    p.RTime,
			WTime:    p.WTime,
			NRun:     p.NRun,
			Q:        p.Q,
		})
	}
	return out
}

// ProcInfoTable renders Snapshot as the console table spec.md §4.6
// describes, using the same tablewriter construction the CLI's
// createTableListOutput uses for its own listings. Every row carries the
// q[0..4] lifetime-tick histogram spec.md §4.6 requires alongside the
// scalar accounting fields.
func ProcInfoTable(rows []ProcInfo) string {
	buf := new(bytes.Buffer)
	table := tablewriter.NewWriter(buf)
	table.SetHeader([]string{"PID", "NAME", "STATE", "PRIORITY", "CURQ", "RTIME", "WTIME", "NRUN", "Q0", "Q1", "Q2", "Q3", "Q4"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range rows {
		row := []string{
			strconv.Itoa(r.PID),
			r.Name,
			r.State,
			strconv.Itoa(r.Priority),
			strconv.Itoa(r.CurQ),
			strconv.FormatUint(r.RTime, 10),
			strconv.FormatUint(r.WTime, 10),
			strconv.Itoa(r.NRun),
		}
		for _, q := range r.Q {
			row = append(row, strconv.FormatUint(q, 10))
		}
		table.Append(row)
	}
	table.Render()
	return buf.String()
}

// ProcDump renders a single slot's full in-memory state with go-spew, the
// console debug trigger spec.md §4.6 describes for a wedged kernel. The
// compact state tag and recorded sleepTrace take the place of procdump's
// saved-PC-chain walk (SPEC_FULL.md §4), since there is no real call stack
// to unwind in this simulator.
func (t *ProcessTable) ProcDump(pid int) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.lookup(pid)
	if !ok {
		return fmt.Sprintf("%d: <no such process>", pid)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d %s %s %d\n", p.PID, p.State, p.Name, p.CurQ)
	if p.State == Sleeping && len(p.sleepTrace) > 0 {
		fmt.Fprintf(&b, "  sleeping on: %s\n", strings.Join(p.sleepTrace, " <- "))
	}
	spew.Fdump(&b, p)
	return b.String()
}
