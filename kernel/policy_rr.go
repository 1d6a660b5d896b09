package kernel

// rrPolicy implements round-robin: scan the table starting just after the
// last-dispatched slot, wrapping around, and take the first Runnable slot
// found (spec.md §4.4). Every tick forces a yield, so in practice each
// Runnable process gets exactly one tick before rrPolicy moves on.
type rrPolicy struct{}

func (rrPolicy) Kind() PolicyKind { return PolicyRR }

func (rrPolicy) Select(t *ProcessTable) *Process {
	n := len(t.slots)
	if n == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		idx := (t.rrCursor + i) % n
		if t.slots[idx].State == Runnable {
			t.rrCursor = (idx + 1) % n
			return &t.slots[idx]
		}
	}
	return nil
}
