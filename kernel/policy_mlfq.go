package kernel

// mlfqPolicy implements the aging multilevel feedback queue: scan queues
// highest-priority (0) to lowest (numQueues-1) and dequeue the head pid of
// the first non-empty one (spec.md §4.4). Queue membership and aging are
// maintained by Tick/Yield/Wakeup, not by Select itself, so Select is a
// pure dequeue with no side effects beyond the pop.
type mlfqPolicy struct{}

func (mlfqPolicy) Kind() PolicyKind { return PolicyMLFQ }

func (mlfqPolicy) Select(t *ProcessTable) *Process {
	for q := 0; q < numQueues; q++ {
		for {
			pid, ok := t.mlfqDequeueFront(q)
			if !ok {
				break
			}
			p, live := t.lookup(pid)
			if !live || p.State != Runnable {
				// stale entry: the pid was reaped or moved queues since
				// being enqueued. Drop it and keep scanning this queue.
				continue
			}
			return p
		}
	}
	return nil
}
