package kernel

import (
	"context"
	"time"
)

// Tick is the accounting handler driven once per simulated timer
// interrupt (spec.md §4.5): it advances every slot's run/wait counters and,
// under MLFQ, ages waiting processes and flags quantum-expired running
// ones for demotion. The demotion itself happens lazily, in Yield, per
// spec.md §9's stated preference for triggering it from the tick handler
// rather than from Yield's own bookkeeping.
func (t *ProcessTable) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentTick++

	for i := range t.slots {
		p := &t.slots[i]
		switch p.State {
		case Running:
			p.RTime++
			p.waitAge = 0
			switch t.cfg.Policy {
			case PolicyMLFQ:
				p.NTicks++
				p.Q[p.CurQ]++
				if p.NTicks >= mlfqQuantum[p.CurQ] {
					p.preemptPending = true
					p.pendingDemote = true
					t.cfg.Logger.Debug().Int("pid", p.PID).Int("queue", p.CurQ).
						Msg("mlfq quantum expired, demotion pending")
				}
			case PolicyRR:
				// quantum is always one tick under round-robin.
				p.preemptPending = true
			}
		case Runnable:
			p.WTime++
			p.TWTime++
			if t.cfg.Policy == PolicyMLFQ {
				t.ageLocked(p)
			}
		case Sleeping:
			p.TWTime++
		}
	}
}

// ageLocked promotes p one queue if it has waited past its current
// queue's aging threshold (spec.md §4.4, thresholds in config.go). A
// threshold of -1 (queue 0) means "never age further". Caller must hold
// mu.
func (t *ProcessTable) ageLocked(p *Process) {
	p.waitAge++
	threshold := mlfqAging[p.CurQ]
	if threshold < 0 || p.CurQ == 0 || p.waitAge < threshold {
		return
	}
	if t.mlfqRemove(p.CurQ, p.PID) {
		p.CurQ--
		p.waitAge = 0
		t.mlfqEnqueue(p.CurQ, p.PID)
		t.cfg.Logger.Debug().Int("pid", p.PID).Int("queue", p.CurQ).Msg("mlfq aged up")
	}
}

// StartTicker drives Tick every interval until ctx is done, the simulated
// equivalent of the teaching kernel's periodic timer interrupt.
func (t *ProcessTable) StartTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Tick()
			}
		}
	}()
}
