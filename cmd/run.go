package cmd

import (
	"fmt"

	"github.com/arctir/xvsched/kernel"
)

// spawnDemoWorkload spawns n demo processes in rotation across three
// shapes: a CPU-bound loop that only gives up the CPU when preempted at a
// CheckPoint, and a producer/consumer
// pair that Sleep/Wakeup each other on a shared channel token. This
// reproduces enough of a realistic workload mix to show RR/FCFS/PBS/MLFQ
// actually dispatching differently (spec.md §8's testable scenarios),
// standing in for `time.c`'s subprocess the way SPEC_FULL.md §4 describes.
func spawnDemoWorkload(t *kernel.ProcessTable, n int) []int {
	const wakeChan = "xvsched-demo-wakeup"

	pids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		var w kernel.Workload
		switch i % 3 {
		case 0:
			w = cpuBoundWorkload(50)
		case 1:
			w = producerWorkload(wakeChan, 20)
		default:
			w = consumerWorkload(wakeChan, 5)
		}

		pid, err := t.Spawn(fmt.Sprintf("demo%d", i), w)
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}

// cpuBoundWorkload runs iterations simulated instructions without ever
// voluntarily giving up the CPU, checking in at each one -- the busy loop
// spec.md §8 scenario 1 describes. Under RR/MLFQ it gets preempted the
// moment its quantum runs out (kernel.RunContext.CheckPoint); under
// FCFS/PBS, which never flag a quantum expiry, it simply keeps running.
func cpuBoundWorkload(iterations int) kernel.Workload {
	return func(rc *kernel.RunContext) {
		for i := 0; i < iterations; i++ {
			if rc.Killed() {
				return
			}
			rc.CheckPoint()
		}
	}
}

// producerWorkload yields rounds times, waking every consumer sleeping on
// chanTok once per round.
func producerWorkload(chanTok any, rounds int) kernel.Workload {
	return func(rc *kernel.RunContext) {
		for i := 0; i < rounds; i++ {
			if rc.Killed() {
				return
			}
			rc.Wakeup(chanTok)
			rc.Yield()
		}
	}
}

// consumerWorkload sleeps on chanTok rounds times, modeling a process that
// spends most of its life blocked rather than runnable.
func consumerWorkload(chanTok any, rounds int) kernel.Workload {
	return func(rc *kernel.RunContext) {
		for i := 0; i < rounds; i++ {
			if rc.Killed() {
				return
			}
			rc.Sleep(chanTok, "demo-wait")
		}
	}
}
