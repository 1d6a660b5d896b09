package cmd

import "time"

type outputType int

const (
	tableOut outputType = iota
	jsonOut
)

const (
	outputFlag   = "output"
	policyFlag   = "policy"
	cpusFlag     = "cpus"
	procsFlag    = "procs"
	ticksFlag    = "ticks"
	intervalFlag = "tick-interval"
	dumpFlag     = "dump"
)

type runOpts struct {
	outType  outputType
	policy   string
	cpus     int
	procs    int
	ticks    int
	interval time.Duration
	dump     bool
}

// CLI flags to initialize.
func init() {
	runCmd.Flags().StringP(outputFlag, "o", "table", "Output type for the final process table [table (default), json].")
	runCmd.Flags().String(policyFlag, "rr", "Scheduling policy to run [rr, fcfs, pbs, mlfq].")
	runCmd.Flags().Int(cpusFlag, 0, "Number of simulated CPUs. 0 uses the host's logical CPU count.")
	runCmd.Flags().Int(procsFlag, 4, "Number of demo workload processes to spawn in addition to init.")
	runCmd.Flags().Int(ticksFlag, 200, "Number of timer ticks to run the scheduler for.")
	runCmd.Flags().Duration(intervalFlag, 5*time.Millisecond, "Wall-clock duration of one simulated tick.")
	runCmd.Flags().Bool(dumpFlag, false, "Print a ProcDump for every demo process after the run.")
}
