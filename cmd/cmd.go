package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/arctir/xvsched/hostinfo"
	"github.com/arctir/xvsched/kernel"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// SetupCLI constructs the cobra hierarchy to create the xvsched CLI.
//
// Do not use this function in other Go packages. Instead, look to import
// the libraries used in the cmd package directly, such as [kernel].
//
// [kernel]: https://github.com/arctir/xvsched/tree/main/kernel
func SetupCLI() *cobra.Command {
	rootCmd.AddCommand(runCmd)
	return rootCmd
}

// runRoot defines what should occur when `xvsched ...` is run.
func runRoot(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		cmd.Help()
		os.Exit(0)
	}
}

// runRun defines the behavior of running `xvsched run ...`: it boots a
// ProcessTable under the requested policy, spawns a handful of demo
// workloads, drives the dispatcher and ticker for the requested duration,
// and reports the resulting process table. This stands in for the
// teaching kernel's `time` utility (SPEC_FULL.md §4), since there is no
// real binary for "run" to exec.
func runRun(cmd *cobra.Command, args []string) {
	opts := newRunOpts(cmd.Flags())

	if info, err := hostinfo.NewLinuxReader(hostinfo.LinuxReaderConfig{}).Read(); err == nil {
		fmt.Println(info.Banner())
	}

	cfg := kernel.Config{Policy: opts.policyKind(), NumCPU: opts.cpus}
	t := kernel.NewProcessTable(cfg)
	if _, err := t.UserInit(nil); err != nil {
		outputErrorAndFail(fmt.Sprintf("userinit failed: %s", err))
	}

	pids := spawnDemoWorkload(t, opts.procs)

	ctx, cancel := context.WithCancel(context.Background())
	t.StartCPUs(ctx, t.Config().NumCPU)
	t.StartTicker(ctx, opts.interval)

	time.Sleep(opts.interval * time.Duration(opts.ticks))
	cancel()

	out, err := createListOutput(t.Snapshot(), opts)
	if err != nil {
		outputErrorAndFail(fmt.Sprintf("failed rendering process table: %s", err))
	}
	output(out)

	if opts.dump {
		for _, pid := range pids {
			fmt.Println(t.ProcDump(pid))
		}
	}
}

func output(out []byte) {
	fmt.Printf("%s", out)
}

func outputErrorAndFail(msg string) {
	fmt.Println(msg)
	os.Exit(1)
}

func createListOutput(rows []kernel.ProcInfo, opts runOpts) ([]byte, error) {
	switch opts.outType {
	case jsonOut:
		return createJSONListOutput(rows)
	default:
		return createTableListOutput(rows), nil
	}
}

func createJSONListOutput(rows []kernel.ProcInfo) ([]byte, error) {
	return json.Marshal(rows)
}

func createTableListOutput(rows []kernel.ProcInfo) []byte {
	var buf bytes.Buffer
	buf.WriteString(kernel.ProcInfoTable(rows))
	return buf.Bytes()
}

func newRunOpts(fs *pflag.FlagSet) runOpts {
	policy, _ := fs.GetString(policyFlag)
	cpus, _ := fs.GetInt(cpusFlag)
	procs, _ := fs.GetInt(procsFlag)
	ticks, _ := fs.GetInt(ticksFlag)
	interval, _ := fs.GetDuration(intervalFlag)
	dump, _ := fs.GetBool(dumpFlag)

	return runOpts{
		outType:  resolveOutputType(fs),
		policy:   policy,
		cpus:     cpus,
		procs:    procs,
		ticks:    ticks,
		interval: interval,
		dump:     dump,
	}
}

func resolveOutputType(fs *pflag.FlagSet) outputType {
	of, err := fs.GetString(outputFlag)
	if err != nil {
		return tableOut
	}
	switch of {
	case "json":
		return jsonOut
	case "table":
		return tableOut
	}
	return tableOut
}

// policyKind maps the --policy flag's string value to a kernel.PolicyKind,
// defaulting to round-robin for anything unrecognized.
func (o runOpts) policyKind() kernel.PolicyKind {
	switch o.policy {
	case "fcfs":
		return kernel.PolicyFCFS
	case "pbs":
		return kernel.PolicyPBS
	case "mlfq":
		return kernel.PolicyMLFQ
	default:
		return kernel.PolicyRR
	}
}
