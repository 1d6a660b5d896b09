// Package hostinfo reports the host-level details xvsched uses to size its
// dispatcher and to print a boot banner: the number of logical CPUs to
// simulate, and the OS/kernel/architecture the binary is actually running
// on. It is adapted from arctir/proctor's host package, narrowed to the
// figures a simulated scheduler core needs rather than a full host
// inventory.
package hostinfo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sys/unix"
)

const (
	DefaultProcRoot  = "/proc"
	OSKernelFilePath = "sys/kernel/osrelease"
	CPUInfoFilePath  = "cpuinfo"
	UnknownKey       = "UNKNOWN"
)

// Info is the snapshot hostinfo reports: how many logical CPUs the
// dispatcher should simulate by default, plus a human-readable banner for
// "xvsched run".
type Info struct {
	NumCPU       int
	Kernel       string
	Architecture string
}

// Reader retrieves host details. LinuxReader is its only implementation,
// the same one-interface-one-implementation shape as proctor's HostReader.
type Reader interface {
	Read() (Info, error)
}

// LinuxReader is the Linux-specific Reader, reading /proc for the kernel
// banner and falling back to runtime.NumCPU() for the logical CPU count
// (the simulated dispatcher's degree of parallelism is a Go-level
// decision, not a fact /proc/cpuinfo needs to supply, but the teacher's
// /proc/cpuinfo parser is kept here as an optional override via
// CPUCountFromProc).
type LinuxReader struct {
	procDir string
}

type LinuxReaderConfig struct {
	ProcDirPath string
}

func NewLinuxReader(conf LinuxReaderConfig) LinuxReader {
	if conf.ProcDirPath == "" {
		conf.ProcDirPath = DefaultProcRoot
	}
	return LinuxReader{procDir: conf.ProcDirPath}
}

// Read returns the default Info: runtime.NumCPU() logical CPUs, plus a
// kernel/arch banner read from /proc and uname(2).
func (r LinuxReader) Read() (Info, error) {
	kernelVersion, err := r.kernelVersion()
	if err != nil {
		kernelVersion = UnknownKey
	}
	return Info{
		NumCPU:       runtime.NumCPU(),
		Kernel:       kernelVersion,
		Architecture: arch(),
	}, nil
}

func (r LinuxReader) kernelVersion() (string, error) {
	path := filepath.Join(r.procDir, OSKernelFilePath)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed getting kernel version from %s: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// CPUCountFromProc counts "processor" lines in /proc/cpuinfo, the same way
// proctor's LinuxReader.getCPUInfo does. It is an optional override for
// callers that want the host's real logical CPU count rather than the
// runtime.NumCPU() default Read reports.
func (r LinuxReader) CPUCountFromProc() (int, error) {
	path := filepath.Join(r.procDir, CPUInfoFilePath)
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed opening %s: %w", path, err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		kv := strings.SplitN(scanner.Text(), ":", 2)
		if len(kv) != 2 {
			continue
		}
		if strings.TrimSpace(kv[0]) == "processor" {
			count++
		}
	}
	return count, nil
}

// arch calls the equivalent of uname -m to get the architecture (e.g.
// x86_64 or aarch64).
func arch() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return UnknownKey
	}
	return strings.TrimRight(string(uts.Machine[:]), "\x00")
}

// Banner renders Info the way "xvsched run" prints its startup line.
func (i Info) Banner() string {
	return fmt.Sprintf("xvsched: %d logical CPU(s), kernel %s, arch %s", i.NumCPU, i.Kernel, i.Architecture)
}
