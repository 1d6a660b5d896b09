package hostinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCPUCountFromProc(t *testing.T) {
	dir := t.TempDir()
	cpuinfo := "processor\t: 0\nmodel name\t: test\n\nprocessor\t: 1\nmodel name\t: test\n\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, CPUInfoFilePath), []byte(cpuinfo), 0o644))

	r := NewLinuxReader(LinuxReaderConfig{ProcDirPath: dir})
	count, err := r.CPUCountFromProc()
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestCPUCountFromProcMissingFile(t *testing.T) {
	r := NewLinuxReader(LinuxReaderConfig{ProcDirPath: t.TempDir()})
	_, err := r.CPUCountFromProc()
	require.Error(t, err)
}

func TestReadFallsBackToRuntimeNumCPU(t *testing.T) {
	r := NewLinuxReader(LinuxReaderConfig{ProcDirPath: t.TempDir()})
	info, err := r.Read()
	require.NoError(t, err)
	require.Greater(t, info.NumCPU, 0)
	require.NotEmpty(t, info.Banner())
}
