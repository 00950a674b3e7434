package sysinfo

import (
	"math/bits"
	"runtime"
	"testing"
)

func TestCollect(t *testing.T) {
	info, err := Collect()
	if err != nil {
		t.Fatalf("Failed to collect system info: %v", err)
	}

	if info.OS != runtime.GOOS {
		t.Errorf("OS mismatch: expected %s, got %s", runtime.GOOS, info.OS)
	}
	if info.Architecture != runtime.GOARCH {
		t.Errorf("Architecture mismatch: expected %s, got %s", runtime.GOARCH, info.Architecture)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("Go version mismatch: expected %s, got %s", runtime.Version(), info.GoVersion)
	}
	if info.CPUCores != runtime.NumCPU() {
		t.Errorf("CPU cores mismatch: expected %d, got %d", runtime.NumCPU(), info.CPUCores)
	}
	if info.MaxProcs == 0 {
		t.Error("MaxProcs should not be 0")
	}
	if info.WordSize != bits.UintSize {
		t.Errorf("WordSize mismatch: expected %d, got %d", bits.UintSize, info.WordSize)
	}
	if info.LoadAverage < 0 {
		t.Error("LoadAverage should not be negative")
	}
}
