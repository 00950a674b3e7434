// Package sysinfo snapshots the host for verbose output and the web
// API. WordSize is the big.Word width in bits, which is what bounds
// the limb size of every big.Int the calculator touches.
package sysinfo

import (
	"math/bits"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

type SystemInfo struct {
	OS           string  `json:"os"`
	Architecture string  `json:"architecture"`
	CPUModel     string  `json:"cpu_model"`
	CPUCores     int     `json:"cpu_cores"`
	CPUThreads   int     `json:"cpu_threads"`
	TotalMemory  uint64  `json:"total_memory"`
	GoVersion    string  `json:"go_version"`
	MaxProcs     int     `json:"gomaxprocs"`
	WordSize     int     `json:"word_size_bits"`
	Hostname     string  `json:"hostname"`
	Platform     string  `json:"platform"`
	LoadAverage  float64 `json:"load_average"`
}

// Collect never fails outright; fields gopsutil cannot fill on the
// current platform are left at their zero values.
func Collect() (*SystemInfo, error) {
	info := &SystemInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		GoVersion:    runtime.Version(),
		MaxProcs:     runtime.GOMAXPROCS(0),
		WordSize:     bits.UintSize,
		CPUCores:     runtime.NumCPU(),
	}

	if cpuInfo, err := cpu.Info(); err == nil && len(cpuInfo) > 0 {
		info.CPUModel = strings.TrimSpace(cpuInfo[0].ModelName)
	}
	if threads, err := cpu.Counts(true); err == nil {
		info.CPUThreads = threads
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = memInfo.Total
	}
	if hostInfo, err := host.Info(); err == nil {
		info.Hostname = hostInfo.Hostname
		info.Platform = hostInfo.Platform
	}
	if loadAvg, err := load.Avg(); err == nil {
		info.LoadAverage = loadAvg.Load1
	}

	return info, nil
}
