package verify

import "time"

type Config struct {
	Samples        int  `json:"samples"`
	RandomMessages bool `json:"random_messages"`
	Parallel       int  `json:"parallel"`
	ShowProgress   bool `json:"show_progress"`
	Timeout        int  `json:"timeout"`
	Verbose        bool `json:"verbose"`
}

// Result summarizes one property sweep: how many round trips were
// checked, how many failed, and the timing profile of the checks.
type Result struct {
	Samples         int           `json:"samples"`
	Parallel        int           `json:"parallel"`
	Checked         int           `json:"checked"`
	Failures        int           `json:"failures"`
	FailedMessages  []string      `json:"failed_messages,omitempty"`
	KeyInverseOK    bool          `json:"key_inverse_ok"`
	TotalTime       time.Duration `json:"total_time"`
	AverageTime     time.Duration `json:"average_time"`
	MinTime         time.Duration `json:"min_time"`
	MaxTime         time.Duration `json:"max_time"`
	StdDev          time.Duration `json:"std_dev"`
	ChecksPerSecond float64       `json:"checks_per_second"`
	CPUUsage        float64       `json:"cpu_usage"`
	MemoryUsed      uint64        `json:"memory_used"`
	Errors          int           `json:"errors"`
	CompletedAt     time.Time     `json:"completed_at"`
}

// OK reports whether every checked property held.
func (r Result) OK() bool {
	return r.Failures == 0 && r.Errors == 0 && r.KeyInverseOK
}
