package output

import (
	"fmt"
	"io"

	"github.com/user/rsacalc/pkg/sysinfo"
)

// TextFormatter prints the classic layout: one line per intermediate
// value, a blank line, then the verification block. Line order is
// load-bearing; scripts in the wild parse this.
type TextFormatter struct{}

func (t *TextFormatter) Format(w io.Writer, data Data) error {
	if data.Verbose && data.SystemInfo != nil {
		printSystemInfo(w, data.SystemInfo)
	}

	r := data.Result
	if r != nil {
		fmt.Fprintf(w, "n = %s\n", r.N)
		fmt.Fprintf(w, "phi(n) = %s\n", r.Totient)
		fmt.Fprintf(w, "private key d = %s\n", r.D)
		fmt.Fprintf(w, "ciphertext C = %s\n", r.Ciphertext)
		fmt.Fprintf(w, "decrypted message = %s\n", r.Decrypted)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Verification:")
		fmt.Fprintf(w, "- original message was %s\n", r.Params.M)
		fmt.Fprintf(w, "- after encryption and decryption we got %s\n", r.Decrypted)
		if r.OK {
			fmt.Fprintln(w, "- the process succeeded")
		} else {
			fmt.Fprintln(w, "- the process FAILED")
		}

		if data.ShowTrace && len(r.Steps) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Extended Euclidean trace for (%s, %s):\n", r.Params.E, r.Totient)
			for _, s := range r.Steps {
				fmt.Fprintf(w, "  step %d: q=%s r=%s x=%s y=%s\n",
					s.Iteration, s.Quotient, s.Remainder, s.X, s.Y)
			}
		}
	}

	if v := data.Verification; v != nil {
		if r != nil {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, "Round-trip verification:")
		fmt.Fprintf(w, "- checked %d of %d messages with %d workers\n", v.Checked, v.Samples, v.Parallel)
		fmt.Fprintf(w, "- failures: %d, errors: %d\n", v.Failures, v.Errors)
		for _, m := range v.FailedMessages {
			fmt.Fprintf(w, "  failed message: %s\n", m)
		}
		fmt.Fprintf(w, "- key inverse property held: %t\n", v.KeyInverseOK)
		fmt.Fprintf(w, "- total time: %s (%.2f checks/sec)\n", formatDuration(v.TotalTime), v.ChecksPerSecond)
		if v.Checked > 0 {
			fmt.Fprintf(w, "- per check: avg %s, min %s, max %s, stddev %s\n",
				formatDuration(v.AverageTime), formatDuration(v.MinTime),
				formatDuration(v.MaxTime), formatDuration(v.StdDev))
		}
		if v.OK() {
			fmt.Fprintln(w, "- all properties held")
		} else {
			fmt.Fprintln(w, "- PROPERTY VIOLATIONS FOUND")
		}
	}

	return nil
}

func printSystemInfo(w io.Writer, info *sysinfo.SystemInfo) {
	fmt.Fprintln(w, "System Information:")
	fmt.Fprintf(w, "  OS: %s/%s\n", info.OS, info.Architecture)
	fmt.Fprintf(w, "  CPU: %s (%d cores, %d threads)\n", info.CPUModel, info.CPUCores, info.CPUThreads)
	fmt.Fprintf(w, "  Memory: %.2f GB\n", float64(info.TotalMemory)/(1024*1024*1024))
	fmt.Fprintf(w, "  Go: %s (GOMAXPROCS %d, %d-bit big.Word)\n", info.GoVersion, info.MaxProcs, info.WordSize)
	fmt.Fprintln(w)
}
