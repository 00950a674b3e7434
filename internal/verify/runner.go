// Package verify sweeps the RSA round-trip property
// decrypt(encrypt(M)) == M over a range of messages for one parameter
// set, in parallel, and reports timing statistics for the checks.
package verify

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"runtime"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/user/rsacalc/internal/rsacore"
)

// Keep the failure report readable when a bad parameter set fails
// for nearly every message.
const maxReportedFailures = 10

type Runner struct {
	config Config
	params rsacore.Params
}

func NewRunner(config Config, params rsacore.Params) *Runner {
	if config.Parallel <= 0 {
		config.Parallel = runtime.NumCPU()
	}
	if config.Samples <= 0 {
		config.Samples = 1000
	}
	return &Runner{config: config, params: params}
}

func (r *Runner) Run() (Result, error) {
	return r.RunContext(context.Background())
}

func (r *Runner) RunContext(ctx context.Context) (Result, error) {
	return r.run(ctx, nil)
}

// RunWithProgress reports progress on ch while running; used by the
// web worker pool. ch is not closed here.
func (r *Runner) RunWithProgress(ctx context.Context, ch chan<- ProgressUpdate) (Result, error) {
	return r.run(ctx, ch)
}

func (r *Runner) run(ctx context.Context, progressCh chan<- ProgressUpdate) (Result, error) {
	n, totient := rsacore.NTotient(r.params.P, r.params.Q)
	if n.Sign() <= 0 {
		return Result{}, fmt.Errorf("verify: modulus %s is not positive", n)
	}
	d := rsacore.PrivateKey(r.params.E, totient)

	result := Result{
		Samples:     r.config.Samples,
		Parallel:    r.config.Parallel,
		CompletedAt: time.Now(),
	}

	// (e*d) mod totient == 1 whenever gcd(e, totient) == 1
	g, _, _ := rsacore.ExtendedGCD(r.params.E, totient)
	ed := new(big.Int).Mul(r.params.E, d)
	result.KeyInverseOK = g.Cmp(big.NewInt(1)) != 0 || ed.Mod(ed, totient).Cmp(big.NewInt(1)) == 0

	// Messages must stay below n
	samples := big.NewInt(int64(r.config.Samples))
	if !r.config.RandomMessages && samples.Cmp(n) > 0 {
		result.Samples = int(n.Int64())
	}

	var progress *progressbar.ProgressBar
	if r.config.ShowProgress {
		progress = progressbar.NewOptions(result.Samples,
			progressbar.OptionSetDescription(fmt.Sprintf("[roundtrip n=%s]", n)),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)
	}

	initialCPU, _ := cpu.Percent(100*time.Millisecond, false)
	initialMem, _ := mem.VirtualMemory()

	runCtx := ctx
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(r.config.Timeout)*time.Second)
		defer cancel()
	}

	var (
		mu       sync.Mutex
		timings  []time.Duration
		failures []string
		errors   int
		checked  int
	)

	startTime := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < r.config.Parallel; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			m := new(big.Int)
			for i := worker; i < result.Samples; i += r.config.Parallel {
				select {
				case <-runCtx.Done():
					return
				default:
				}

				if r.config.RandomMessages {
					v, err := rand.Int(rand.Reader, n)
					if err != nil {
						mu.Lock()
						errors++
						mu.Unlock()
						continue
					}
					m.Set(v)
				} else {
					m.SetInt64(int64(i))
				}

				iterStart := time.Now()
				ok, err := roundTrip(m, r.params.E, d, n)
				elapsed := time.Since(iterStart)

				mu.Lock()
				checked++
				if err != nil {
					errors++
				} else {
					timings = append(timings, elapsed)
					if !ok {
						if len(failures) < maxReportedFailures {
							failures = append(failures, m.String())
						}
						result.Failures++
					}
				}
				total := checked
				mu.Unlock()

				if progress != nil {
					progress.Add(1)
				}
				if progressCh != nil {
					update := ProgressUpdate{
						Current:    total,
						Total:      result.Samples,
						Percentage: float64(total) / float64(result.Samples) * 100,
						Rate:       float64(total) / time.Since(startTime).Seconds(),
					}
					select {
					case progressCh <- update:
					default:
					}
				}
			}
		}(w)
	}

	wg.Wait()

	result.TotalTime = time.Since(startTime)
	result.Checked = checked
	result.Errors = errors
	result.FailedMessages = failures

	if len(timings) > 0 {
		result.AverageTime = calculateAverage(timings)
		result.MinTime = calculateMin(timings)
		result.MaxTime = calculateMax(timings)
		result.StdDev = calculateStdDev(timings, result.AverageTime)
		result.ChecksPerSecond = float64(len(timings)) / result.TotalTime.Seconds()
	}

	finalCPU, _ := cpu.Percent(100*time.Millisecond, false)
	finalMem, _ := mem.VirtualMemory()

	if len(initialCPU) > 0 && len(finalCPU) > 0 {
		result.CPUUsage = finalCPU[0] - initialCPU[0]
	}
	if initialMem != nil && finalMem != nil && finalMem.Used > initialMem.Used {
		result.MemoryUsed = finalMem.Used - initialMem.Used
	}

	if err := runCtx.Err(); err != nil && checked < result.Samples {
		return result, fmt.Errorf("verify: stopped after %d of %d checks: %w", checked, result.Samples, err)
	}
	return result, nil
}

// ProgressUpdate is pushed over the websocket progress stream.
type ProgressUpdate struct {
	Current    int     `json:"current"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Rate       float64 `json:"rate"`
}

func roundTrip(m, e, d, n *big.Int) (bool, error) {
	c, err := rsacore.Encrypt(m, e, n)
	if err != nil {
		return false, err
	}
	got, err := rsacore.Decrypt(c, d, n)
	if err != nil {
		return false, err
	}
	return got.Cmp(m) == 0, nil
}

func calculateAverage(timings []time.Duration) time.Duration {
	if len(timings) == 0 {
		return 0
	}

	var sum time.Duration
	for _, t := range timings {
		sum += t
	}
	return sum / time.Duration(len(timings))
}

func calculateMin(timings []time.Duration) time.Duration {
	if len(timings) == 0 {
		return 0
	}

	min := timings[0]
	for _, t := range timings[1:] {
		if t < min {
			min = t
		}
	}
	return min
}

func calculateMax(timings []time.Duration) time.Duration {
	if len(timings) == 0 {
		return 0
	}

	max := timings[0]
	for _, t := range timings[1:] {
		if t > max {
			max = t
		}
	}
	return max
}

func calculateStdDev(timings []time.Duration, avg time.Duration) time.Duration {
	if len(timings) <= 1 {
		return 0
	}

	var sum float64
	avgFloat := float64(avg)

	for _, t := range timings {
		diff := float64(t) - avgFloat
		sum += diff * diff
	}

	variance := sum / float64(len(timings)-1)
	return time.Duration(math.Sqrt(variance))
}
