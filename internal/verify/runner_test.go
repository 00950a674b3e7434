package verify

import (
	"testing"
	"time"

	"github.com/user/rsacalc/internal/rsacore"
)

func TestRunnerFixedExample(t *testing.T) {
	config := Config{
		Samples:      500,
		Parallel:     2,
		ShowProgress: false,
		Timeout:      30,
	}

	runner := NewRunner(config, rsacore.DefaultParams())
	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Runner failed: %v", err)
	}

	if result.Checked != 500 {
		t.Errorf("Expected 500 checks, got %d", result.Checked)
	}
	if result.Failures != 0 {
		t.Errorf("Expected 0 failures, got %d (%v)", result.Failures, result.FailedMessages)
	}
	if result.Errors != 0 {
		t.Errorf("Expected 0 errors, got %d", result.Errors)
	}
	if !result.KeyInverseOK {
		t.Error("Expected (e*d) mod totient == 1 for the fixed example")
	}
	if !result.OK() {
		t.Error("Expected result.OK() for the fixed example")
	}
}

func TestRunnerCapsSamplesAtModulus(t *testing.T) {
	// n = 33, so only 33 distinct messages exist
	params, err := rsacore.ParseParams("3", "11", "7", "2")
	if err != nil {
		t.Fatalf("ParseParams failed: %v", err)
	}

	runner := NewRunner(Config{Samples: 1000, Parallel: 1}, params)
	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Runner failed: %v", err)
	}

	if result.Samples != 33 {
		t.Errorf("Expected samples capped at 33, got %d", result.Samples)
	}
	if result.Failures != 0 {
		t.Errorf("Expected 0 failures, got %d", result.Failures)
	}
}

func TestRunnerDetectsBadExponent(t *testing.T) {
	// gcd(2, 3120) = 2, so no inverse exists and round trips must fail
	params, err := rsacore.ParseParams("61", "53", "2", "65")
	if err != nil {
		t.Fatalf("ParseParams failed: %v", err)
	}

	runner := NewRunner(Config{Samples: 50, Parallel: 1}, params)
	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Runner failed: %v", err)
	}

	if result.Failures == 0 {
		t.Error("Expected round-trip failures for a non-coprime exponent")
	}
	if result.OK() {
		t.Error("Expected result.OK() to be false")
	}
	if len(result.FailedMessages) == 0 {
		t.Error("Expected failed messages to be reported")
	}
	if len(result.FailedMessages) > maxReportedFailures {
		t.Errorf("Expected at most %d reported failures, got %d", maxReportedFailures, len(result.FailedMessages))
	}
}

func TestRunnerRandomMessages(t *testing.T) {
	config := Config{
		Samples:        50,
		RandomMessages: true,
		Parallel:       2,
	}

	runner := NewRunner(config, rsacore.DefaultParams())
	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Runner failed: %v", err)
	}

	if result.Checked != 50 {
		t.Errorf("Expected 50 checks, got %d", result.Checked)
	}
	if result.Failures != 0 {
		t.Errorf("Expected 0 failures, got %d", result.Failures)
	}
}

func TestCalculateStatistics(t *testing.T) {
	timings := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		150 * time.Millisecond,
		180 * time.Millisecond,
		170 * time.Millisecond,
	}

	avg := calculateAverage(timings)
	expectedAvg := 160 * time.Millisecond
	if avg != expectedAvg {
		t.Errorf("Expected average %v, got %v", expectedAvg, avg)
	}

	min := calculateMin(timings)
	if min != 100*time.Millisecond {
		t.Errorf("Expected min %v, got %v", 100*time.Millisecond, min)
	}

	max := calculateMax(timings)
	if max != 200*time.Millisecond {
		t.Errorf("Expected max %v, got %v", 200*time.Millisecond, max)
	}

	stdDev := calculateStdDev(timings, avg)
	// Allow for some floating point error
	if stdDev < 35*time.Millisecond || stdDev > 40*time.Millisecond {
		t.Errorf("Expected stdDev around 37ms, got %v", stdDev)
	}
}
