//go:build loadtest

package testutil

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// LoadTestConfig configures a load test run against a guarded operation.
type LoadTestConfig struct {
	// RequestsPerSecond is the target request rate.
	RequestsPerSecond int

	// Duration is how long the test runs.
	Duration time.Duration

	// Workers is the number of concurrent goroutines issuing requests.
	Workers int
}

// LoadTestResult summarizes a load test run.
type LoadTestResult struct {
	// TotalRequests is the number of requests issued.
	TotalRequests int

	// SuccessCount is the number of requests that returned nil.
	SuccessCount int

	// ErrorCount is the number of requests that returned an error.
	ErrorCount int

	// Duration is the actual elapsed wall-clock time.
	Duration time.Duration

	// Throughput is requests per second over the actual duration.
	Throughput float64

	// LatencyP50, LatencyP95 and LatencyP99 are latency percentiles over
	// successful requests.
	LatencyP50 time.Duration
	LatencyP95 time.Duration
	LatencyP99 time.Duration

	// Errors contains unique error messages and their counts.
	Errors map[string]int
}

// SuccessRate returns the percentage of successful requests.
func (r LoadTestResult) SuccessRate() float64 {
	if r.TotalRequests == 0 {
		return 100.0
	}
	return float64(r.SuccessCount) / float64(r.TotalRequests) * 100.0
}

// workerResult holds results from a single worker goroutine.
type workerResult struct {
	latencies []time.Duration
	errors    []error
}

// RunLoadTest drives requestFn at the configured rate until Duration
// elapses or the context is cancelled. requestFn should exercise one
// guarded operation end to end and return nil on success.
func RunLoadTest(ctx context.Context, config LoadTestConfig, requestFn func(ctx context.Context) error) LoadTestResult {
	limiter := rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.RequestsPerSecond)

	testCtx, cancel := context.WithTimeout(ctx, config.Duration)
	defer cancel()

	var requestCount atomic.Int64
	requestBudget := int64(config.RequestsPerSecond) * int64(config.Duration.Seconds())
	done := make(chan struct{})
	workerResults := make([]workerResult, config.Workers)

	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			workerResults[workerID] = runWorker(testCtx, done, limiter, &requestCount, requestBudget, requestFn)
		}(i)
	}

	startTime := time.Now()
	<-testCtx.Done()
	close(done)
	wg.Wait()
	actualDuration := time.Since(startTime)

	var allLatencies []time.Duration
	errorCounts := make(map[string]int)
	totalErrors := 0
	for _, wr := range workerResults {
		allLatencies = append(allLatencies, wr.latencies...)
		for _, err := range wr.errors {
			errorCounts[err.Error()]++
			totalErrors++
		}
	}

	result := LoadTestResult{
		TotalRequests: len(allLatencies) + totalErrors,
		SuccessCount:  len(allLatencies),
		ErrorCount:    totalErrors,
		Duration:      actualDuration,
		Errors:        errorCounts,
	}

	if len(allLatencies) > 0 {
		result.LatencyP50 = calculatePercentile(allLatencies, 50)
		result.LatencyP95 = calculatePercentile(allLatencies, 95)
		result.LatencyP99 = calculatePercentile(allLatencies, 99)
	}
	if actualDuration > 0 {
		result.Throughput = float64(result.TotalRequests) / actualDuration.Seconds()
	}
	return result
}

// runWorker issues requests until the run ends or the request budget is
// spent, recording per-request latencies and errors.
func runWorker(ctx context.Context, done <-chan struct{}, limiter *rate.Limiter, requestCount *atomic.Int64, requestBudget int64, requestFn func(ctx context.Context) error) workerResult {
	var wr workerResult

	for {
		select {
		case <-ctx.Done():
			return wr
		case <-done:
			return wr
		default:
		}

		// Claim one unit of work; give it back if the run is complete.
		if requestCount.Add(1) > requestBudget {
			requestCount.Add(-1)
			select {
			case <-ctx.Done():
			case <-done:
			}
			return wr
		}

		if err := limiter.Wait(ctx); err != nil {
			return wr
		}

		start := time.Now()
		if err := requestFn(ctx); err != nil {
			wr.errors = append(wr.errors, err)
		} else {
			wr.latencies = append(wr.latencies, time.Since(start))
		}
	}
}

// calculatePercentile calculates the pth percentile of the given samples
// using linear interpolation. p should be in the range [0, 100].
func calculatePercentile(samples []time.Duration, p float64) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := index - float64(lower)
	return sorted[lower] + time.Duration(frac*float64(sorted[upper]-sorted[lower]))
}
