// Package background runs periodic maintenance jobs next to the HTTP server.
package background

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"codista-cms/pkg/logger"
)

// Job runs every Interval until the runner is shut down. The first run
// happens one interval after Start.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

var (
	ErrRunnerStarted     = errors.New("runner already started")
	ErrDuplicateJob      = errors.New("job already registered")
	errInvalidJobSetting = errors.New("job needs a name, a runner and a positive interval")
)

var (
	metricsOnce        sync.Once
	jobRunsTotal       *prometheus.CounterVec
	jobDurationSeconds *prometheus.HistogramVec
	jobLastSuccess     *prometheus.GaugeVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codista_cms",
			Subsystem: "background",
			Name:      "job_runs_total",
			Help:      "Total background job executions",
		}, []string{"job", "status"})

		jobDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codista_cms",
			Subsystem: "background",
			Name:      "job_duration_seconds",
			Help:      "Duration of background job executions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"})

		jobLastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "codista_cms",
			Subsystem: "background",
			Name:      "job_last_success_timestamp",
			Help:      "Unix timestamp of the last successful background job execution",
		}, []string{"job"})
	})
}

type Runner struct {
	mu      sync.Mutex
	jobs    map[string]Job
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunner() *Runner {
	initMetrics()
	return &Runner{jobs: make(map[string]Job)}
}

// Add registers a job. Jobs can only be added before Start.
func (r *Runner) Add(job Job) error {
	if job.Name == "" || job.Run == nil || job.Interval <= 0 {
		return fmt.Errorf("%w: %q", errInvalidJobSetting, job.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return ErrRunnerStarted
	}
	if _, exists := r.jobs[job.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name)
	}
	r.jobs[job.Name] = job
	return nil
}

// Start launches one goroutine per job. It is a no-op when already started.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return
	}
	r.started = true

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(runCtx, job)
	}
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = runJob(ctx, job)
		}
	}
}

func runJob(ctx context.Context, job Job) (runErr error) {
	start := time.Now()
	status := "success"

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	defer func() {
		jobDurationSeconds.WithLabelValues(job.Name).Observe(time.Since(start).Seconds())
		jobRunsTotal.WithLabelValues(job.Name, status).Inc()
		if status == "success" {
			jobLastSuccess.WithLabelValues(job.Name).Set(float64(time.Now().Unix()))
		}
	}()

	defer func() {
		if rec := recover(); rec != nil {
			runErr = fmt.Errorf("panic: %v", rec)
			status = "failure"
			logger.Error(runErr, "Background job panicked", map[string]interface{}{"job": job.Name})
		}
	}()

	if err := job.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			status = "canceled"
			return err
		}
		status = "failure"
		logger.Error(err, "Background job failed", map[string]interface{}{"job": job.Name})
		return err
	}

	logger.Debug("Background job completed", map[string]interface{}{"job": job.Name})
	return nil
}

// Shutdown stops every job loop and waits for running jobs to return or for
// ctx to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
