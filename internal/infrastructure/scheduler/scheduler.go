// Package scheduler runs periodic maintenance jobs such as sweeping
// expired profile documents out of the client store.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus represents the outcome of the last run of a job
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Job is one periodic task
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run; zero means Interval
	Timeout time.Duration
	// RunAtStart runs the job once as soon as the scheduler starts
	RunAtStart bool
	Run        func(ctx context.Context) error
}

func (j Job) validate() error {
	if j.Name == "" || j.Interval <= 0 || j.Run == nil {
		return fmt.Errorf("%w: %q", ErrInvalidJob, j.Name)
	}
	return nil
}

func (j Job) timeout() time.Duration {
	if j.Timeout > 0 {
		return j.Timeout
	}
	return j.Interval
}

// JobState is a snapshot of a job's last run
type JobState struct {
	Status      JobStatus
	Error       string
	Runs        int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Scheduler runs each job on its own ticker. Runs of one job never
// overlap: a tick that arrives while the job is running is dropped.
type Scheduler struct {
	logger *zap.Logger

	jobs   []Job
	states map[string]*JobState

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger.Named("scheduler"),
		states: make(map[string]*JobState),
	}
}

// Add registers a job. Jobs must be added before Start.
func (s *Scheduler) Add(job Job) error {
	if err := job.validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, ok := s.states[job.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateJob, job.Name)
	}
	s.jobs = append(s.jobs, job)
	s.states[job.Name] = &JobState{Status: JobStatusPending}
	return nil
}

// Start starts one loop per job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}

	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels running jobs and waits for their loops to exit, or for
// ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// State returns a copy of the named job's state
func (s *Scheduler) State(name string) (JobState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[name]
	if !ok {
		return JobState{}, false
	}
	return *st, true
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	if job.RunAtStart {
		s.runOnce(ctx, job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, job)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	s.update(job.Name, func(st *JobState) {
		st.Status = JobStatusRunning
		st.StartedAt = time.Now()
		st.Error = ""
	})

	jobCtx, cancel := context.WithTimeout(ctx, job.timeout())
	defer cancel()

	err := job.Run(jobCtx)
	s.update(job.Name, func(st *JobState) {
		st.Runs++
		st.CompletedAt = time.Now()
		if err != nil {
			st.Status = JobStatusFailed
			st.Error = err.Error()
			return
		}
		st.Status = JobStatusSuccess
	})

	if err != nil {
		s.logger.Error("Job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	s.logger.Debug("Job completed", zap.String("job", job.Name))
}

func (s *Scheduler) update(name string, fn func(st *JobState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.states[name])
}
