package server

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/user/rsacalc/internal/rsacore"
	"github.com/user/rsacalc/internal/verify"
)

type WorkerPool struct {
	workers    int
	jobQueue   chan *VerificationJob
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	jobStore   *JobStore
	activeJobs map[string]context.CancelFunc
	mu         sync.Mutex
}

func NewWorkerPool(numWorkers int, jobStore *JobStore) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		workers:    numWorkers,
		jobQueue:   make(chan *VerificationJob, numWorkers*2),
		ctx:        ctx,
		cancel:     cancel,
		jobStore:   jobStore,
		activeJobs: make(map[string]context.CancelFunc),
	}
}

func (wp *WorkerPool) Start() {
	log.Printf("Starting worker pool with %d workers", wp.workers)

	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) Stop() {
	log.Println("Stopping worker pool...")
	wp.cancel()
	close(wp.jobQueue)
	wp.wg.Wait()
	log.Println("Worker pool stopped")
}

func (wp *WorkerPool) Submit(job *VerificationJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	default:
		return fmt.Errorf("job queue is full")
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			log.Printf("Worker %d processing verification %s", id, job.ID)
			wp.processJob(job)

		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) TerminateJob(jobID string) {
	wp.mu.Lock()
	if cancel, exists := wp.activeJobs[jobID]; exists {
		cancel()
		delete(wp.activeJobs, jobID)
	}
	wp.mu.Unlock()
}

func (wp *WorkerPool) processJob(job *VerificationJob) {
	jobCtx, jobCancel := context.WithCancel(wp.ctx)

	wp.mu.Lock()
	wp.activeJobs[job.ID] = jobCancel
	wp.mu.Unlock()

	defer func() {
		wp.mu.Lock()
		delete(wp.activeJobs, job.ID)
		wp.mu.Unlock()
		jobCancel()

		if job.Progress != nil {
			close(job.Progress)
		}
	}()

	wp.jobStore.UpdateStatus(job.ID, "running")

	params, err := rsacore.ParseParams(job.Params.P, job.Params.Q, job.Params.E, job.Params.M)
	if err != nil {
		wp.jobStore.CompleteJob(job.ID, nil, err)
		return
	}

	runner := verify.NewRunner(job.Config, params)
	result, err := runner.RunWithProgress(jobCtx, job.Progress)
	if err != nil {
		wp.jobStore.CompleteJob(job.ID, nil, err)
		log.Printf("Verification %s failed: %v", job.ID, err)
		return
	}

	wp.jobStore.CompleteJob(job.ID, &result, nil)
	log.Printf("Verification %s completed: %d checked, %d failures", job.ID, result.Checked, result.Failures)
}

func (js *JobStore) UpdateStatus(jobID, status string) {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[jobID]; exists {
		job.Status = status
		job.UpdatedAt = time.Now()
	}
}

func (js *JobStore) CompleteJob(jobID string, result *verify.Result, err error) {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, exists := js.jobs[jobID]
	if !exists {
		return
	}

	completedAt := time.Now()
	job.CompletedAt = &completedAt
	job.UpdatedAt = completedAt

	if err != nil {
		job.Status = "failed"
		job.Error = err.Error()
		return
	}
	job.Result = result
	if result.OK() {
		job.Status = "completed"
	} else {
		job.Status = "completed_with_failures"
	}
}
