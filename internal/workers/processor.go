package workers

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"reframe/internal/pipeline"
	"reframe/internal/store"
)

// Processor drains the job queue. Each clip is self-contained, so multiple
// workers run the shared pipeline concurrently without coordination.
type Processor struct {
	store  *store.Store
	pipe   *pipeline.Pipeline
	tmpDir string
	jobs   chan string
}

// NewProcessor creates an idle processor.
func NewProcessor(st *store.Store, pipe *pipeline.Pipeline, tmpDir string) *Processor {
	return &Processor{
		store:  st,
		pipe:   pipe,
		tmpDir: tmpDir,
		jobs:   make(chan string, 256),
	}
}

// Start requeues jobs left over from a previous run and launches n workers.
func (p *Processor) Start(n int) error {
	pending, err := p.store.Queued()
	if err != nil {
		return fmt.Errorf("failed to requeue jobs: %w", err)
	}

	// Workers first, so feeding more pending jobs than the channel holds
	// cannot stall the startup.
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		go p.run()
	}

	for _, id := range pending {
		p.jobs <- id
	}
	if len(pending) > 0 {
		log.Printf("[WORKER] requeued %d pending jobs", len(pending))
	}
	return nil
}

// Enqueue persists a new job and hands it to the workers.
func (p *Processor) Enqueue(url, clipID string) (store.Job, error) {
	if clipID == "" {
		clipID = uuid.NewString()
	}
	job := store.Job{
		ID:     uuid.NewString(),
		URL:    url,
		ClipID: clipID,
		Status: store.StatusQueued,
	}
	if err := p.store.Create(job); err != nil {
		return store.Job{}, err
	}
	// The row is already persisted; if the channel is full the job waits
	// for the Queued() requeue on the next start instead of blocking the
	// caller.
	select {
	case p.jobs <- job.ID:
	default:
		log.Printf("[WORKER] queue full, job %s deferred to restart requeue", job.ID)
	}
	return job, nil
}

func (p *Processor) run() {
	for id := range p.jobs {
		p.process(id)
	}
}

func (p *Processor) process(id string) {
	job, err := p.store.Get(id)
	if err != nil {
		log.Printf("[WORKER] job %s vanished: %v", id, err)
		return
	}

	log.Printf("[WORKER] processing job %s clip=%s", job.ID, job.ClipID)
	if err := p.store.SetRunning(job.ID); err != nil {
		log.Printf("[WORKER] failed to mark job %s running: %v", job.ID, err)
		return
	}

	_, coordsPath, err := p.pipe.AnalyzeClip(job.URL, job.ClipID, p.tmpDir)
	if err != nil {
		log.Printf("[WORKER] job %s failed: %v", job.ID, err)
		if serr := p.store.SetFailed(job.ID, err); serr != nil {
			log.Printf("[WORKER] failed to record failure for %s: %v", job.ID, serr)
		}
		return
	}

	if err := p.store.SetCompleted(job.ID, coordsPath); err != nil {
		log.Printf("[WORKER] failed to complete job %s: %v", job.ID, err)
		return
	}
	log.Printf("[WORKER] job %s done: %s", job.ID, coordsPath)
}
