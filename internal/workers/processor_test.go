package workers_test

import (
	"path/filepath"
	"testing"

	"reframe/internal/store"
	"reframe/internal/workers"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnqueuePersistsJob(t *testing.T) {
	s := testStore(t)
	p := workers.NewProcessor(s, nil, t.TempDir())

	job, err := p.Enqueue("http://example.com/v.mp4", "")
	if err != nil {
		t.Fatalf("Enqueue returned error: %v", err)
	}
	if job.ID == "" || job.ClipID == "" {
		t.Fatalf("ids must be generated: %+v", job)
	}
	if job.Status != store.StatusQueued {
		t.Fatalf("status: got %q want queued", job.Status)
	}

	got, err := s.Get(job.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.URL != "http://example.com/v.mp4" {
		t.Fatalf("url: got %q", got.URL)
	}
}

func TestEnqueueDoesNotBlockWhenQueueIsFull(t *testing.T) {
	// No workers are started, so the channel fills up; every enqueue past
	// its capacity must still persist the row and return.
	s := testStore(t)
	p := workers.NewProcessor(s, nil, t.TempDir())

	const jobs = 300
	for i := 0; i < jobs; i++ {
		if _, err := p.Enqueue("http://example.com/v.mp4", ""); err != nil {
			t.Fatalf("Enqueue %d returned error: %v", i, err)
		}
	}

	ids, err := s.Queued()
	if err != nil {
		t.Fatalf("Queued returned error: %v", err)
	}
	if len(ids) != jobs {
		t.Fatalf("queued rows: got %d want %d", len(ids), jobs)
	}
}
