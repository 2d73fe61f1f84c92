package jobs

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/DineVoice/dinevoice-backend/internal/services"
	"github.com/DineVoice/dinevoice-backend/internal/storage"
)

// CleanupJob handles the periodic housekeeping: sweeping idle call
// sessions, purging expired idempotency keys and failing call records
// whose completion webhook never arrived.
type CleanupJob struct {
	store     storage.Store
	sessions  *services.MemorySessionStore
	isRunning atomic.Bool

	sweepInterval time.Duration
	staleCallAge  time.Duration
}

// NewCleanupJob creates a new cleanup job scheduler. sessions may be nil
// when Redis holds the sessions and expires them itself.
func NewCleanupJob(store storage.Store, sessions *services.MemorySessionStore) *CleanupJob {
	return &CleanupJob{
		store:         store,
		sessions:      sessions,
		sweepInterval: 10 * time.Minute,
		staleCallAge:  2 * time.Hour,
	}
}

// Start begins all scheduled cleanup jobs
func (j *CleanupJob) Start() {
	if !j.isRunning.CompareAndSwap(false, true) {
		log.Println("Cleanup jobs already running")
		return
	}

	log.Println("Starting scheduled cleanup jobs...")

	go j.scheduleSweep()

	log.Println("All cleanup jobs started successfully")
}

// Stop halts all scheduled jobs
func (j *CleanupJob) Stop() {
	j.isRunning.Store(false)
	log.Println("Stopping scheduled cleanup jobs...")
}

func (j *CleanupJob) scheduleSweep() {
	for j.isRunning.Load() {
		time.Sleep(j.sweepInterval)

		if !j.isRunning.Load() {
			break
		}

		j.RunOnce(context.Background())
	}
}

// RunOnce performs a single housekeeping pass.
func (j *CleanupJob) RunOnce(ctx context.Context) {
	if j.sessions != nil {
		if removed := j.sessions.SweepExpired(); removed > 0 {
			log.Printf("🧹 Swept %d idle call sessions", removed)
		}
	}

	if err := j.store.DeleteExpiredIdempotencyKeys(); err != nil {
		log.Printf("⚠️  Failed to purge idempotency keys: %v", err)
	}

	marked, err := j.store.MarkStaleCallRecords(j.staleCallAge)
	if err != nil {
		log.Printf("⚠️  Failed to mark stale call records: %v", err)
	} else if marked > 0 {
		log.Printf("🧹 Marked %d abandoned calls as failed", marked)
	}
}
