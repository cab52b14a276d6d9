package output

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrissnell/maizsim/internal/log"
	"github.com/chrissnell/maizsim/internal/plant"
)

// Sink persists report records.
type Sink interface {
	WriteCrop(r CropRecord) error
	WriteLeaves(rs []LeafRecord) error
	Close() error
}

// Recorder stamps records with a run ID, fans them out to the sinks on
// schedule and keeps the latest crop record for the status server.
type Recorder struct {
	runID    string
	schedule Schedule
	sinks    []Sink
	logger   *zap.SugaredLogger

	mu      sync.RWMutex
	latest  CropRecord
	written int
}

// NewRecorder starts a run with a fresh ID.
func NewRecorder(schedule Schedule, logger *zap.SugaredLogger, sinks ...Sink) *Recorder {
	return &Recorder{
		runID:    uuid.New().String(),
		schedule: schedule,
		sinks:    sinks,
		logger:   log.OrNop(logger),
	}
}

// RunID identifies every record of this run.
func (r *Recorder) RunID() string { return r.runID }

// Record writes the plant's current state if the step is due. Leaf records
// are only written once the seed has germinated.
func (r *Recorder) Record(p *plant.Plant) error {
	crop := NewCropRecord(r.runID, p)

	r.mu.Lock()
	r.latest = crop
	r.mu.Unlock()

	if !r.schedule.Due(crop.Time) {
		return nil
	}

	var leaves []LeafRecord
	if p.Pheno.Germinated() {
		leaves = NewLeafRecords(r.runID, p)
	}
	for _, s := range r.sinks {
		if err := s.WriteCrop(crop); err != nil {
			return fmt.Errorf("writing crop record: %w", err)
		}
		if len(leaves) > 0 {
			if err := s.WriteLeaves(leaves); err != nil {
				return fmt.Errorf("writing leaf records: %w", err)
			}
		}
	}

	r.mu.Lock()
	r.written++
	r.mu.Unlock()
	return nil
}

// Latest returns the most recent crop record and whether there is one.
func (r *Recorder) Latest() (CropRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, !r.latest.Time.IsZero()
}

// Written is the number of steps handed to the sinks.
func (r *Recorder) Written() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.written
}

// Close closes every sink and returns the joined errors.
func (r *Recorder) Close() error {
	var errs []error
	for _, s := range r.sinks {
		if err := s.Close(); err != nil {
			r.logger.Errorw("closing output sink", "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
