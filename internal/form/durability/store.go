// Package durability keeps an append-only local record of every accepted
// submission, independent of what happened on the network.
package durability

import (
	"context"
	"encoding/json"
	"sync"

	apperrors "registration-pipeline/internal/common/errors"
	"registration-pipeline/internal/common/kvstore"
	"registration-pipeline/internal/common/logger"
	"registration-pipeline/internal/common/metrics"
	"registration-pipeline/internal/common/validation"
	"registration-pipeline/internal/models"
)

var sequenceSchema = validation.MustCompile(validation.SubmissionSequenceSchema)

// Store appends SubmissionRecords to one key of a kvstore.Store.
//
// An absent or malformed stored value is treated as an empty sequence. When
// the medium cannot be read or rejects a write, the record is held in memory
// and written ahead of the next append, so nothing appended through this
// instance is dropped. Neither Append nor LoadAll ever fails the caller.
type Store struct {
	mu      sync.Mutex
	kv      kvstore.Store
	config  *Config
	logger  logger.Logger
	errs    *apperrors.ErrorHandler
	pending []models.SubmissionRecord
}

func NewStore(kv kvstore.Store, config *Config, log logger.Logger) *Store {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Key == "" {
		config.Key = DefaultKey
	}
	l := log.WithFields(map[string]interface{}{"component": "durability", "key": config.Key})
	return &Store{
		kv:     kv,
		config: config,
		logger: l,
		errs:   apperrors.NewErrorHandler(l),
	}
}

// Append adds record to the end of the stored sequence.
func (s *Store) Append(ctx context.Context, record models.SubmissionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ctx)
	if err != nil {
		s.hold(record)
		return
	}

	next := make([]models.SubmissionRecord, 0, len(current)+len(s.pending)+1)
	next = append(next, current...)
	next = append(next, s.pending...)
	next = append(next, record)

	if err := s.write(ctx, next); err != nil {
		s.hold(record)
		return
	}

	if len(s.pending) > 0 {
		s.logger.Info("pending records flushed", map[string]interface{}{
			"count": len(s.pending),
		})
	}
	s.pending = nil
	metrics.StorePending.Set(0)

	s.logger.Debug("submission stored", map[string]interface{}{
		"recordId": record.ID,
		"total":    len(next),
	})
}

// LoadAll returns every record in append order, including held ones.
func (s *Store) LoadAll(ctx context.Context) []models.SubmissionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ctx)
	if err != nil {
		current = nil
	}
	out := make([]models.SubmissionRecord, 0, len(current)+len(s.pending))
	out = append(out, current...)
	out = append(out, s.pending...)
	return out
}

// Pending reports how many records are waiting for a successful write.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// read returns the stored sequence. Absent and malformed values are an empty
// sequence; only a failing medium returns an error.
func (s *Store) read(ctx context.Context) ([]models.SubmissionRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, found, err := s.kv.Get(ctx, s.config.Key)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("read").Inc()
		return nil, s.errs.Swallow("store.read", apperrors.NewStorageReadError(s.config.Key, err))
	}
	if !found || raw == "" {
		return nil, nil
	}

	if err := sequenceSchema.ValidateBytes([]byte(raw)); err != nil {
		metrics.StoreFailures.WithLabelValues("decode").Inc()
		s.errs.Swallow("store.decode", apperrors.NewStorageReadError(s.config.Key, err))
		return nil, nil
	}

	var records []models.SubmissionRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		metrics.StoreFailures.WithLabelValues("decode").Inc()
		s.errs.Swallow("store.decode", apperrors.NewStorageReadError(s.config.Key, err))
		return nil, nil
	}
	return records, nil
}

func (s *Store) write(ctx context.Context, records []models.SubmissionRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		metrics.StoreFailures.WithLabelValues("write").Inc()
		return s.errs.Swallow("store.encode", apperrors.NewStorageWriteError(s.config.Key, err))
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.kv.Set(ctx, s.config.Key, string(data)); err != nil {
		metrics.StoreFailures.WithLabelValues("write").Inc()
		return s.errs.Swallow("store.write", apperrors.NewStorageWriteError(s.config.Key, err))
	}
	return nil
}

func (s *Store) hold(record models.SubmissionRecord) {
	s.pending = append(s.pending, record)
	metrics.StorePending.Set(float64(len(s.pending)))
	s.logger.Warn("submission held in memory", map[string]interface{}{
		"recordId": record.ID,
		"pending":  len(s.pending),
	})
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}
