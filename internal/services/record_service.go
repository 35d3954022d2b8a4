package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

//go:generate mockgen -source=record_service.go -destination=mocks/mock_publisher.go -package=mocks

// Publisher delivers record events. *amqp.Client satisfies it.
type Publisher interface {
	PublishRecordEvent(ctx context.Context, ev amqp.RecordEvent) error
}

// StoreError reports a store failure other than a missing record.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// RecordService validates, persists and announces changes for one kind.
type RecordService struct {
	kind      core.Kind
	store     storage.Store
	publisher Publisher
	logger    *log.StructuredLogger
}

// NewRecordService wires a service for kind. A nil publisher disables events.
func NewRecordService(kind core.Kind, store storage.Store, publisher Publisher, logger *log.Logger) *RecordService {
	if logger == nil {
		logger = log.Default()
	}
	return &RecordService{
		kind:      kind,
		store:     store,
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger.WithComponent(log.ComponentRecords)),
	}
}

func (s *RecordService) Kind() core.Kind {
	return s.kind
}

// Create validates p and stores a new record.
func (s *RecordService) Create(ctx context.Context, p core.Payload) (core.Transaction, error) {
	if err := p.Validate(s.kind); err != nil {
		return core.Transaction{}, err
	}
	tx, err := s.store.Create(ctx, s.kind, p)
	if err != nil {
		return core.Transaction{}, s.classify(log.OpCreate, err)
	}

	s.logger.LogRecordMutation(ctx, log.OpCreate, string(s.kind), tx.ID, tx.Amount.String(), tx.Category)
	s.publish(ctx, tx.ID, amqp.OpCreated)
	return tx, nil
}

// List returns every record of the kind, newest first.
func (s *RecordService) List(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.List(ctx, s.kind)
	if err != nil {
		return nil, s.classify(log.OpList, err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

func (s *RecordService) Get(ctx context.Context, id string) (core.Transaction, error) {
	tx, err := s.store.Get(ctx, s.kind, id)
	if err != nil {
		return core.Transaction{}, s.classify(log.OpRead, err)
	}
	return tx, nil
}

// Update validates p and replaces every mutable field of the record.
func (s *RecordService) Update(ctx context.Context, id string, p core.Payload) (core.Transaction, error) {
	if err := p.Validate(s.kind); err != nil {
		return core.Transaction{}, err
	}
	tx, err := s.store.Update(ctx, s.kind, id, p)
	if err != nil {
		return core.Transaction{}, s.classify(log.OpUpdate, err)
	}

	s.logger.LogRecordMutation(ctx, log.OpUpdate, string(s.kind), tx.ID, tx.Amount.String(), tx.Category)
	s.publish(ctx, tx.ID, amqp.OpUpdated)
	return tx, nil
}

func (s *RecordService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.kind, id); err != nil {
		return s.classify(log.OpDelete, err)
	}

	s.logger.LogRecordMutation(ctx, log.OpDelete, string(s.kind), id, "", "")
	s.publish(ctx, id, amqp.OpDeleted)
	return nil
}

// classify passes not-found errors through and wraps everything else.
func (s *RecordService) classify(op string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return err
	}
	return &StoreError{Op: op + " " + string(s.kind), Err: err}
}

// publish never fails the caller; the record is already stored.
func (s *RecordService) publish(ctx context.Context, id string, op amqp.EventOp) {
	if s.publisher == nil {
		s.logger.Logger().WarnContext(ctx, "AMQP client not available, skipping record event",
			log.FieldKind, s.kind, log.FieldRecordID, id, log.FieldEventOp, op)
		return
	}
	if err := s.publisher.PublishRecordEvent(ctx, amqp.NewRecordEvent(s.kind, id, op)); err != nil {
		s.logger.LogError(ctx, "Failed to publish record event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithRecord(string(s.kind), id))
	}
}
