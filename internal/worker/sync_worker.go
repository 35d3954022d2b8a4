package worker

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"

	"golang.org/x/sync/errgroup"
)

// RecordReader is the read side of a record store.
type RecordReader interface {
	Get(ctx context.Context, kind core.Kind, id string) (core.Transaction, error)
	List(ctx context.Context, kind core.Kind) ([]core.Transaction, error)
}

// ResyncResult counts the rows touched by a full resync.
type ResyncResult struct {
	Upserted int
	Removed  int
}

// SyncWorker keeps the sheet mirror in line with the record store.
type SyncWorker struct {
	records RecordReader
	mirror  sheets.SyncTarget
	logger  *log.Logger
}

func NewSyncWorker(records RecordReader, mirror sheets.SyncTarget, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.Default()
	}
	return &SyncWorker{
		records: records,
		mirror:  mirror,
		logger:  logger.WithComponent(log.ComponentWorker),
	}
}

// HandleRecordEvent applies one record event to the mirror. Created and
// updated records are re-read from the store so the mirror never holds data
// older than the event.
func (w *SyncWorker) HandleRecordEvent(ctx context.Context, ev amqp.RecordEvent) error {
	w.logger.InfoContext(ctx, "Processing record event",
		log.FieldKind, ev.Kind.String(),
		log.FieldRecordID, ev.ID,
		log.FieldEventOp, string(ev.Op))

	switch ev.Op {
	case amqp.OpCreated, amqp.OpUpdated:
		tx, err := w.records.Get(ctx, ev.Kind, ev.ID)
		if errors.Is(err, core.ErrNotFound) {
			// Deleted before this event was processed.
			w.logger.InfoContext(ctx, "Record gone, removing row",
				log.FieldKind, ev.Kind.String(),
				log.FieldRecordID, ev.ID)
			return w.remove(ctx, ev.Kind, ev.ID)
		}
		if err != nil {
			return fmt.Errorf("get %s %s: %w", ev.Kind, ev.ID, err)
		}
		if err := w.mirror.Upsert(ctx, tx); err != nil {
			return fmt.Errorf("upsert %s %s: %w", ev.Kind, ev.ID, err)
		}
		return nil
	case amqp.OpDeleted:
		return w.remove(ctx, ev.Kind, ev.ID)
	default:
		return fmt.Errorf("%w: unknown op %q", amqp.ErrInvalidEvent, ev.Op)
	}
}

func (w *SyncWorker) remove(ctx context.Context, kind core.Kind, id string) error {
	if err := w.mirror.Remove(ctx, kind, id); err != nil {
		return fmt.Errorf("remove %s %s: %w", kind, id, err)
	}
	return nil
}

// Resync writes every stored record to the mirror and clears rows whose
// record no longer exists. It recovers from lost events and worker downtime.
func (w *SyncWorker) Resync(ctx context.Context) (ResyncResult, error) {
	var incomes, expenses []core.Transaction
	var refs []sheets.RowRef

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		incomes, err = w.records.List(gctx, core.KindIncome)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = w.records.List(gctx, core.KindExpense)
		return err
	})
	g.Go(func() error {
		var err error
		refs, err = w.mirror.Refs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return ResyncResult{}, fmt.Errorf("resync: %w", err)
	}

	var res ResyncResult
	live := make(map[sheets.RowRef]struct{}, len(incomes)+len(expenses))
	for _, list := range [][]core.Transaction{incomes, expenses} {
		// Oldest first so a fresh sheet reads top to bottom in creation order.
		for i := len(list) - 1; i >= 0; i-- {
			tx := list[i]
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if err := w.mirror.Upsert(ctx, tx); err != nil {
				return res, fmt.Errorf("resync upsert %s %s: %w", tx.Kind, tx.ID, err)
			}
			live[sheets.RowRef{Kind: tx.Kind, ID: tx.ID}] = struct{}{}
			res.Upserted++
		}
	}

	for _, ref := range refs {
		if _, ok := live[ref]; ok {
			continue
		}
		if err := w.remove(ctx, ref.Kind, ref.ID); err != nil {
			return res, fmt.Errorf("resync: %w", err)
		}
		res.Removed++
	}

	w.logger.InfoContext(ctx, "Resync completed",
		"upserted", res.Upserted,
		"removed", res.Removed)
	return res, nil
}
