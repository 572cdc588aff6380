package backfill

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/thorchain-labs/midgardx/pkg/db"
	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
)

// Writer persists mapped pages. Every method returns the number of buckets written;
// a failure leaves earlier writes of the same call in place.
type Writer struct {
	Store db.HistoryWriter
}

func (w *Writer) WriteDepths(ctx context.Context, rows []*history.Depth) (int, error) {
	if err := w.Store.InsertDepths(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (w *Writer) WriteRunePools(ctx context.Context, rows []*history.RunePool) (int, error) {
	if err := w.Store.InsertRunePools(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (w *Writer) WriteSwaps(ctx context.Context, rows []*history.Swap) (int, error) {
	if err := w.Store.InsertSwaps(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// WriteEarnings inserts each parent on its own to obtain its identifier, then links and inserts its children.
// The count covers parents and children.
func (w *Writer) WriteEarnings(ctx context.Context, intervals []*history.EarningsInterval) (int, error) {
	written := 0
	for _, in := range intervals {
		id, err := w.Store.InsertEarnings(ctx, in.Earnings)
		if err != nil {
			return written, fmt.Errorf("insert earnings @%d: %w", in.Earnings.StartTime, err)
		}
		written++

		if err := w.WritePoolEarnings(ctx, id, in.Pools); err != nil {
			return written, err
		}
		written += len(in.Pools)
	}
	return written, nil
}

// WritePoolEarnings sets every child's linkage to parentID and inserts them.
func (w *Writer) WritePoolEarnings(ctx context.Context, parentID uuid.UUID, children []*history.PoolEarnings) error {
	if parentID == uuid.Nil {
		return ErrMissingParent
	}
	if len(children) == 0 {
		return nil
	}
	for _, child := range children {
		child.EarningsID = parentID
	}
	if err := w.Store.InsertPoolEarnings(ctx, children); err != nil {
		return fmt.Errorf("insert pool earnings of %s: %w", parentID, err)
	}
	return nil
}
