package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/thorchain-labs/midgardx/pkg/db"
	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
)

// EarningsWithPools is an earnings bucket with its pool buckets embedded.
type EarningsWithPools struct {
	history.Earnings
	Pools []history.PoolEarnings `json:"pools"`
}

// Service runs planned queries against the store. Every method returns db.ErrNotFound for an empty page.
type Service struct {
	Store db.HistoryReader
}

func NewService(store db.HistoryReader) *Service {
	return &Service{Store: store}
}

func (s *Service) Depths(ctx context.Context, p Params) ([]history.Depth, error) {
	spec, err := p.Spec(history.SeriesDepth)
	if err != nil {
		return nil, err
	}
	return nonEmpty(s.Store.QueryDepths(ctx, spec))
}

// DepthPage returns the depth page with its page-local summary.
func (s *Service) DepthPage(ctx context.Context, p Params) (*DepthPage, error) {
	rows, err := s.Depths(ctx, p)
	if err != nil {
		return nil, err
	}
	return &DepthPage{Data: rows, Meta: SummarizeDepth(rows)}, nil
}

func (s *Service) RunePools(ctx context.Context, p Params) ([]history.RunePool, error) {
	spec, err := p.Spec(history.SeriesRunePool)
	if err != nil {
		return nil, err
	}
	return nonEmpty(s.Store.QueryRunePools(ctx, spec))
}

func (s *Service) Swaps(ctx context.Context, p Params) ([]history.Swap, error) {
	spec, err := p.Spec(history.SeriesSwap)
	if err != nil {
		return nil, err
	}
	return nonEmpty(s.Store.QuerySwaps(ctx, spec))
}

// EarningsSummary pages earnings buckets and embeds up to ChildLimit pool buckets under each,
// sorted like the request. A parent without children gets an empty list.
func (s *Service) EarningsSummary(ctx context.Context, p Params) ([]EarningsWithPools, error) {
	spec, err := p.Spec(history.SeriesEarnings)
	if err != nil {
		return nil, err
	}
	parents, err := nonEmpty(s.Store.QueryEarnings(ctx, spec))
	if err != nil {
		return nil, err
	}

	out := make([]EarningsWithPools, 0, len(parents))
	for _, parent := range parents {
		children, err := s.Store.PoolEarningsByParent(ctx, parent.ID, p.SortBy, p.Desc, ChildLimit)
		if err != nil {
			return nil, fmt.Errorf("pools of earnings @%d: %w", parent.StartTime, err)
		}
		if children == nil {
			children = []history.PoolEarnings{}
		}
		out = append(out, EarningsWithPools{Earnings: parent, Pools: children})
	}
	return out, nil
}

// EarningsFlat pages pool buckets and stamps each with its parent's interval.
// A child whose parent is missing fails the whole request with db.ErrNotFound.
func (s *Service) EarningsFlat(ctx context.Context, p Params) ([]history.PoolEarnings, error) {
	spec, err := p.Spec(history.SeriesPoolEarnings)
	if err != nil {
		return nil, err
	}
	children, err := nonEmpty(s.Store.QueryPoolEarnings(ctx, spec))
	if err != nil {
		return nil, err
	}

	for i := range children {
		parent, err := s.Store.GetEarnings(ctx, children[i].EarningsID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("parent of pool %s: %w", children[i].Pool, err)
			}
			return nil, err
		}
		children[i].StartTime = parent.StartTime
		children[i].EndTime = parent.EndTime
	}
	return children, nil
}

func nonEmpty[T any](rows []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found: %w", db.ErrNotFound)
	}
	return rows, nil
}
