package midgard

import (
	"context"
	"fmt"
	"net/url"
)

// Client fetches one page of each history series starting at from.
type Client interface {
	DepthHistory(ctx context.Context, pool string, from int64, count int) (*Page[DepthInterval], error)
	RunePoolHistory(ctx context.Context, from int64, count int) (*Page[RunePoolInterval], error)
	SwapHistory(ctx context.Context, pool string, from int64, count int) (*Page[SwapInterval], error)
	EarningsHistory(ctx context.Context, from int64, count int) (*Page[EarningsInterval], error)
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) DepthHistory(ctx context.Context, pool string, from int64, count int) (*Page[DepthInterval], error) {
	if pool == "" {
		return nil, fmt.Errorf("depth history: pool is required")
	}
	return fetchPage[DepthInterval](ctx, c, depthHistoryPath+url.PathEscape(pool)+historyQuery(from, count, ""))
}

func (c *HTTPClient) RunePoolHistory(ctx context.Context, from int64, count int) (*Page[RunePoolInterval], error) {
	return fetchPage[RunePoolInterval](ctx, c, runePoolHistoryPath+historyQuery(from, count, ""))
}

func (c *HTTPClient) SwapHistory(ctx context.Context, pool string, from int64, count int) (*Page[SwapInterval], error) {
	return fetchPage[SwapInterval](ctx, c, swapHistoryPath+historyQuery(from, count, pool))
}

func (c *HTTPClient) EarningsHistory(ctx context.Context, from int64, count int) (*Page[EarningsInterval], error) {
	return fetchPage[EarningsInterval](ctx, c, earningsHistoryPath+historyQuery(from, count, ""))
}

func fetchPage[T any](ctx context.Context, c *HTTPClient, path string) (*Page[T], error) {
	var page Page[T]
	if err := c.getJSON(ctx, path, &page); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	return &page, nil
}
