package controller

import (
	"context"
	"net/http"

	historyquery "github.com/thorchain-labs/midgardx/pkg/query"
)

// HandleDepthHistory serves depth buckets, or {data, meta} with a page summary when summary=true.
func (c *Controller) HandleDepthHistory(w http.ResponseWriter, r *http.Request) {
	serve(c, w, r, func(ctx context.Context, p historyquery.Params) (any, error) {
		if p.Summary {
			return c.App.Query.DepthPage(ctx, p)
		}
		return c.App.Query.Depths(ctx, p)
	})
}

func (c *Controller) HandleRunePoolHistory(w http.ResponseWriter, r *http.Request) {
	serve(c, w, r, func(ctx context.Context, p historyquery.Params) (any, error) {
		return c.App.Query.RunePools(ctx, p)
	})
}

func (c *Controller) HandleSwapsHistory(w http.ResponseWriter, r *http.Request) {
	serve(c, w, r, func(ctx context.Context, p historyquery.Params) (any, error) {
		return c.App.Query.Swaps(ctx, p)
	})
}

// HandleEarningsHistory serves earnings with embedded pools when summary=true,
// otherwise pool buckets stamped with their parent's interval.
func (c *Controller) HandleEarningsHistory(w http.ResponseWriter, r *http.Request) {
	serve(c, w, r, func(ctx context.Context, p historyquery.Params) (any, error) {
		if p.Summary {
			return c.App.Query.EarningsSummary(ctx, p)
		}
		return c.App.Query.EarningsFlat(ctx, p)
	})
}

// serve parses the request, runs fn under the query timeout and writes the result or the mapped error.
func serve(c *Controller, w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, p historyquery.Params) (any, error)) {
	p, err := historyquery.ParseParams(r.URL.Query())
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	if c.App.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.App.QueryTimeout)
		defer cancel()
	}

	out, err := fn(ctx, p)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
