package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/thorchain-labs/midgardx/pkg/db/models/history"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	// ChildLimit caps the pool buckets embedded under each earnings bucket in summary mode.
	ChildLimit = 10
)

var (
	ErrInvalidParam = errors.New("invalid query parameter")
	ErrInvalidRange = errors.New("from must be less than to")
)

// Params are the client-facing query parameters shared by every history route.
type Params struct {
	From     *int64
	To       *int64
	Pool     string
	Page     int
	PageSize int
	SortBy   string // column or JSON name as sent by the client
	Desc     bool
	Summary  bool
}

// ParseParams reads and validates query parameters. Aliases: start_time for from,
// end_time for to, limit for page_size.
func ParseParams(v url.Values) (Params, error) {
	p := Params{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
		Pool:     strings.TrimSpace(v.Get("pool")),
		SortBy:   strings.TrimSpace(v.Get("sort_by")),
		// Anything but an explicit "asc" sorts newest first.
		Desc: v.Get("order") != "asc",
	}

	var err error
	if p.From, err = optionalInt64(v, "from", "start_time"); err != nil {
		return Params{}, err
	}
	if p.To, err = optionalInt64(v, "to", "end_time"); err != nil {
		return Params{}, err
	}
	if p.From != nil && p.To != nil && *p.From >= *p.To {
		return Params{}, fmt.Errorf("from=%d to=%d: %w", *p.From, *p.To, ErrInvalidRange)
	}

	if raw, name := first(v, "page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("%s=%q: %w", name, raw, ErrInvalidParam)
		}
		p.Page = max(n, 1)
	}
	if raw, name := first(v, "page_size", "limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("%s=%q: %w", name, raw, ErrInvalidParam)
		}
		p.PageSize = min(max(n, 1), MaxPageSize)
	}
	// Past this page the offset overflows. Any such page is empty anyway.
	if p.Page-1 > math.MaxInt/p.PageSize {
		p.Page = math.MaxInt/p.PageSize + 1
	}

	if raw, name := first(v, "summary"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Params{}, fmt.Errorf("%s=%q: %w", name, raw, ErrInvalidParam)
		}
		p.Summary = b
	}
	return p, nil
}

// Spec builds the store query of series. Unknown sort names fall back to start_time.
func (p Params) Spec(series history.Series) (history.QuerySpec, error) {
	if err := series.Validate(); err != nil {
		return history.QuerySpec{}, err
	}
	spec := history.QuerySpec{
		From:   p.From,
		To:     p.To,
		Desc:   p.Desc,
		Offset: (p.Page - 1) * p.PageSize,
		Limit:  p.PageSize,
	}
	if series.Pooled() {
		spec.Pool = p.Pool
	}
	spec.SortBy = history.QuerySpec{SortBy: p.SortBy}.SortColumn(series.Columns())
	return spec, nil
}

// first returns the first non-empty value among names, and the name it came from.
func first(v url.Values, names ...string) (string, string) {
	for _, name := range names {
		if raw := strings.TrimSpace(v.Get(name)); raw != "" {
			return raw, name
		}
	}
	return "", names[0]
}

func optionalInt64(v url.Values, names ...string) (*int64, error) {
	raw, name := first(v, names...)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s=%q: %w", name, raw, ErrInvalidParam)
	}
	return &n, nil
}
