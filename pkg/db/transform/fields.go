package transform

import (
	"fmt"
	"strconv"
	"strings"
)

// fieldParser parses text-encoded numeric fields and keeps the first failure.
// Once an error is recorded every later call is a no-op returning zero.
type fieldParser struct {
	err error
}

func (p *fieldParser) fail(name, value string, err error) {
	if p.err != nil {
		return
	}
	if strings.TrimSpace(value) == "" {
		p.err = fmt.Errorf("missing field %s", name)
		return
	}
	p.err = fmt.Errorf("field %s=%q: %w", name, value, err)
}

func (p *fieldParser) int64(name, value string) int64 {
	if p.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		p.fail(name, value, err)
		return 0
	}
	return n
}

func (p *fieldParser) float64(name, value string) float64 {
	if p.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		p.fail(name, value, err)
		return 0
	}
	return f
}

func (p *fieldParser) text(name, value string) string {
	if p.err != nil {
		return ""
	}
	if strings.TrimSpace(value) == "" {
		p.fail(name, value, nil)
		return ""
	}
	return value
}

// bounds parses startTime/endTime and rejects empty or inverted intervals.
func (p *fieldParser) bounds(start, end string) (int64, int64) {
	s := p.int64("startTime", start)
	e := p.int64("endTime", end)
	if p.err == nil && e <= s {
		p.err = fmt.Errorf("endTime %d is not after startTime %d", e, s)
	}
	return s, e
}
