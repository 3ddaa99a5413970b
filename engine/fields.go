package engine

import (
	"context"
	"strings"
	"time"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
)

// fieldReader reads semantic fields through a selector fallback chain,
// recording per-selector metrics and collecting failed attempts for
// diagnostics. A missing field is never fatal; the chain simply reports
// not-found.
type fieldReader struct {
	page scrapsae.PageDriver
	sel  *scrapsae.SiteSelectors
	rec  *Recorder

	// attempts accumulates failed selector tries for the current page,
	// consumed when a diagnostic package is assembled.
	attempts []scrapsae.SelectorAttempt
}

func newFieldReader(page scrapsae.PageDriver, sel *scrapsae.SiteSelectors, rec *Recorder) *fieldReader {
	return &fieldReader{page: page, sel: sel, rec: rec}
}

// text reads a field's visible text through its chain. The second result
// is false when no selector in the chain produced text.
func (r *fieldReader) text(ctx context.Context, field string) (string, bool) {
	return r.read(ctx, field, func(ctx context.Context, el scrapsae.Element) (string, error) {
		return el.InnerText(ctx)
	})
}

// attr reads an attribute of a field's first match through its chain.
func (r *fieldReader) attr(ctx context.Context, field, name string) (string, bool) {
	return r.read(ctx, field, func(ctx context.Context, el scrapsae.Element) (string, error) {
		return el.GetAttribute(ctx, name)
	})
}

func (r *fieldReader) read(ctx context.Context, field string, extract func(context.Context, scrapsae.Element) (string, error)) (string, bool) {
	for _, selector := range r.sel.Chain(field) {
		begin := time.Now()
		el, err := r.page.QuerySelector(ctx, selector)
		if err != nil {
			r.record(field, selector, scrapsae.AttemptError, begin)
			continue
		}
		if el == nil {
			r.record(field, selector, scrapsae.AttemptNotFound, begin)
			continue
		}

		value, err := extract(ctx, el)
		if err != nil {
			r.record(field, selector, scrapsae.AttemptError, begin)
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			r.record(field, selector, scrapsae.AttemptEmpty, begin)
			continue
		}

		r.record(field, selector, scrapsae.AttemptMatched, begin)
		return value, true
	}
	return "", false
}

func (r *fieldReader) record(field, selector, status string, begin time.Time) {
	ok := status == scrapsae.AttemptMatched
	if r.rec != nil {
		r.rec.SelectorAttempt(selector, ok, time.Since(begin))
	}
	if !ok {
		r.attempts = append(r.attempts, scrapsae.SelectorAttempt{
			Field:    field,
			Selector: selector,
			Status:   status,
		})
	}
}

// failedAttempts returns and clears the accumulated failed attempts.
func (r *fieldReader) failedAttempts() []scrapsae.SelectorAttempt {
	attempts := r.attempts
	r.attempts = nil
	return attempts
}
