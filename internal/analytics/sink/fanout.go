package sink

import (
	"context"
	"errors"

	"github.com/therealhieu/wee/internal/analytics"
)

// Fanout delivers every event to each of its sinks and joins their errors.
type Fanout []analytics.Sink

func (f Fanout) SaveURLShortened(ctx context.Context, event *analytics.URLShortenedEvent) error {
	errs := make([]error, 0, len(f))

	for _, s := range f {
		errs = append(errs, s.SaveURLShortened(ctx, event))
	}

	return errors.Join(errs...)
}

func (f Fanout) SaveURLRedirected(ctx context.Context, event *analytics.URLRedirectedEvent) error {
	errs := make([]error, 0, len(f))

	for _, s := range f {
		errs = append(errs, s.SaveURLRedirected(ctx, event))
	}

	return errors.Join(errs...)
}
