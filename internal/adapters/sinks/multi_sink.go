package sinks

import (
	"context"
	"errors"
	"sync"

	"github.com/reservenow/backend/internal/domain/entities"
	"github.com/reservenow/backend/internal/domain/providers"
)

// MultiSink records to every configured sink concurrently
type MultiSink struct {
	sinks []providers.SubmissionSink
}

// Combine returns nil for no sinks, the sink itself for one and a MultiSink otherwise
func Combine(sinks ...providers.SubmissionSink) providers.SubmissionSink {
	var active []providers.SubmissionSink
	for _, s := range sinks {
		if s != nil {
			active = append(active, s)
		}
	}
	switch len(active) {
	case 0:
		return nil
	case 1:
		return active[0]
	}
	return &MultiSink{sinks: active}
}

// Record waits for every sink and joins their errors
func (m *MultiSink) Record(ctx context.Context, entry *entities.SubmissionLog) error {
	errs := make([]error, len(m.sinks))

	var wg sync.WaitGroup
	for i, sink := range m.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = sink.Record(ctx, entry)
		}()
	}
	wg.Wait()

	return errors.Join(errs...)
}
