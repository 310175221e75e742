package docstore

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Snapshot is one full-collection event delivered to subscribers. Err is set
// when the store could not be reached; Docs is nil in that case so consumers
// never aggregate partial data.
type Snapshot struct {
	Docs []Document
	Err  error
}

// Subscriber delivers full-snapshot events for one collection. It polls a
// cheap watermark (row count + max updated_at) and re-reads the collection
// wholesale when the watermark moves, so every event carries the complete
// current document set.
type Subscriber struct {
	store    *Store
	log      *zap.Logger
	interval time.Duration
}

func NewSubscriber(store *Store, log *zap.Logger, interval time.Duration) *Subscriber {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Subscriber{store: store, log: log, interval: interval}
}

// Subscribe starts watching a collection. The first snapshot is emitted
// immediately; afterwards one snapshot per observed change. The channel is
// closed when ctx is cancelled or stop is called.
func (s *Subscriber) Subscribe(ctx context.Context, collection string) (<-chan Snapshot, func()) {
	events := make(chan Snapshot, 1)
	ctx, cancel := context.WithCancel(ctx)

	go s.watch(ctx, collection, events)

	return events, cancel
}

type watermark struct {
	count     int64
	updatedAt time.Time
}

func (s *Subscriber) watch(ctx context.Context, collection string, events chan Snapshot) {
	defer close(events)

	var last *watermark

	emit := func() {
		docs, err := s.store.FetchOnce(ctx, collection)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("collection snapshot failed",
				zap.String("collection", collection), zap.Error(err))
			deliver(ctx, events, Snapshot{Err: err})
			return
		}
		deliver(ctx, events, Snapshot{Docs: docs})
	}

	// Initial snapshot before the first tick.
	if wm, err := s.fetchWatermark(ctx, collection); err == nil {
		last = &wm
		emit()
	} else if ctx.Err() == nil {
		deliver(ctx, events, Snapshot{Err: err})
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		wm, err := s.fetchWatermark(ctx, collection)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("collection watermark failed",
				zap.String("collection", collection), zap.Error(err))
			deliver(ctx, events, Snapshot{Err: err})
			last = nil
			continue
		}

		if last != nil && wm.count == last.count && wm.updatedAt.Equal(last.updatedAt) {
			continue
		}
		last = &wm
		emit()
	}
}

func (s *Subscriber) fetchWatermark(ctx context.Context, collection string) (watermark, error) {
	var wm watermark
	err := s.store.db.QueryRow(ctx, `
        select count(*), coalesce(max(updated_at), 'epoch'::timestamptz)
        from documents
        where collection = $1
    `, collection).Scan(&wm.count, &wm.updatedAt)
	return wm, err
}

// deliver replaces a pending unread snapshot instead of blocking, so a slow
// consumer always picks up the latest state rather than a stale backlog.
func deliver(ctx context.Context, events chan Snapshot, snap Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case events <- snap:
			return
		default:
			select {
			case <-events:
			default:
			}
		}
	}
}
