package reporting

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"savora-admin-service/internal/docstore"

	"go.uber.org/zap"
)

type fakeSource struct {
	collections map[string][]docstore.Document
	err         error
}

func (f *fakeSource) FetchOnce(_ context.Context, collection string) ([]docstore.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.collections[collection], nil
}

func (f *fakeSource) GetDocument(_ context.Context, collection string, id string) (docstore.Document, error) {
	if f.err != nil {
		return docstore.Document{}, f.err
	}
	for _, doc := range f.collections[collection] {
		if doc.ID == id {
			return doc, nil
		}
	}
	return docstore.Document{}, docstore.ErrNotFound
}

func (f *fakeSource) Count(_ context.Context, collection string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.collections[collection])), nil
}

type fakeStream struct {
	ch chan docstore.Snapshot
}

func (f *fakeStream) Subscribe(context.Context, string) (<-chan docstore.Snapshot, func()) {
	return f.ch, func() {}
}

func appointmentDoc(id string, fields map[string]any) docstore.Document {
	return docstore.Document{ID: id, Fields: fields}
}

func startController(t *testing.T, source *fakeSource, stream *fakeStream) (*Controller, chan Aggregates, func()) {
	t.Helper()
	c := NewController(source, stream, zap.NewNop())
	updates := make(chan Aggregates, 16)
	c.OnUpdate(func(agg Aggregates) { updates <- agg })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()
	return c, updates, func() {
		cancel()
		<-done
	}
}

func waitUpdate(t *testing.T, updates chan Aggregates) Aggregates {
	t.Helper()
	select {
	case agg := <-updates:
		return agg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for recompute")
		return Aggregates{}
	}
}

func TestControllerNotReadyBeforeFirstSnapshot(t *testing.T) {
	c := NewController(&fakeSource{}, &fakeStream{ch: make(chan docstore.Snapshot)}, zap.NewNop())
	if _, err := c.Aggregates(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestControllerRecomputesOnSnapshot(t *testing.T) {
	stream := &fakeStream{ch: make(chan docstore.Snapshot, 4)}
	_, updates, stop := startController(t, &fakeSource{}, stream)
	defer stop()

	stream.ch <- docstore.Snapshot{Docs: []docstore.Document{
		appointmentDoc("a1", map[string]any{
			"status":     "ReceivedGoods",
			"totalPrice": float64(100),
			"otherItems": []any{map[string]any{"name": "Pho", "quantity": float64(2)}},
		}),
	}}

	agg := waitUpdate(t, updates)
	if agg.TopDishes.Labels[0] != "Pho" || agg.TopDishes.Values[0] != 2 {
		t.Fatalf("expected Pho=2, got %+v", agg.TopDishes)
	}
	if len(agg.StatusBreakdown) != 1 || agg.StatusBreakdown[0].Status != StatusReceivedGoods {
		t.Fatalf("unexpected status breakdown %+v", agg.StatusBreakdown)
	}
}

func TestControllerFilterIsolation(t *testing.T) {
	stream := &fakeStream{ch: make(chan docstore.Snapshot, 4)}
	source := &fakeSource{collections: map[string][]docstore.Document{
		CollectionUsers: {
			appointmentDoc("u1", map[string]any{
				"favoriteProducts": []any{map[string]any{"categoryId": "c1", "productId": "p1"}},
			}),
		},
		ProductsCollection("c1"): {
			appointmentDoc("p1", map[string]any{"name": "Spring Rolls"}),
		},
	}}
	c, updates, stop := startController(t, source, stream)
	defer stop()

	stream.ch <- docstore.Snapshot{Docs: []docstore.Document{
		appointmentDoc("a1", map[string]any{
			"status": "ReceivedRoom",
			"tableItems": []any{
				map[string]any{"name": "VIP 1", "restaurantName": "Riverside"},
				map[string]any{"name": "VIP 2", "restaurantName": "Downtown"},
			},
			"otherItems": []any{map[string]any{"name": "Pho", "quantity": float64(1)}},
		}),
	}}
	before := waitUpdate(t, updates)

	if err := c.RefreshFavorites(context.Background()); err != nil {
		t.Fatalf("RefreshFavorites: %v", err)
	}
	withFavorites := waitUpdate(t, updates)
	if withFavorites.Favorites.Labels[0] != "Spring Rolls" {
		t.Fatalf("expected resolved favorite name, got %+v", withFavorites.Favorites)
	}

	c.SetRestaurantFilter("Riverside")
	after := waitUpdate(t, updates)

	if reflect.DeepEqual(after.TopRooms, before.TopRooms) {
		t.Fatalf("topRooms should change with the restaurant filter")
	}
	if !reflect.DeepEqual(after.TopDishes, before.TopDishes) {
		t.Fatalf("topDishes must be unaffected by the restaurant filter")
	}
	if !reflect.DeepEqual(after.StatusBreakdown, before.StatusBreakdown) {
		t.Fatalf("statusBreakdown must be unaffected by the restaurant filter")
	}
	if !reflect.DeepEqual(after.Favorites, withFavorites.Favorites) {
		t.Fatalf("favorites must be preserved across filter-driven recomputes")
	}
}

func TestControllerStagedDateRangeCommit(t *testing.T) {
	stream := &fakeStream{ch: make(chan docstore.Snapshot, 4)}
	c, updates, stop := startController(t, &fakeSource{}, stream)
	defer stop()

	stream.ch <- docstore.Snapshot{Docs: nil}
	initial := waitUpdate(t, updates)

	start := day(2026, 5, 1)
	end := day(2026, 5, 3)
	if err := c.StageDateRange(start, end); err != nil {
		t.Fatalf("StageDateRange: %v", err)
	}

	// Staging alone must not mutate the active filter.
	if got := c.Filter().DateRange; got.Start.Equal(start) && got.End.Equal(end) {
		t.Fatalf("staged range leaked into active filter before commit")
	}
	if len(initial.DailyRevenue.Labels) == 3 {
		t.Fatalf("recompute happened before commit")
	}

	c.CommitDateRange()
	committed := waitUpdate(t, updates)
	if len(committed.DailyRevenue.Labels) != 3 {
		t.Fatalf("expected 3 day buckets after commit, got %v", committed.DailyRevenue.Labels)
	}
	if got := c.Filter().DateRange; !got.Start.Equal(start) || !got.End.Equal(end) {
		t.Fatalf("commit did not apply staged range: %+v", got)
	}

	// Second commit with nothing staged is a no-op.
	c.CommitDateRange()
	select {
	case <-updates:
		t.Fatalf("no-op commit must not recompute")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestControllerInvalidDateRange(t *testing.T) {
	c := NewController(&fakeSource{}, &fakeStream{ch: make(chan docstore.Snapshot)}, zap.NewNop())
	if err := c.StageDateRange(day(2026, 5, 3), day(2026, 5, 1)); err == nil {
		t.Fatalf("expected error for inverted range")
	}
	if err := c.StageDateRange(time.Time{}, day(2026, 5, 1)); err == nil {
		t.Fatalf("expected error for zero start")
	}
}

func TestControllerConnectivityError(t *testing.T) {
	stream := &fakeStream{ch: make(chan docstore.Snapshot, 4)}
	c, updates, stop := startController(t, &fakeSource{}, stream)
	defer stop()

	stream.ch <- docstore.Snapshot{Docs: []docstore.Document{
		appointmentDoc("a1", map[string]any{"status": "ReceivedGoods"}),
	}}
	good := waitUpdate(t, updates)

	stream.ch <- docstore.Snapshot{Err: errors.New("connection refused")}

	deadline := time.After(2 * time.Second)
	for {
		agg, err := c.Aggregates()
		var connErr *ConnectivityError
		if errors.As(err, &connErr) {
			// Last good aggregates stay available alongside the error state.
			if !reflect.DeepEqual(agg.StatusBreakdown, good.StatusBreakdown) {
				t.Fatalf("previous aggregates must survive a failed snapshot")
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("connectivity error never surfaced")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// A later good snapshot clears the error.
	stream.ch <- docstore.Snapshot{Docs: nil}
	waitUpdate(t, updates)
	if _, err := c.Aggregates(); err != nil {
		t.Fatalf("expected error cleared after good snapshot, got %v", err)
	}
}

func TestRefreshFavoritesEmptyAndMissingProduct(t *testing.T) {
	source := &fakeSource{collections: map[string][]docstore.Document{
		CollectionUsers: {
			appointmentDoc("u1", map[string]any{
				"favoriteProducts": []any{map[string]any{"categoryId": "c9", "productId": "missing"}},
			}),
		},
	}}
	c := NewController(source, &fakeStream{ch: make(chan docstore.Snapshot)}, zap.NewNop())

	if err := c.RefreshFavorites(context.Background()); err != nil {
		t.Fatalf("RefreshFavorites: %v", err)
	}
	c.mu.RLock()
	favorites := copySeries(c.agg.Favorites)
	c.mu.RUnlock()
	if favorites.Labels[0] != "unknown product" {
		t.Fatalf("missing product must resolve to placeholder name, got %v", favorites.Labels)
	}

	empty := &fakeSource{}
	c2 := NewController(empty, &fakeStream{ch: make(chan docstore.Snapshot)}, zap.NewNop())
	if err := c2.RefreshFavorites(context.Background()); err != nil {
		t.Fatalf("RefreshFavorites on empty users: %v", err)
	}
	c2.mu.RLock()
	favorites2 := copySeries(c2.agg.Favorites)
	c2.mu.RUnlock()
	if !reflect.DeepEqual(favorites2, placeholderSeries()) {
		t.Fatalf("empty favorites must yield placeholder, got %+v", favorites2)
	}

	failing := &fakeSource{err: errors.New("down")}
	c3 := NewController(failing, &fakeStream{ch: make(chan docstore.Snapshot)}, zap.NewNop())
	var connErr *ConnectivityError
	if err := c3.RefreshFavorites(context.Background()); !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
}
