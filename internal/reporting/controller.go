package reporting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"savora-admin-service/internal/docstore"

	"go.uber.org/zap"
)

// Collection paths the reporting module reads.
const (
	CollectionAppointments = "appointments"
	CollectionUsers        = "users"
	CollectionMenu         = "menu"
)

// ProductsCollection is the product subcollection path of a menu category.
func ProductsCollection(categoryID string) string {
	return fmt.Sprintf("%s/%s/products", CollectionMenu, categoryID)
}

// Source is the one-shot read surface the reporting module consumes from the
// document layer.
type Source interface {
	FetchOnce(ctx context.Context, collection string) ([]docstore.Document, error)
	GetDocument(ctx context.Context, collection string, id string) (docstore.Document, error)
	Count(ctx context.Context, collection string) (int64, error)
}

// SnapshotSource delivers live full-snapshot events for a collection.
type SnapshotSource interface {
	Subscribe(ctx context.Context, collection string) (<-chan docstore.Snapshot, func())
}

// ErrNotReady is returned while the first appointment snapshot is pending.
var ErrNotReady = errors.New("aggregates not ready")

// ConnectivityError marks a failed store fetch or subscription event. The
// rendering layer shows it as an explicit failure state.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string { return "store unreachable: " + e.Err.Error() }
func (e *ConnectivityError) Unwrap() error { return e.Err }

// Controller owns the canonical in-memory record set, the filter context and
// the derived aggregate bundle. A single consumer goroutine (Run) processes
// data-push and filter-commit triggers in arrival order; rapid bursts
// coalesce into one recompute over the latest cumulative state. Each
// recompute replaces only the appointment-driven aggregates; the favorites
// series comes from a separate one-shot path and survives untouched.
type Controller struct {
	source Source
	stream SnapshotSource
	log    *zap.Logger
	now    func() time.Time

	mu          sync.RWMutex
	records     []AppointmentRecord
	filter      FilterContext
	stagedRange *DateRange
	agg         Aggregates
	connErr     error
	ready       bool

	trigger  chan struct{}
	onUpdate []func(Aggregates)
}

func NewController(source Source, stream SnapshotSource, log *zap.Logger) *Controller {
	c := &Controller{
		source:  source,
		stream:  stream,
		log:     log,
		now:     time.Now,
		trigger: make(chan struct{}, 1),
	}
	today := truncateToDay(c.now())
	c.filter = FilterContext{
		DateRange:        DateRange{Start: today.AddDate(0, 0, -6), End: today},
		RestaurantFilter: AllRestaurants,
	}
	return c
}

// OnUpdate registers a callback invoked with a snapshot copy of the bundle
// after every recompute. Register before Run.
func (c *Controller) OnUpdate(fn func(Aggregates)) {
	c.onUpdate = append(c.onUpdate, fn)
}

// Run subscribes to the appointments collection and processes events until
// ctx is cancelled. The subscription is torn down on return.
func (c *Controller) Run(ctx context.Context) error {
	events, stop := c.stream.Subscribe(ctx, CollectionAppointments)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-events:
			if !ok {
				return nil
			}
			if snap.Err != nil {
				// Keep the previous aggregates; never run on partial data.
				c.mu.Lock()
				c.connErr = &ConnectivityError{Err: snap.Err}
				c.mu.Unlock()
				continue
			}
			records := CanonicalizeAppointments(snap.Docs)
			c.mu.Lock()
			c.records = records
			c.connErr = nil
			c.mu.Unlock()
			c.recompute()
		case <-c.trigger:
			c.recompute()
		}
	}
}

func (c *Controller) recompute() {
	c.mu.RLock()
	records := c.records
	filter := c.filter
	c.mu.RUnlock()

	fresh := computeAggregates(records, filter, c.now())

	c.mu.Lock()
	c.agg.DailyRevenue = fresh.DailyRevenue
	c.agg.MonthlyRevenue = fresh.MonthlyRevenue
	c.agg.StatusBreakdown = fresh.StatusBreakdown
	c.agg.TopDishes = fresh.TopDishes
	c.agg.TopRooms = fresh.TopRooms
	c.agg.Restaurants = fresh.Restaurants
	c.ready = true
	snapshot := copyAggregates(c.agg)
	c.mu.Unlock()

	c.notify(snapshot)
}

func (c *Controller) notify(snapshot Aggregates) {
	for _, fn := range c.onUpdate {
		fn(snapshot)
	}
}

// Aggregates returns a read-only snapshot of the current bundle. The error is
// ErrNotReady before the first successful snapshot, or a *ConnectivityError
// while the store is unreachable (the bundle then still reflects the last
// good state).
func (c *Controller) Aggregates() (Aggregates, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.connErr != nil {
		return copyAggregates(c.agg), c.connErr
	}
	if !c.ready {
		return Aggregates{}, ErrNotReady
	}
	return copyAggregates(c.agg), nil
}

// Filter returns a snapshot of the active filter context.
func (c *Controller) Filter() FilterContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

// SetRestaurantFilter applies a new restaurant selector immediately and
// schedules a recompute. Empty input resets to the pass-through selector.
func (c *Controller) SetRestaurantFilter(name string) {
	if name == "" {
		name = AllRestaurants
	}
	c.mu.Lock()
	c.filter.RestaurantFilter = name
	c.mu.Unlock()
	c.requestRecompute()
}

// StageDateRange stores a pending date range without touching the active
// filter, so range edits do not recompute until committed.
func (c *Controller) StageDateRange(start, end time.Time) error {
	dr := DateRange{Start: start, End: end}
	if err := dr.validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.stagedRange = &dr
	c.mu.Unlock()
	return nil
}

// CommitDateRange applies the staged range to the active filter and schedules
// a recompute. Committing with nothing staged is a no-op.
func (c *Controller) CommitDateRange() {
	c.mu.Lock()
	if c.stagedRange == nil {
		c.mu.Unlock()
		return
	}
	c.filter.DateRange = *c.stagedRange
	c.stagedRange = nil
	c.mu.Unlock()
	c.requestRecompute()
}

// requestRecompute coalesces: a trigger already pending absorbs this one, and
// the eventual recompute reads the latest filter and record state.
func (c *Controller) requestRecompute() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// RefreshFavorites runs the one-shot favorites aggregation: tally favorites
// across user documents, keep the top entries, then resolve product names
// from the menu subcollections. Only the favorites series is replaced.
func (c *Controller) RefreshFavorites(ctx context.Context) error {
	users, err := c.source.FetchOnce(ctx, CollectionUsers)
	if err != nil {
		return &ConnectivityError{Err: err}
	}

	entries := CanonicalizeFavorites(users)
	ranked := rank(entries,
		func(e FavoriteEntry) string { return e.CategoryID + "_" + e.ProductID },
		func(FavoriteEntry) float64 { return 1 },
		topLimit)

	series := Series{Values: ranked.Values, MaxValue: ranked.MaxValue}
	for _, key := range ranked.Labels {
		series.Labels = append(series.Labels, c.resolveProductName(ctx, key))
	}

	c.mu.Lock()
	c.agg.Favorites = series
	snapshot := copyAggregates(c.agg)
	ready := c.ready
	c.mu.Unlock()

	if ready {
		c.notify(snapshot)
	}
	return nil
}

func (c *Controller) resolveProductName(ctx context.Context, key string) string {
	if key == PlaceholderLabel {
		return key
	}
	categoryID, productID, ok := splitFavoriteKey(key)
	if !ok {
		return "unknown product"
	}
	doc, err := c.source.GetDocument(ctx, ProductsCollection(categoryID), productID)
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			c.log.Warn("favorite product lookup failed",
				zap.String("categoryId", categoryID),
				zap.String("productId", productID),
				zap.Error(err))
		}
		return "unknown product"
	}
	name := asString(doc.Fields["name"])
	if name == "" {
		return "unknown product"
	}
	return name
}

func splitFavoriteKey(key string) (categoryID, productID string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '_' {
			return key[:i], key[i+1:], key[:i] != "" && key[i+1:] != ""
		}
	}
	return "", "", false
}

func copyAggregates(agg Aggregates) Aggregates {
	out := Aggregates{
		DailyRevenue:   copySeries(agg.DailyRevenue),
		MonthlyRevenue: copySeries(agg.MonthlyRevenue),
		TopDishes:      copySeries(agg.TopDishes),
		TopRooms:       copySeries(agg.TopRooms),
		Favorites:      copySeries(agg.Favorites),
	}
	if agg.StatusBreakdown != nil {
		out.StatusBreakdown = append([]StatusSlice(nil), agg.StatusBreakdown...)
	}
	if agg.Restaurants != nil {
		out.Restaurants = append([]string(nil), agg.Restaurants...)
	}
	return out
}

func copySeries(s Series) Series {
	out := Series{MaxValue: s.MaxValue}
	if s.Labels != nil {
		out.Labels = append([]string(nil), s.Labels...)
	}
	if s.Values != nil {
		out.Values = append([]float64(nil), s.Values...)
	}
	return out
}
