package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"savora-admin-service/internal/docstore"
)

func TestComputeSummary(t *testing.T) {
	now := time.Date(2026, 6, 15, 14, 0, 0, 0, time.Local)
	source := &fakeSource{collections: map[string][]docstore.Document{
		CollectionUsers: {
			{ID: "u1"}, {ID: "u2"}, {ID: "u3"},
		},
		CollectionMenu: {
			{ID: "c1"}, {ID: "c2"},
		},
		ProductsCollection("c1"): {
			{ID: "p1"}, {ID: "p2"},
		},
		ProductsCollection("c2"): {
			{ID: "p3"},
		},
		CollectionAppointments: {
			{ID: "a1", Fields: map[string]any{"dateTime": "2026-06-15T09:00:00", "totalPrice": float64(100)}},
			{ID: "a2", Fields: map[string]any{"dateTime": "2026-06-15T21:30:00", "totalPrice": float64(40)}},
			{ID: "a3", Fields: map[string]any{"dateTime": "2026-06-02", "totalPrice": float64(60)}},
			{ID: "a4", Fields: map[string]any{"dateTime": "2026-05-31", "totalPrice": float64(999)}},
			{ID: "a5", Fields: map[string]any{"dateTime": "garbage", "totalPrice": float64(7)}},
			{ID: "a6", Fields: map[string]any{"dateTime": "2026-06-15T10:00:00"}}, // today, no price
		},
	}}

	counters, err := ComputeSummary(context.Background(), source, now)
	if err != nil {
		t.Fatalf("ComputeSummary: %v", err)
	}

	if counters.TotalUsers != 3 {
		t.Fatalf("totalUsers = %d, want 3", counters.TotalUsers)
	}
	if counters.TotalProducts != 3 {
		t.Fatalf("totalProducts = %d, want 3", counters.TotalProducts)
	}
	if counters.TodayOrders != 3 {
		t.Fatalf("todayOrders = %d, want 3", counters.TodayOrders)
	}
	if counters.MonthlyRevenue != 200 {
		t.Fatalf("monthlyRevenue = %v, want 200", counters.MonthlyRevenue)
	}
}

func TestComputeSummaryFailureZeroesEverything(t *testing.T) {
	source := &fakeSource{err: errors.New("store down")}

	counters, err := ComputeSummary(context.Background(), source, time.Now())

	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if counters != (SummaryCounters{}) {
		t.Fatalf("counters must be zeroed on failure, got %+v", counters)
	}
}
