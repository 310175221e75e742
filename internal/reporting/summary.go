package reporting

import (
	"context"
	"time"
)

// SummaryCounters are the one-shot scalar KPIs shown on the dashboard header.
type SummaryCounters struct {
	TotalUsers     int64   `json:"totalUsers"`
	TotalProducts  int64   `json:"totalProducts"`
	TodayOrders    int64   `json:"todayOrders"`
	MonthlyRevenue float64 `json:"monthlyRevenue"`
}

// ComputeSummary gathers the four KPI counters with one-shot reads. Any fetch
// failure zeroes every counter and surfaces the error, so the caller never
// renders a partially populated header. "Today" and "this month" use the
// evaluating process's local calendar.
func ComputeSummary(ctx context.Context, source Source, now time.Time) (SummaryCounters, error) {
	totalUsers, err := source.Count(ctx, CollectionUsers)
	if err != nil {
		return SummaryCounters{}, &ConnectivityError{Err: err}
	}

	// One fetch per menu category; acceptable at back-office scale.
	categories, err := source.FetchOnce(ctx, CollectionMenu)
	if err != nil {
		return SummaryCounters{}, &ConnectivityError{Err: err}
	}
	var totalProducts int64
	for _, category := range categories {
		count, err := source.Count(ctx, ProductsCollection(category.ID))
		if err != nil {
			return SummaryCounters{}, &ConnectivityError{Err: err}
		}
		totalProducts += count
	}

	appointments, err := source.FetchOnce(ctx, CollectionAppointments)
	if err != nil {
		return SummaryCounters{}, &ConnectivityError{Err: err}
	}

	counters := SummaryCounters{
		TotalUsers:    totalUsers,
		TotalProducts: totalProducts,
	}
	today := truncateToDay(now)
	for _, rec := range CanonicalizeAppointments(appointments) {
		if rec.DateTime == nil {
			continue
		}
		if truncateToDay(*rec.DateTime).Equal(today) {
			counters.TodayOrders++
		}
		if rec.DateTime.Year() == now.Year() && rec.DateTime.Month() == now.Month() && rec.TotalPrice != nil {
			counters.MonthlyRevenue += *rec.TotalPrice
		}
	}
	return counters, nil
}
