package reporting

import (
	"reflect"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func recordAt(t time.Time, price float64, status Status) AppointmentRecord {
	return AppointmentRecord{DateTime: &t, TotalPrice: &price, Status: status}
}

func TestDailyRevenueEndToEnd(t *testing.T) {
	day1 := day(2026, 2, 10)
	day2 := day(2026, 2, 11)
	records := []AppointmentRecord{
		recordAt(day1.Add(9*time.Hour), 100, StatusReceivedGoods),
		recordAt(day1.Add(20*time.Hour), 50, StatusNotReceivedGoods),
		recordAt(day2.Add(12*time.Hour), 25, StatusReceivedGoods),
	}
	filter := FilterContext{
		DateRange:        DateRange{Start: day1, End: day2},
		RestaurantFilter: AllRestaurants,
	}

	agg := computeAggregates(records, filter, day2)

	wantValues := []float64{150, 25}
	if !reflect.DeepEqual(agg.DailyRevenue.Values, wantValues) {
		t.Fatalf("daily revenue = %v, want %v", agg.DailyRevenue.Values, wantValues)
	}
	wantLabels := []string{"10/02", "11/02"}
	if !reflect.DeepEqual(agg.DailyRevenue.Labels, wantLabels) {
		t.Fatalf("daily labels = %v, want %v", agg.DailyRevenue.Labels, wantLabels)
	}

	wantStatus := []StatusSlice{
		{Status: StatusNotReceivedGoods, Count: 1, Color: StatusColor(StatusNotReceivedGoods)},
		{Status: StatusReceivedGoods, Count: 2, Color: StatusColor(StatusReceivedGoods)},
	}
	if !reflect.DeepEqual(agg.StatusBreakdown, wantStatus) {
		t.Fatalf("status breakdown = %+v, want %+v", agg.StatusBreakdown, wantStatus)
	}
}

func TestDailyRevenueSumInvariant(t *testing.T) {
	start := day(2026, 1, 1)
	end := day(2026, 1, 31)
	records := []AppointmentRecord{
		recordAt(day(2026, 1, 3), 120, StatusReceivedRoom),
		recordAt(day(2026, 1, 3), 80, StatusReceivedRoom),
		recordAt(day(2026, 1, 17), 45.5, StatusReceivedGoods),
		recordAt(day(2025, 12, 31), 999, StatusReceivedGoods),
		recordAt(day(2026, 2, 1), 999, StatusReceivedGoods),
		{Status: StatusUnspecified}, // no dateTime, no price
	}

	series := dailyRevenue(records, DateRange{Start: start, End: end})

	if len(series.Labels) != 31 {
		t.Fatalf("expected contiguous 31 days, got %d", len(series.Labels))
	}
	var seriesSum float64
	for _, v := range series.Values {
		seriesSum += v
	}
	var directSum float64
	for _, rec := range records {
		if rec.DateTime == nil || rec.TotalPrice == nil {
			continue
		}
		d := truncateToDay(*rec.DateTime)
		if d.Before(start) || d.After(end) {
			continue
		}
		directSum += *rec.TotalPrice
	}
	if seriesSum != directSum {
		t.Fatalf("series sum %v != direct sum %v", seriesSum, directSum)
	}
}

func TestMalformedRecordsExcludedFromDateBuckets(t *testing.T) {
	good := day(2026, 4, 2)
	price := 10.0
	records := []AppointmentRecord{
		recordAt(good, 40, StatusReceivedGoods),
		{TotalPrice: &price, Status: StatusReceivedRoom}, // no dateTime
		{DateTime: &good, Status: StatusReceivedRoom},    // no price
	}
	filter := FilterContext{DateRange: DateRange{Start: good, End: good}}

	agg := computeAggregates(records, filter, good)

	if agg.DailyRevenue.Values[0] != 40 {
		t.Fatalf("dateless/priceless records must not contribute to revenue, got %v", agg.DailyRevenue.Values[0])
	}

	var total int
	for _, slice := range agg.StatusBreakdown {
		total += slice.Count
	}
	if total != 3 {
		t.Fatalf("all records must appear in status breakdown, got %d", total)
	}
}

func TestMonthlyRevenueTrailingWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.Local)
	records := []AppointmentRecord{
		recordAt(day(2026, 8, 1), 300, StatusReceivedGoods),
		recordAt(day(2026, 3, 15), 100, StatusReceivedGoods),
		// Outside the trailing window: ignored regardless of the date filter.
		recordAt(day(2026, 2, 28), 500, StatusReceivedGoods),
	}

	series := monthlyRevenue(records, now)

	wantLabels := []string{"03/26", "04/26", "05/26", "06/26", "07/26", "08/26"}
	if !reflect.DeepEqual(series.Labels, wantLabels) {
		t.Fatalf("monthly labels = %v, want %v", series.Labels, wantLabels)
	}
	wantValues := []float64{100, 0, 0, 0, 0, 300}
	if !reflect.DeepEqual(series.Values, wantValues) {
		t.Fatalf("monthly values = %v, want %v", series.Values, wantValues)
	}
	if series.MaxValue != 300 {
		t.Fatalf("maxValue = %v, want 300", series.MaxValue)
	}
}

func TestTopDishesSumsQuantities(t *testing.T) {
	records := []AppointmentRecord{
		{OtherItems: []OtherItem{{Name: "Pho", Quantity: 2}}},
		{OtherItems: []OtherItem{{Name: "Pho", Quantity: 3}, {Name: "Bun", Quantity: 1}}},
		{OtherItems: []OtherItem{{Name: "Goi cuon"}}}, // zero quantity counts as 1
	}

	series := topDishes(records)

	if series.Labels[0] != "Pho" || series.Values[0] != 5 {
		t.Fatalf("expected Pho=5 first, got %s=%v", series.Labels[0], series.Values[0])
	}
	if series.Labels[1] != "Bun" && series.Labels[2] != "Bun" {
		t.Fatalf("expected Bun ranked, got %v", series.Labels)
	}
	for i, label := range series.Labels {
		if label == "Goi cuon" && series.Values[i] != 1 {
			t.Fatalf("zero quantity must default to 1, got %v", series.Values[i])
		}
	}
}

func TestTopRoomsRespectsRestaurantFilter(t *testing.T) {
	records := []AppointmentRecord{
		{TableItems: []TableItem{
			{Name: "VIP 1", RestaurantName: "Riverside"},
			{Name: "VIP 2", RestaurantName: "Downtown"},
		}},
		{TableItems: []TableItem{
			{Name: "VIP 1", RestaurantName: "Riverside"},
		}},
	}

	all := topRooms(records, AllRestaurants)
	if len(all.Labels) != 2 {
		t.Fatalf("expected both rooms with All filter, got %v", all.Labels)
	}

	riverside := topRooms(records, "Riverside")
	if len(riverside.Labels) != 1 || riverside.Labels[0] != "VIP 1" || riverside.Values[0] != 2 {
		t.Fatalf("expected VIP 1=2 for Riverside, got %+v", riverside)
	}

	none := topRooms(records, "Nowhere")
	if !reflect.DeepEqual(none, placeholderSeries()) {
		t.Fatalf("expected placeholder for unmatched restaurant, got %+v", none)
	}
}

func TestRestaurantNames(t *testing.T) {
	records := []AppointmentRecord{
		{TableItems: []TableItem{{RestaurantName: "Riverside"}, {RestaurantName: "Downtown"}}},
		{TableItems: []TableItem{{RestaurantName: "Riverside"}, {RestaurantName: ""}}},
	}
	got := restaurantNames(records)
	want := []string{"Downtown", "Riverside"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("restaurants = %v, want %v", got, want)
	}
}

func TestDailyRevenueEmptyAndInvertedRange(t *testing.T) {
	series := dailyRevenue(nil, DateRange{Start: day(2026, 1, 2), End: day(2026, 1, 1)})
	if !reflect.DeepEqual(series, placeholderSeries()) {
		t.Fatalf("inverted range must yield placeholder, got %+v", series)
	}

	empty := dailyRevenue(nil, DateRange{Start: day(2026, 1, 1), End: day(2026, 1, 3)})
	if len(empty.Labels) != 3 || empty.MaxValue != 1 {
		t.Fatalf("empty data must yield zero-filled days with maxValue 1, got %+v", empty)
	}
}
