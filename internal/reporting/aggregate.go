package reporting

import (
	"fmt"
	"sort"
	"time"
)

// AllRestaurants is the restaurant selector value that disables filtering.
const AllRestaurants = "All"

const topLimit = 5

// DateRange is an inclusive calendar-day range.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// FilterContext parameterizes one aggregation pass. Engine invocations read
// an immutable snapshot; only the controller mutates the live value.
type FilterContext struct {
	DateRange        DateRange `json:"dateRange"`
	RestaurantFilter string    `json:"restaurantFilter"`
}

// StatusSlice is one entry of the status breakdown chart.
type StatusSlice struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
	Color  string `json:"color"`
}

// Aggregates is the full derived bundle handed to the rendering layer.
// Favorites is produced by a separate one-shot path and is preserved across
// appointment-driven recomputes.
type Aggregates struct {
	DailyRevenue    Series        `json:"dailyRevenue"`
	MonthlyRevenue  Series        `json:"monthlyRevenue"`
	StatusBreakdown []StatusSlice `json:"statusBreakdown"`
	TopDishes       Series        `json:"topDishes"`
	TopRooms        Series        `json:"topRooms"`
	Favorites       Series        `json:"favorites"`
	Restaurants     []string      `json:"restaurants"`
}

// computeAggregates derives every appointment-driven view from one canonical
// record set and one filter snapshot. It never touches Favorites. The now
// argument anchors only the trailing monthly-revenue window; everything else
// is a pure function of its inputs.
func computeAggregates(records []AppointmentRecord, filter FilterContext, now time.Time) Aggregates {
	return Aggregates{
		DailyRevenue:    dailyRevenue(records, filter.DateRange),
		MonthlyRevenue:  monthlyRevenue(records, now),
		StatusBreakdown: statusBreakdown(records),
		TopDishes:       topDishes(records),
		TopRooms:        topRooms(records, filter.RestaurantFilter),
		Restaurants:     restaurantNames(records),
	}
}

// dailyRevenue sums totalPrice per calendar day over the inclusive range,
// emitting a contiguous day sequence so days without data chart as zero.
// Records without a parseable timestamp or an absent price contribute nothing.
func dailyRevenue(records []AppointmentRecord, dr DateRange) Series {
	byDay := make(map[string]float64)
	for _, rec := range records {
		if rec.DateTime == nil || rec.TotalPrice == nil {
			continue
		}
		byDay[rec.DateTime.Format("02/01/2006")] += *rec.TotalPrice
	}

	start := truncateToDay(dr.Start)
	end := truncateToDay(dr.End)
	if end.Before(start) {
		return placeholderSeries()
	}

	series := Series{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		series.Labels = append(series.Labels, day.Format("02/01"))
		value := byDay[day.Format("02/01/2006")]
		series.Values = append(series.Values, value)
		if value > series.MaxValue {
			series.MaxValue = value
		}
	}
	if series.MaxValue <= 0 {
		series.MaxValue = 1
	}
	return series
}

// monthlyRevenue is a fixed trailing window of the 6 most recent calendar
// months ending with now's month. It deliberately ignores the committed date
// range; see DESIGN.md.
func monthlyRevenue(records []AppointmentRecord, now time.Time) Series {
	byMonth := make(map[string]float64)
	for _, rec := range records {
		if rec.DateTime == nil || rec.TotalPrice == nil {
			continue
		}
		byMonth[rec.DateTime.Format("01/2006")] += *rec.TotalPrice
	}

	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	series := Series{}
	for i := 5; i >= 0; i-- {
		month := anchor.AddDate(0, -i, 0)
		series.Labels = append(series.Labels, month.Format("01/06"))
		value := byMonth[month.Format("01/2006")]
		series.Values = append(series.Values, value)
		if value > series.MaxValue {
			series.MaxValue = value
		}
	}
	if series.MaxValue <= 0 {
		series.MaxValue = 1
	}
	return series
}

// statusBreakdown counts records per observed status, including records whose
// timestamp could not be parsed. Output is ordered by the fixed status order
// for determinism.
func statusBreakdown(records []AppointmentRecord) []StatusSlice {
	counts := make(map[Status]int)
	for _, rec := range records {
		counts[rec.Status]++
	}

	ordered := []Status{
		StatusNotReceivedRoom,
		StatusReceivedRoom,
		StatusNotReceivedGoods,
		StatusReceivedGoods,
		StatusUnspecified,
	}
	out := make([]StatusSlice, 0, len(counts))
	for _, status := range ordered {
		if count, ok := counts[status]; ok {
			out = append(out, StatusSlice{Status: status, Count: count, Color: StatusColor(status)})
		}
	}
	return out
}

type dishOccurrence struct {
	name     string
	quantity int
}

func topDishes(records []AppointmentRecord) Series {
	var occurrences []dishOccurrence
	for _, rec := range records {
		for _, item := range rec.OtherItems {
			occurrences = append(occurrences, dishOccurrence{name: item.Name, quantity: item.Quantity})
		}
	}
	return rank(occurrences,
		func(o dishOccurrence) string { return o.name },
		func(o dishOccurrence) float64 {
			if o.quantity <= 0 {
				return 1
			}
			return float64(o.quantity)
		},
		topLimit)
}

func topRooms(records []AppointmentRecord, restaurantFilter string) Series {
	var items []TableItem
	for _, rec := range records {
		for _, item := range rec.TableItems {
			if restaurantFilter != "" && restaurantFilter != AllRestaurants &&
				item.RestaurantName != restaurantFilter {
				continue
			}
			items = append(items, item)
		}
	}
	return rank(items,
		func(item TableItem) string { return item.Name },
		func(TableItem) float64 { return 1 },
		topLimit)
}

// restaurantNames lists the distinct restaurant names observed across table
// items, sorted, for the selector the rendering layer shows.
func restaurantNames(records []AppointmentRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		for _, item := range rec.TableItems {
			if item.RestaurantName == "" {
				continue
			}
			if _, ok := seen[item.RestaurantName]; ok {
				continue
			}
			seen[item.RestaurantName] = struct{}{}
			out = append(out, item.RestaurantName)
		}
	}
	sort.Strings(out)
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func (dr DateRange) validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return fmt.Errorf("date range bounds are required")
	}
	if truncateToDay(dr.End).Before(truncateToDay(dr.Start)) {
		return fmt.Errorf("date range start must not be after end")
	}
	return nil
}
