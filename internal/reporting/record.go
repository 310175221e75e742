package reporting

import (
	"strconv"
	"strings"
	"time"

	"savora-admin-service/internal/docstore"
)

// Status is the booking lifecycle value carried on an appointment.
type Status string

const (
	StatusNotReceivedRoom  Status = "NotReceivedRoom"
	StatusReceivedRoom     Status = "ReceivedRoom"
	StatusNotReceivedGoods Status = "NotReceivedGoods"
	StatusReceivedGoods    Status = "ReceivedGoods"
	StatusUnspecified      Status = "Unspecified"
)

// statusColors feeds the status breakdown chart.
var statusColors = map[Status]string{
	StatusNotReceivedRoom:  "#FFBB28",
	StatusReceivedRoom:     "#00C49F",
	StatusNotReceivedGoods: "#999999",
	StatusReceivedGoods:    "#666666",
	StatusUnspecified:      "#CCCCCC",
}

// StatusColor returns the fixed display color for a status.
func StatusColor(s Status) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return statusColors[StatusUnspecified]
}

// TableItem is one booked room/table line inside an appointment.
type TableItem struct {
	Name           string  `json:"name"`
	RestaurantName string  `json:"restaurantName"`
	Date           string  `json:"date"`
	TimeSlot       string  `json:"timeSlot"`
	Price          float64 `json:"price"`
}

// OtherItem is one ordered dish line inside an appointment.
type OtherItem struct {
	Name              string   `json:"name"`
	Quantity          int      `json:"quantity"`
	ProductTotalPrice float64  `json:"productTotalPrice"`
	DiscountAmount    float64  `json:"discountAmount"`
	Options           []string `json:"options"`
}

// AppointmentRecord is the canonical shape every aggregate reads. Pointer
// fields distinguish "absent" from "zero": a nil TotalPrice is excluded from
// revenue sums, a nil DateTime is excluded from date-bucketed aggregates.
type AppointmentRecord struct {
	ID         string
	DateTime   *time.Time
	TotalPrice *float64
	Status     Status
	TableItems []TableItem
	OtherItems []OtherItem
}

// FavoriteEntry is one (user, product) favorite membership fact.
type FavoriteEntry struct {
	CategoryID string
	ProductID  string
}

// CanonicalizeAppointments maps raw store documents into canonical records,
// applying every default in one place so the aggregates never re-derive them.
func CanonicalizeAppointments(docs []docstore.Document) []AppointmentRecord {
	out := make([]AppointmentRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, canonicalizeAppointment(doc))
	}
	return out
}

func canonicalizeAppointment(doc docstore.Document) AppointmentRecord {
	rec := AppointmentRecord{
		ID:         doc.ID,
		Status:     parseStatus(doc.Fields["status"]),
		DateTime:   parseTimestamp(doc.Fields["dateTime"]),
		TotalPrice: parseAmount(doc.Fields["totalPrice"]),
		TableItems: parseTableItems(doc.Fields["tableItems"]),
		OtherItems: parseOtherItems(doc.Fields["otherItems"]),
	}
	return rec
}

// CanonicalizeFavorites flattens each user document's favorites list into
// (categoryId, productId) membership facts.
func CanonicalizeFavorites(docs []docstore.Document) []FavoriteEntry {
	var out []FavoriteEntry
	for _, doc := range docs {
		list, ok := doc.Fields["favoriteProducts"].([]any)
		if !ok {
			continue
		}
		for _, raw := range list {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			categoryID := asString(entry["categoryId"])
			productID := asString(entry["productId"])
			if categoryID == "" || productID == "" {
				continue
			}
			out = append(out, FavoriteEntry{CategoryID: categoryID, ProductID: productID})
		}
	}
	return out
}

func parseStatus(value any) Status {
	s, ok := value.(string)
	if !ok {
		return StatusUnspecified
	}
	switch Status(strings.TrimSpace(s)) {
	case StatusNotReceivedRoom:
		return StatusNotReceivedRoom
	case StatusReceivedRoom:
		return StatusReceivedRoom
	case StatusNotReceivedGoods:
		return StatusNotReceivedGoods
	case StatusReceivedGoods:
		return StatusReceivedGoods
	default:
		return StatusUnspecified
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(value any) *time.Time {
	switch v := value.(type) {
	case time.Time:
		return &v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
				return &parsed
			}
		}
		return nil
	case float64:
		return timeFromEpoch(int64(v))
	case int64:
		return timeFromEpoch(v)
	case int:
		return timeFromEpoch(int64(v))
	default:
		return nil
	}
}

// timeFromEpoch treats large magnitudes as milliseconds, the rest as seconds.
func timeFromEpoch(v int64) *time.Time {
	if v <= 0 {
		return nil
	}
	var t time.Time
	if v > 1e12 {
		t = time.UnixMilli(v)
	} else {
		t = time.Unix(v, 0)
	}
	return &t
}

func parseAmount(value any) *float64 {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return nil
		}
		return &v
	case int:
		f := float64(v)
		if f < 0 {
			return nil
		}
		return &f
	case int64:
		f := float64(v)
		if f < 0 {
			return nil
		}
		return &f
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || parsed < 0 {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

func parseTableItems(value any) []TableItem {
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]TableItem, 0, len(list))
	for _, raw := range list {
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, TableItem{
			Name:           asString(fields["name"]),
			RestaurantName: asString(fields["restaurantName"]),
			Date:           asString(fields["date"]),
			TimeSlot:       asString(fields["timeSlot"]),
			Price:          asFloat(fields["price"]),
		})
	}
	return out
}

func parseOtherItems(value any) []OtherItem {
	list, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]OtherItem, 0, len(list))
	for _, raw := range list {
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		item := OtherItem{
			Name:              asString(fields["name"]),
			Quantity:          int(asFloat(fields["quantity"])),
			ProductTotalPrice: asFloat(fields["ProductTotalPrice"]),
			DiscountAmount:    asFloat(fields["discountAmount"]),
		}
		if options, ok := fields["options"].([]any); ok {
			for _, opt := range options {
				if s := asString(opt); s != "" {
					item.Options = append(item.Options, s)
				}
			}
		}
		out = append(out, item)
	}
	return out
}

func asString(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

func asFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
