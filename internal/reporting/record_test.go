package reporting

import (
	"testing"
	"time"

	"savora-admin-service/internal/docstore"
)

func TestCanonicalizeAppointmentDefaults(t *testing.T) {
	docs := []docstore.Document{
		{ID: "a1", Fields: map[string]any{}},
	}
	records := CanonicalizeAppointments(docs)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.Status != StatusUnspecified {
		t.Fatalf("expected Unspecified status, got %s", rec.Status)
	}
	if rec.TotalPrice != nil {
		t.Fatalf("missing totalPrice must stay absent, got %v", *rec.TotalPrice)
	}
	if rec.DateTime != nil {
		t.Fatalf("missing dateTime must stay absent")
	}
	if len(rec.TableItems) != 0 || len(rec.OtherItems) != 0 {
		t.Fatalf("missing arrays must default to empty")
	}
}

func TestCanonicalizeAppointmentFields(t *testing.T) {
	docs := []docstore.Document{
		{ID: "a2", Fields: map[string]any{
			"status":     "ReceivedGoods",
			"dateTime":   "2026-03-15T18:30:00Z",
			"totalPrice": float64(250),
			"tableItems": []any{
				map[string]any{"name": "VIP 1", "restaurantName": "Riverside", "price": float64(50)},
			},
			"otherItems": []any{
				map[string]any{"name": "Pho", "quantity": float64(2), "options": []any{"extra herbs"}},
			},
		}},
	}
	rec := CanonicalizeAppointments(docs)[0]

	if rec.Status != StatusReceivedGoods {
		t.Fatalf("expected ReceivedGoods, got %s", rec.Status)
	}
	if rec.TotalPrice == nil || *rec.TotalPrice != 250 {
		t.Fatalf("expected totalPrice 250, got %v", rec.TotalPrice)
	}
	if rec.DateTime == nil || rec.DateTime.UTC() != time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC) {
		t.Fatalf("unexpected dateTime %v", rec.DateTime)
	}
	if len(rec.TableItems) != 1 || rec.TableItems[0].RestaurantName != "Riverside" {
		t.Fatalf("unexpected tableItems %+v", rec.TableItems)
	}
	if len(rec.OtherItems) != 1 || rec.OtherItems[0].Quantity != 2 || len(rec.OtherItems[0].Options) != 1 {
		t.Fatalf("unexpected otherItems %+v", rec.OtherItems)
	}
}

func TestCanonicalizeMalformedValues(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]any
	}{
		{name: "non-numeric price", fields: map[string]any{"totalPrice": "abc"}},
		{name: "negative price", fields: map[string]any{"totalPrice": float64(-5)}},
		{name: "garbage dateTime", fields: map[string]any{"dateTime": "not-a-date"}},
		{name: "unknown status", fields: map[string]any{"status": "Shipped"}},
		{name: "non-array items", fields: map[string]any{"tableItems": "oops", "otherItems": float64(3)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := CanonicalizeAppointments([]docstore.Document{{ID: "x", Fields: tc.fields}})[0]
			if rec.TotalPrice != nil && *rec.TotalPrice < 0 {
				t.Fatalf("negative price must be treated as absent")
			}
			if tc.name == "non-numeric price" && rec.TotalPrice != nil {
				t.Fatalf("non-numeric price must be treated as absent")
			}
			if tc.name == "garbage dateTime" && rec.DateTime != nil {
				t.Fatalf("unparseable dateTime must stay absent")
			}
			if tc.name == "unknown status" && rec.Status != StatusUnspecified {
				t.Fatalf("unknown status must map to Unspecified, got %s", rec.Status)
			}
			if len(rec.TableItems) != 0 && tc.name == "non-array items" {
				t.Fatalf("non-array tableItems must default to empty")
			}
		})
	}
}

func TestParseTimestampFormats(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "rfc3339", value: "2026-01-02T10:00:00Z", want: true},
		{name: "date only", value: "2026-01-02", want: true},
		{name: "space separated", value: "2026-01-02 10:00:00", want: true},
		{name: "epoch seconds", value: float64(1767349200), want: true},
		{name: "epoch millis", value: float64(1767349200000), want: true},
		{name: "zero epoch", value: float64(0), want: false},
		{name: "empty string", value: "", want: false},
		{name: "nil", value: nil, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseTimestamp(tc.value)
			if (got != nil) != tc.want {
				t.Fatalf("parseTimestamp(%v) presence = %v, want %v", tc.value, got != nil, tc.want)
			}
		})
	}

	seconds := parseTimestamp(float64(1767349200))
	millis := parseTimestamp(float64(1767349200000))
	if !seconds.Equal(*millis) {
		t.Fatalf("seconds and millis epochs must agree: %v vs %v", seconds, millis)
	}
}

func TestCanonicalizeFavorites(t *testing.T) {
	docs := []docstore.Document{
		{ID: "u1", Fields: map[string]any{
			"favoriteProducts": []any{
				map[string]any{"categoryId": "c1", "productId": "p1"},
				map[string]any{"categoryId": "c1", "productId": "p2"},
				map[string]any{"categoryId": "", "productId": "p3"},
				"garbage",
			},
		}},
		{ID: "u2", Fields: map[string]any{}},
	}

	entries := CanonicalizeFavorites(docs)
	if len(entries) != 2 {
		t.Fatalf("expected 2 valid entries, got %d", len(entries))
	}
	if entries[0].CategoryID != "c1" || entries[0].ProductID != "p1" {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
}
