package handlers

import (
	"testing"
	"time"
)

func TestParseDateParam(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, got time.Time)
	}{
		{
			name:  "rfc3339",
			input: "2026-02-10T08:30:00Z",
			check: func(t *testing.T, got time.Time) {
				if got.Hour() != 8 || got.Minute() != 30 {
					t.Fatalf("unexpected time: %v", got)
				}
			},
		},
		{
			name:  "date only",
			input: "2026-02-10",
			check: func(t *testing.T, got time.Time) {
				if got.Year() != 2026 || got.Month() != time.February || got.Day() != 10 {
					t.Fatalf("unexpected date: %v", got)
				}
				if got.Hour() != 0 {
					t.Fatalf("date-only input should be midnight, got %v", got)
				}
			},
		},
		{name: "empty", input: "", wantErr: true},
		{name: "blank", input: "   ", wantErr: true},
		{name: "garbage", input: "next tuesday", wantErr: true},
		{name: "wrong order", input: "10/02/2026", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseDateParam(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.check != nil {
				tc.check(t, got)
			}
		})
	}
}

func TestRequiredString(t *testing.T) {
	fields := map[string]any{
		"name":  "Pho Garden",
		"blank": "  ",
		"num":   42,
	}

	if got, err := requiredString(fields, "name"); err != nil || got != "Pho Garden" {
		t.Fatalf("requiredString(name) = %q, %v", got, err)
	}
	for _, key := range []string{"blank", "num", "missing"} {
		if _, err := requiredString(fields, key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestAppointmentStatusValidation(t *testing.T) {
	for _, status := range []string{"NotReceivedRoom", "ReceivedRoom", "NotReceivedGoods", "ReceivedGoods"} {
		if !appointmentStatuses[status] {
			t.Fatalf("status %q should be accepted", status)
		}
	}
	for _, status := range []string{"", "Unspecified", "received_goods", "Done"} {
		if appointmentStatuses[status] {
			t.Fatalf("status %q should be rejected", status)
		}
	}
}
