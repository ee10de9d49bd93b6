package api

import "testing"

func TestCanonicalStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{"Pending", StatusPending},
		{"pending", StatusPending},
		{"  APPROVED ", StatusApproved},
		{"Completed", StatusCompleted},
		{"no show", StatusNoShow},
		{"Cancelled", StatusCancelled},
		{"Rejected", StatusCancelled},
		{"", StatusCancelled},
	}
	for _, tc := range cases {
		if got := CanonicalStatus(tc.raw); got != tc.want {
			t.Errorf("CanonicalStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestAppointmentDateKey(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2024-06-01T00:00:00.000Z", "2024-06-01"},
		{"2024-06-01T18:30:00Z", "2024-06-01"},
		{"2024-06-01", "2024-06-01"},
		{"", ""},
	}
	for _, tc := range cases {
		a := Appointment{Date: tc.date}
		if got := a.DateKey(); got != tc.want {
			t.Errorf("DateKey(%q) = %q, want %q", tc.date, got, tc.want)
		}
	}
}

func TestAppointmentIsPending(t *testing.T) {
	if !(Appointment{Status: "pending"}).IsPending() {
		t.Errorf("lowercase pending not recognized")
	}
	if (Appointment{Status: "Approved"}).IsPending() {
		t.Errorf("approved reported as pending")
	}
}

func TestProductDiscountedPrice(t *testing.T) {
	p := Product{Price: 200, Discount: 25}
	if got := p.DiscountedPrice(); got != 150 {
		t.Errorf("DiscountedPrice = %v, want 150", got)
	}
	p = Product{Price: 200}
	if got := p.DiscountedPrice(); got != 200 {
		t.Errorf("DiscountedPrice with no discount = %v, want 200", got)
	}
}

func TestProductBand(t *testing.T) {
	stock := func(n int) *int { return &n }
	cases := []struct {
		name  string
		stock *int
		want  StockBand
	}{
		{"missing", nil, StockUnknown},
		{"zero", stock(0), StockOut},
		{"negative", stock(-2), StockOut},
		{"boundary low", stock(10), StockLow},
		{"plenty", stock(11), StockIn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{Stock: tc.stock}
			if got := p.Band(); got != tc.want {
				t.Errorf("Band() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParsedDate(t *testing.T) {
	if got := ParsedDate("2024-06-01T10:30:00Z"); got.IsZero() {
		t.Errorf("RFC3339 timestamp parsed as zero time")
	}
	if got := ParsedDate("2024-06-01"); got.IsZero() {
		t.Errorf("plain date parsed as zero time")
	}
	if got := ParsedDate("nonsense"); !got.IsZero() {
		t.Errorf("ParsedDate(nonsense) = %v, want zero time", got)
	}
}
