package api

import (
	"strings"
	"time"
)

// Status is the canonical lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
	StatusNoShow    Status = "No Show"
)

// CanonicalStatus maps a raw wire status to its canonical form. Matching is
// case-insensitive; anything unrecognized (the server has emitted "Rejected"
// and friends over time) is folded into Cancelled for display.
func CanonicalStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return StatusPending
	case "approved":
		return StatusApproved
	case "completed":
		return StatusCompleted
	case "cancelled":
		return StatusCancelled
	case "no show":
		return StatusNoShow
	default:
		return StatusCancelled
	}
}

// Appointment describes a booking in transport-friendly form.
type Appointment struct {
	ID         int64    `json:"appointment_id"`
	UserID     int64    `json:"user_id"`
	PetID      int64    `json:"pet_id"`
	ClientName string   `json:"client_name"`
	PetName    string   `json:"pet_name"`
	Services   []string `json:"services"`
	Date       string   `json:"appointment_date"`
	Time       string   `json:"appointment_time"`
	Status     string   `json:"status"`
	Notes      string   `json:"notes"`
}

// DateKey returns the calendar-date portion of the appointment date. The
// server sends ISO timestamps; comparing the raw date substring avoids
// timezone drift between sessions.
func (a Appointment) DateKey() string {
	if idx := strings.IndexByte(a.Date, 'T'); idx >= 0 {
		return a.Date[:idx]
	}
	return a.Date
}

// IsPending reports whether the appointment awaits staff approval.
func (a Appointment) IsPending() bool {
	return CanonicalStatus(a.Status) == StatusPending
}

// Product describes a retail product.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"pname"`
	Brand       string  `json:"brand"`
	Category    string  `json:"category"`
	PetType     string  `json:"petType"`
	LifeStage   string  `json:"life_stage"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"disc"`
	Stock       *int    `json:"stock"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image"`
	CreatedAt   string  `json:"created_at"`
}

// DiscountedPrice applies the discount percentage to the list price.
func (p Product) DiscountedPrice() float64 {
	if p.Discount <= 0 {
		return p.Price
	}
	return p.Price * (1 - p.Discount/100)
}

// StockBand classifies stock levels for display.
type StockBand int

const (
	StockUnknown StockBand = iota
	StockOut
	StockLow
	StockIn
)

// Band returns the display classification of the product's stock level.
func (p Product) Band() StockBand {
	if p.Stock == nil {
		return StockUnknown
	}
	switch {
	case *p.Stock <= 0:
		return StockOut
	case *p.Stock <= 10:
		return StockLow
	default:
		return StockIn
	}
}

// Staff describes a staff member as persisted server-side. Status is the
// database status ("active" or not); transient online state is derived
// separately from the presence push.
type Staff struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Contact   string `json:"contact"`
	Status    string `json:"status"`
	HiredDate string `json:"hired_date"`
}

// CalendarEvent describes a clinic calendar entry.
type CalendarEvent struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Start   string `json:"start"`
	End     string `json:"end"`
	PetType string `json:"pet"`
	Notes   string `json:"notes"`
}

// Holiday describes a date-only holiday entry.
type Holiday struct {
	Title string `json:"title"`
	Start string `json:"start"`
}

// DashboardStats mirrors GET /dashboard-stats.
type DashboardStats struct {
	TotalProducts     int `json:"totalProducts"`
	TotalUsers        int `json:"totalUsers"`
	TotalStaff        int `json:"totalStaff"`
	TotalPets         int `json:"totalPets"`
	AppointmentsToday int `json:"appointmentsToday"`
}

// TodayStats mirrors GET /analytics/today.
type TodayStats struct {
	TotalBooked int `json:"total_booked"`
	Approved    int `json:"approved"`
	Completed   int `json:"completed"`
}

// AnalyticsRecord is one historical daily roll-up.
type AnalyticsRecord struct {
	ID             int64  `json:"id"`
	RecordDate     string `json:"record_date"`
	TotalBooked    int    `json:"total_booked"`
	TotalApproved  int    `json:"total_approved"`
	TotalCompleted int    `json:"total_completed"`
}

// Cancellation is one recently cancelled appointment.
type Cancellation struct {
	ClientName  string   `json:"client_name"`
	PetName     string   `json:"pet_name"`
	Services    []string `json:"services"`
	Date        string   `json:"appointment_date"`
	CancelledOn string   `json:"cancelled_on"`
}

// Series is a labelled numeric series (monthly productivity, daily counts).
type Series struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// StatusCount is one slice of the status-distribution breakdown.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Analytics bundles everything the analytics view needs.
type Analytics struct {
	Today         TodayStats
	Records       []AnalyticsRecord
	Cancellations []Cancellation
	Monthly       Series
	Daily         Series
	Distribution  []StatusCount
}

// User is a client (pet owner) as listed for walk-in entry.
type User struct {
	ID       int64  `json:"user_id"`
	FullName string `json:"fullname"`
}

// Pet is one of a client's pets.
type Pet struct {
	ID   int64  `json:"pet_id"`
	Name string `json:"pet_name"`
}

// ParsedDate parses a server date string into a time.Time when possible.
// Invalid or missing values return the zero time.
func ParsedDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
