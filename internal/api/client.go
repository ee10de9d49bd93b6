package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetcher is the read-only surface the sync pipelines consume. Implemented by
// *Client; fakes implement it in tests.
type Fetcher interface {
	FetchAppointments(ctx context.Context) ([]Appointment, error)
	FetchProducts(ctx context.Context) ([]Product, error)
	FetchStaff(ctx context.Context, query StaffQuery) ([]Staff, error)
	FetchCalendarEvents(ctx context.Context) ([]CalendarEvent, error)
	FetchHolidays(ctx context.Context) ([]Holiday, error)
	FetchDashboardStats(ctx context.Context) (*DashboardStats, error)
	FetchTodayStats(ctx context.Context) (*TodayStats, error)
	FetchAnalytics(ctx context.Context) (*Analytics, error)
}

var _ Fetcher = (*Client)(nil)

// Client talks to the Pawfessional desktop API. Ordinary requests ride a
// shared http.Client with a fixed timeout; long-poll requests use a separate
// client with no fixed timeout, bounded per request by the hold window the
// caller asked the server for.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	stream    *http.Client
	userAgent string
}

const (
	defaultBasePath  = "/api/desktop"
	defaultUserAgent = "pawdesk/0.1"
	requestTimeout   = 10 * time.Second

	// streamGrace bounds a held-open poll past the server-side wait, so a
	// stalled connection still errors out.
	streamGrace = 5 * time.Second
)

// NewClient builds a Client for the given server URL. The desktop API base
// path is appended when the URL carries no path of its own.
func NewClient(serverURL string) (*Client, error) {
	base, err := parseBaseURL(serverURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		stream:    &http.Client{},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchAppointments retrieves every appointment visible to the desktop app.
func (c *Client) FetchAppointments(ctx context.Context) ([]Appointment, error) {
	var payload []Appointment
	if err := c.get(ctx, "/appointments/all", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchProducts retrieves the full product list.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	var payload []Product
	if err := c.get(ctx, "/products", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// StaffQuery narrows the staff listing server-side.
type StaffQuery struct {
	Search string
	Status string // "active", "inactive", or "all"
}

// FetchStaff retrieves the staff roster matching the query.
func (c *Client) FetchStaff(ctx context.Context, query StaffQuery) ([]Staff, error) {
	values := url.Values{}
	if s := strings.TrimSpace(query.Search); s != "" {
		values.Set("search", s)
	}
	status := strings.TrimSpace(query.Status)
	if status == "" {
		status = "active"
	}
	values.Set("status", status)
	rel := &url.URL{Path: "/staff", RawQuery: values.Encode()}
	var payload []Staff
	if err := c.do(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchCalendarEvents retrieves clinic calendar events.
func (c *Client) FetchCalendarEvents(ctx context.Context) ([]CalendarEvent, error) {
	var payload []CalendarEvent
	if err := c.get(ctx, "/events", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchHolidays retrieves the holiday list.
func (c *Client) FetchHolidays(ctx context.Context) ([]Holiday, error) {
	var payload []Holiday
	if err := c.get(ctx, "/holidays", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchDashboardStats retrieves the dashboard counter block.
func (c *Client) FetchDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var payload DashboardStats
	if err := c.get(ctx, "/dashboard-stats", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchTodayStats retrieves today's booked/approved/completed counters.
func (c *Client) FetchTodayStats(ctx context.Context) (*TodayStats, error) {
	var payload TodayStats
	if err := c.get(ctx, "/analytics/today", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchAnalytics retrieves the full analytics bundle in one pass.
func (c *Client) FetchAnalytics(ctx context.Context) (*Analytics, error) {
	var out Analytics
	if err := c.get(ctx, "/analytics/today", &out.Today); err != nil {
		return nil, err
	}
	if err := c.get(ctx, "/analytics/records", &out.Records); err != nil {
		return nil, err
	}
	if err := c.get(ctx, "/analytics/recent-cancellations", &out.Cancellations); err != nil {
		return nil, err
	}
	if err := c.get(ctx, "/analytics/monthly-productivity", &out.Monthly); err != nil {
		return nil, err
	}
	if err := c.get(ctx, "/analytics/daily-appointments", &out.Daily); err != nil {
		return nil, err
	}
	if err := c.get(ctx, "/analytics/status-distribution", &out.Distribution); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchClients retrieves the client list for walk-in entry.
func (c *Client) FetchClients(ctx context.Context) ([]User, error) {
	var payload []User
	if err := c.get(ctx, "/users/list", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchPets retrieves the pets belonging to one client.
func (c *Client) FetchPets(ctx context.Context, userID int64) ([]Pet, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("user id required")
	}
	var payload []Pet
	if err := c.get(ctx, "/pets/list/"+strconv.FormatInt(userID, 10), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// UpdateAppointmentStatus patches one appointment's status.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, id int64, status Status) error {
	if id <= 0 {
		return fmt.Errorf("appointment id required")
	}
	body := map[string]string{"status": string(status)}
	rel := &url.URL{Path: fmt.Sprintf("/appointments/%d/status", id)}
	return c.do(ctx, http.MethodPatch, rel, body, nil)
}

// RescheduleRequest carries a conflict-resolution reschedule.
type RescheduleRequest struct {
	Date  string `json:"appointment_date"`
	Time  string `json:"appointment_time"`
	Notes string `json:"admin_notes"`
}

// Validate checks the request before it is issued.
func (r RescheduleRequest) Validate() error {
	if strings.TrimSpace(r.Date) == "" || strings.TrimSpace(r.Time) == "" {
		return fmt.Errorf("reschedule requires a date and time")
	}
	return nil
}

// RescheduleAppointment moves one appointment to a new date and time.
func (c *Client) RescheduleAppointment(ctx context.Context, id int64, req RescheduleRequest) error {
	if id <= 0 {
		return fmt.Errorf("appointment id required")
	}
	if err := req.Validate(); err != nil {
		return err
	}
	rel := &url.URL{Path: fmt.Sprintf("/appointments/%d/reschedule", id)}
	return c.do(ctx, http.MethodPatch, rel, req, nil)
}

// ConfirmVisit marks an approved appointment's client as arrived, completing
// the visit.
func (c *Client) ConfirmVisit(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("appointment id required")
	}
	rel := &url.URL{Path: fmt.Sprintf("/appointments/%d/confirm-visit", id)}
	return c.do(ctx, http.MethodPost, rel, nil, nil)
}

// WalkInRequest logs an unscheduled visit, optionally booking a follow-up.
type WalkInRequest struct {
	UserID          int64    `json:"userId,string"`
	PetID           int64    `json:"petId,string"`
	TodayServices   []string `json:"todayServices"`
	FollowUpService string   `json:"followUpService"`
	FollowUpDate    string   `json:"followUpDate"`
	FollowUpTime    string   `json:"followUpTime"`
	FollowUpNotes   string   `json:"followUpNotes"`
}

// ScheduleFollowUp reports whether any follow-up field was supplied.
func (r WalkInRequest) ScheduleFollowUp() bool {
	return r.FollowUpService != "" || r.FollowUpDate != "" || r.FollowUpTime != ""
}

// Validate checks the walk-in payload before it is issued. A client, a pet,
// and at least one service are required; when a follow-up is being scheduled
// it needs a service, date, and time of its own.
func (r WalkInRequest) Validate() error {
	if r.UserID <= 0 || r.PetID <= 0 || len(r.TodayServices) == 0 {
		return fmt.Errorf("walk-in requires a client, a pet, and at least one service")
	}
	if r.ScheduleFollowUp() {
		if r.FollowUpService == "" || r.FollowUpDate == "" || r.FollowUpTime == "" {
			return fmt.Errorf("follow-up requires a service, date, and time")
		}
	}
	return nil
}

// LogWalkIn records a walk-in visit.
func (c *Client) LogWalkIn(ctx context.Context, req WalkInRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	rel := &url.URL{Path: "/log-walk-in"}
	return c.do(ctx, http.MethodPost, rel, req, nil)
}

// FollowUpRequest books a follow-up appointment for a completed visit.
type FollowUpRequest struct {
	UserID   int64    `json:"user_id"`
	PetID    int64    `json:"pet_id"`
	Services []string `json:"services"`
	Date     string   `json:"appointment_date"`
	Time     string   `json:"appointment_time"`
	Notes    string   `json:"notes"`
}

// Validate checks the follow-up payload before it is issued.
func (r FollowUpRequest) Validate() error {
	if r.UserID <= 0 || r.PetID <= 0 {
		return fmt.Errorf("follow-up requires a client and a pet")
	}
	if len(r.Services) == 0 || strings.TrimSpace(r.Services[0]) == "" {
		return fmt.Errorf("follow-up requires a service")
	}
	if strings.TrimSpace(r.Date) == "" || strings.TrimSpace(r.Time) == "" {
		return fmt.Errorf("follow-up requires a date and time")
	}
	return nil
}

// BookFollowUp creates a follow-up appointment.
func (c *Client) BookFollowUp(ctx context.Context, req FollowUpRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	rel := &url.URL{Path: "/appointments"}
	return c.do(ctx, http.MethodPost, rel, req, nil)
}

// ProductRequest creates or updates a product. The server accepts product
// writes as multipart form data so an image part can ride along; pawdesk
// sends the text fields only.
type ProductRequest struct {
	Name        string
	Brand       string
	Category    string
	PetType     string
	LifeStage   string
	Description string
	Price       float64
	Discount    float64
	Stock       int
}

// Validate checks the product payload before it is issued.
func (r ProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Brand) == "" {
		return fmt.Errorf("product requires a name and brand")
	}
	if strings.TrimSpace(r.Category) == "" || strings.TrimSpace(r.PetType) == "" {
		return fmt.Errorf("product requires a category and pet type")
	}
	if r.Price <= 0 {
		return fmt.Errorf("product price must be positive")
	}
	if r.Discount < 0 || r.Discount >= 100 {
		return fmt.Errorf("product discount must be between 0 and 100")
	}
	if r.Stock < 0 {
		return fmt.Errorf("product stock cannot be negative")
	}
	return nil
}

func (r ProductRequest) formFields() [][2]string {
	return [][2]string{
		{"pname", strings.TrimSpace(r.Name)},
		{"brand", strings.TrimSpace(r.Brand)},
		{"category", strings.TrimSpace(r.Category)},
		{"petType", strings.TrimSpace(r.PetType)},
		{"life_stage", strings.TrimSpace(r.LifeStage)},
		{"description", strings.TrimSpace(r.Description)},
		{"price", strconv.FormatFloat(r.Price, 'f', 2, 64)},
		{"disc", strconv.FormatFloat(r.Discount, 'f', -1, 64)},
		{"stock", strconv.Itoa(r.Stock)},
	}
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, req ProductRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	rel := &url.URL{Path: "/add-product"}
	return c.doForm(ctx, http.MethodPost, rel, req.formFields())
}

// UpdateProduct replaces one product's details.
func (c *Client) UpdateProduct(ctx context.Context, id int64, req ProductRequest) error {
	if id <= 0 {
		return fmt.Errorf("product id required")
	}
	if err := req.Validate(); err != nil {
		return err
	}
	rel := &url.URL{Path: "/products/" + strconv.FormatInt(id, 10)}
	return c.doForm(ctx, http.MethodPatch, rel, req.formFields())
}

// DeleteProducts removes the identified products.
func (c *Client) DeleteProducts(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("no product ids given")
	}
	body := map[string][]int64{"ids": ids}
	rel := &url.URL{Path: "/delete-products"}
	return c.do(ctx, http.MethodDelete, rel, body, nil)
}

// DeleteStaff removes one staff member.
func (c *Client) DeleteStaff(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("staff id required")
	}
	rel := &url.URL{Path: "/staff/" + strconv.FormatInt(id, 10)}
	return c.do(ctx, http.MethodDelete, rel, nil, nil)
}

// StaffRequest registers a new staff account. Field names follow the
// server's signup form.
type StaffRequest struct {
	FirstName     string `json:"staffFname"`
	LastName      string `json:"staffLname"`
	MiddleInitial string `json:"staffMi"`
	Email         string `json:"staffEmail"`
	Phone         string `json:"phoneNumber"`
	Role          string `json:"staffRole"`
	Address       string `json:"address"`
	Username      string `json:"staffUser"`
	Password      string `json:"staffPass"`
}

// Validate checks the signup payload before it is issued. Password rules
// match the server's: 8+ characters with an uppercase letter, a lowercase
// letter, and a digit.
func (r StaffRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return fmt.Errorf("staff requires a first and last name")
	}
	email := strings.TrimSpace(r.Email)
	if at := strings.Index(email, "@"); at <= 0 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("staff requires a valid email")
	}
	if len(strings.TrimSpace(r.Phone)) < 10 {
		return fmt.Errorf("staff requires a 10-digit phone number")
	}
	if strings.TrimSpace(r.Role) == "" {
		return fmt.Errorf("staff requires a role")
	}
	if len(strings.TrimSpace(r.Username)) < 4 {
		return fmt.Errorf("staff username must be at least 4 characters")
	}
	if !passwordStrong(r.Password) {
		return fmt.Errorf("staff password must be 8+ characters with uppercase, lowercase, and a digit")
	}
	return nil
}

func passwordStrong(pass string) bool {
	if len(pass) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range pass {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}

// AddStaff registers a new staff account.
func (c *Client) AddStaff(ctx context.Context, req StaffRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	rel := &url.URL{Path: "/staff"}
	return c.do(ctx, http.MethodPost, rel, req, nil)
}

// CalendarEventRequest creates a calendar event.
type CalendarEventRequest struct {
	Title   string `json:"title"`
	Start   string `json:"start"`
	End     string `json:"end"`
	PetType string `json:"pet"`
	Notes   string `json:"notes"`
}

// Validate checks the event payload before it is issued.
func (r CalendarEventRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("event requires a title")
	}
	if strings.TrimSpace(r.Start) == "" || strings.TrimSpace(r.End) == "" {
		return fmt.Errorf("event requires a start and end")
	}
	return nil
}

// CreateCalendarEvent adds a clinic calendar event.
func (c *Client) CreateCalendarEvent(ctx context.Context, req CalendarEventRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	rel := &url.URL{Path: "/events"}
	return c.do(ctx, http.MethodPost, rel, req, nil)
}

// DeleteCalendarEvent removes one calendar event.
func (c *Client) DeleteCalendarEvent(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("event id required")
	}
	rel := &url.URL{Path: "/events/" + strconv.FormatInt(id, 10)}
	return c.do(ctx, http.MethodDelete, rel, nil, nil)
}

// DeleteAnalyticsRecord removes one historical analytics record.
func (c *Client) DeleteAnalyticsRecord(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("record id required")
	}
	rel := &url.URL{Path: "/analytics/records/" + strconv.FormatInt(id, 10)}
	return c.do(ctx, http.MethodDelete, rel, nil, nil)
}

// Logout ends the server-side session. Local teardown proceeds regardless of
// the outcome, so callers may ignore the error.
func (c *Client) Logout(ctx context.Context) error {
	rel := &url.URL{Path: "/logout"}
	return c.do(ctx, http.MethodPost, rel, nil, nil)
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	rel := &url.URL{Path: path}
	return c.do(ctx, http.MethodGet, rel, nil, dest)
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	return c.doWith(ctx, c.http, method, rel, body, dest)
}

func (c *Client) doWith(ctx context.Context, hc *http.Client, method string, rel *url.URL, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel.Path = c.baseURL.Path + rel.Path
	reqURL := c.baseURL.ResolveReference(rel)

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doForm(ctx context.Context, method string, rel *url.URL, fields [][2]string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return fmt.Errorf("encode form field %s: %w", field[0], err)
		}
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("finalize form: %w", err)
	}

	rel.Path = c.baseURL.Path + rel.Path
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	return nil
}

func parseBaseURL(serverURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(serverURL)
	if trimmed == "" {
		return nil, fmt.Errorf("server url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse server url %q: %w", serverURL, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	if u.Path == "" {
		u.Path = defaultBasePath
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
