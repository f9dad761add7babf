package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/cmd/booking_api/app/internal/services"
	"github.com/kedar94c/whatsapp-crm-backend/middlewares"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/booking"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/delivery"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/models"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/repositories"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/whatsapp"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	db       *gorm.DB
	router   *gin.Engine
	business *models.Business
	cut      *models.Service
}

// newFixture wires the real route table over sqlite, with a stub auth
// middleware standing in for the API-key lookup.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Business{},
		&models.Service{},
		&models.Combo{},
		&models.ComboService{},
		&models.Customer{},
		&models.Appointment{},
		&models.AppointmentService{},
		&models.AutomationRule{},
		&models.AutomationLog{},
		&models.Message{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	business, err := services.NewBusinessService(db).Register("Glow Salon", "+14155552671", "UTC", nil)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	cut, err := services.NewCatalogService(db).CreateService(business.ID, "Cut", 30, 25)
	if err != nil {
		t.Fatalf("CreateService: %v", err)
	}

	log := zap.NewNop()
	dispatcher := delivery.NewDispatcher(repositories.NewMessageRepository(db), whatsapp.NewLogSender(log), log)
	bookingSvc := booking.NewService(db, dispatcher, log)

	router := gin.New()
	api := router.Group("/api")
	authed := api.Group("")
	authed.Use(func(c *gin.Context) {
		c.Set("business", business)
		c.Next()
	})

	Catalog(authed, db, log)
	Customers(authed, db, dispatcher, log)
	Appointments(authed, bookingSvc, log, otel.Tracer("test"))

	limiter := middlewares.NewRateLimiter(rate.Limit(1000), 1000)
	Webhook(router, db, dispatcher, limiter, log)

	return &fixture{db: db, router: router, business: business, cut: cut}
}

func (f *fixture) doJSON(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Role", "owner")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) book(t *testing.T, phone, startsAt string) models.Appointment {
	t.Helper()
	w := f.doJSON(t, http.MethodPost, "/api/appointments", gin.H{
		"customer_phone": phone,
		"customer_name":  "Dana",
		"service_ids":    []string{f.cut.ID.String()},
		"starts_at":      startsAt,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("book: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var appt models.Appointment
	if err := json.Unmarshal(w.Body.Bytes(), &appt); err != nil {
		t.Fatalf("decode appointment: %v", err)
	}
	return appt
}

func TestBookEndpoint(t *testing.T) {
	f := newFixture(t)

	appt := f.book(t, "+14155552672", "2030-01-02T10:00")
	if appt.SlotMinutes != 600 {
		t.Errorf("Expected slot 600, got %d", appt.SlotMinutes)
	}
	if appt.DurationMinutes != 30 {
		t.Errorf("Expected duration 30, got %d", appt.DurationMinutes)
	}
	if appt.Status != models.AppointmentScheduled {
		t.Errorf("Expected scheduled, got %s", appt.Status)
	}

	// Capacity defaults to one appointment per slot.
	w := f.doJSON(t, http.MethodPost, "/api/appointments", gin.H{
		"customer_phone": "+14155552673",
		"service_ids":    []string{f.cut.ID.String()},
		"starts_at":      "2030-01-02T10:00",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for a full slot, got %d: %s", w.Code, w.Body.String())
	}
}

func TestBookValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name    string
		payload gin.H
	}{
		{"missing starts_at", gin.H{"customer_phone": "+14155552672", "service_ids": []string{f.cut.ID.String()}}},
		{"malformed service id", gin.H{"customer_phone": "+14155552672", "service_ids": []string{"nope"}, "starts_at": "2030-01-02T10:00"}},
		{"unknown service", gin.H{"customer_phone": "+14155552672", "service_ids": []string{"0b8856ad-132d-4a7d-b1f6-99cbd975f0ba"}, "starts_at": "2030-01-02T10:00"}},
		{"no services", gin.H{"customer_phone": "+14155552672", "starts_at": "2030-01-02T10:00"}},
		{"past time", gin.H{"customer_phone": "+14155552672", "service_ids": []string{f.cut.ID.String()}, "starts_at": "2020-01-02T10:00"}},
		{"bad phone", gin.H{"customer_phone": "911", "service_ids": []string{f.cut.ID.String()}, "starts_at": "2030-01-02T10:00"}},
	}
	for _, tc := range cases {
		w := f.doJSON(t, http.MethodPost, "/api/appointments", tc.payload)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d: %s", tc.name, w.Code, w.Body.String())
		}
	}
}

func TestRescheduleEndpoint(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "+14155552672", "2030-01-02T10:00")

	w := f.doJSON(t, http.MethodPut, "/api/appointments/"+appt.ID.String(), gin.H{"starts_at": "2030-01-03T14:30"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var moved models.Appointment
	if err := json.Unmarshal(w.Body.Bytes(), &moved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if moved.SlotMinutes != 870 {
		t.Errorf("Expected slot 870 after reschedule, got %d", moved.SlotMinutes)
	}

	// Moving onto an occupied slot conflicts.
	f.book(t, "+14155552673", "2030-01-05T09:00")
	w = f.doJSON(t, http.MethodPut, "/api/appointments/"+appt.ID.String(), gin.H{"starts_at": "2030-01-05T09:00"})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// Unknown appointment is a 404.
	w = f.doJSON(t, http.MethodPut, "/api/appointments/0b8856ad-132d-4a7d-b1f6-99cbd975f0ba", gin.H{"starts_at": "2030-01-03T15:00"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "+14155552672", "2030-01-02T10:00")
	path := "/api/appointments/" + appt.ID.String() + "/status"

	w := f.doJSON(t, http.MethodPatch, path, gin.H{"status": "banana"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown status, got %d", w.Code)
	}

	w = f.doJSON(t, http.MethodPatch, path, gin.H{"status": "completed"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var done models.Appointment
	if err := json.Unmarshal(w.Body.Bytes(), &done); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if done.Status != models.AppointmentCompleted {
		t.Errorf("Expected completed, got %s", done.Status)
	}

	// Transitions are only allowed out of scheduled.
	w = f.doJSON(t, http.MethodPatch, path, gin.H{"status": "no_show"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a second transition, got %d", w.Code)
	}
}

func TestCancelEndpoint(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, "+14155552672", "2030-01-02T11:00")

	w := f.doJSON(t, http.MethodDelete, "/api/appointments/"+appt.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = f.doJSON(t, http.MethodGet, "/api/appointments/"+appt.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var got models.Appointment
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != models.AppointmentCancelled {
		t.Errorf("Expected cancelled, got %s", got.Status)
	}
}

func TestUpcomingAndHistoryEndpoints(t *testing.T) {
	f := newFixture(t)
	f.book(t, "+14155552672", "2030-01-02T10:00")

	w := f.doJSON(t, http.MethodGet, "/api/appointments", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var upcoming []models.Appointment
	if err := json.Unmarshal(w.Body.Bytes(), &upcoming); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(upcoming) != 1 {
		t.Errorf("Expected 1 upcoming appointment, got %d", len(upcoming))
	}

	w = f.doJSON(t, http.MethodGet, "/api/appointments/history?limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var history []models.Appointment
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("Expected 1 history row, got %d", len(history))
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	f := newFixture(t)
	f.book(t, "+14155552672", "2030-01-02T10:00")

	w := f.doJSON(t, http.MethodGet, "/api/appointments/availability", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without params, got %d", w.Code)
	}

	w = f.doJSON(t, http.MethodGet, "/api/appointments/availability?date=2030-01-02&duration=30", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Date            string          `json:"date"`
		DurationMinutes int             `json:"duration_minutes"`
		Slots           map[string]bool `json:"slots"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Date != "2030-01-02" || resp.DurationMinutes != 30 {
		t.Errorf("Unexpected echo fields: %+v", resp)
	}
	if free, ok := resp.Slots["600"]; !ok || free {
		t.Errorf("Expected slot 600 to be taken, got free=%v present=%v", free, ok)
	}
	if free := resp.Slots["615"]; free {
		t.Error("Expected slot 615 to be blocked by the 10:00 booking")
	}
	if free := resp.Slots["630"]; !free {
		t.Error("Expected slot 630 to be free")
	}
}

func TestCatalogEndpoints(t *testing.T) {
	f := newFixture(t)

	// Mutations without the owner role are rejected.
	req := httptest.NewRequest(http.MethodPost, "/api/services", strings.NewReader(`{"name":"Color","duration_minutes":60}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 without owner role, got %d", w.Code)
	}

	w = f.doJSON(t, http.MethodPost, "/api/services", gin.H{"name": "Color", "duration_minutes": 60, "price": 80})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var color models.Service
	if err := json.Unmarshal(w.Body.Bytes(), &color); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = f.doJSON(t, http.MethodGet, "/api/services", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var list []models.Service
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 services, got %d", len(list))
	}

	w = f.doJSON(t, http.MethodDelete, "/api/services/"+color.ID.String(), nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", w.Code)
	}
}

func TestComboBookingEndToEnd(t *testing.T) {
	f := newFixture(t)

	w := f.doJSON(t, http.MethodPost, "/api/services", gin.H{"name": "Color", "duration_minutes": 60, "price": 80})
	if w.Code != http.StatusCreated {
		t.Fatalf("create service: %d: %s", w.Code, w.Body.String())
	}
	var color models.Service
	if err := json.Unmarshal(w.Body.Bytes(), &color); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = f.doJSON(t, http.MethodPost, "/api/combos", gin.H{
		"name":        "Cut + Color",
		"service_ids": []string{f.cut.ID.String(), color.ID.String()},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create combo: %d: %s", w.Code, w.Body.String())
	}
	var combo models.Combo
	if err := json.Unmarshal(w.Body.Bytes(), &combo); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = f.doJSON(t, http.MethodPost, "/api/appointments", gin.H{
		"customer_phone": "+14155552672",
		"combo_id":       combo.ID.String(),
		"starts_at":      "2030-01-02T10:00",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("book combo: %d: %s", w.Code, w.Body.String())
	}
	var appt models.Appointment
	if err := json.Unmarshal(w.Body.Bytes(), &appt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if appt.DurationMinutes != 90 {
		t.Errorf("Expected combo duration 90, got %d", appt.DurationMinutes)
	}
	if len(appt.Services) != 2 {
		t.Errorf("Expected 2 line items, got %d", len(appt.Services))
	}
}

func TestCustomerEndpoints(t *testing.T) {
	f := newFixture(t)
	customer, err := repositories.NewCustomerRepository(f.db).GetOrCreate(f.business.ID, "+14155552672", "Dana")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	w := f.doJSON(t, http.MethodPost, "/api/customers/"+customer.ID.String()+"/messages", gin.H{"body": "See you at 3!"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var msg models.Message
	if err := json.Unmarshal(w.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Status != models.MessageSent {
		t.Errorf("Expected sent, got %s", msg.Status)
	}

	w = f.doJSON(t, http.MethodGet, "/api/customers/"+customer.ID.String()+"/messages", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var msgs []models.Message
	if err := json.Unmarshal(w.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(msgs) != 1 {
		t.Errorf("Expected 1 message, got %d", len(msgs))
	}

	w = f.doJSON(t, http.MethodGet, "/api/customers", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var customers []models.Customer
	if err := json.Unmarshal(w.Body.Bytes(), &customers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(customers) != 1 {
		t.Errorf("Expected 1 customer, got %d", len(customers))
	}

	w = f.doJSON(t, http.MethodGet, "/api/customers/"+customer.ID.String(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var detail struct {
		Customer models.Customer  `json:"customer"`
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if detail.Customer.ID != customer.ID {
		t.Errorf("Expected customer %s, got %s", customer.ID, detail.Customer.ID)
	}
	if len(detail.Messages) != 1 {
		t.Errorf("Expected 1 message in detail, got %d", len(detail.Messages))
	}
}

func (f *fixture) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestWebhookEndpoint(t *testing.T) {
	f := newFixture(t)

	form := url.Values{}
	form.Set("From", "whatsapp:+14155552672")
	form.Set("To", "whatsapp:+14155552671")
	form.Set("Body", "hi")
	w := f.postForm(t, "/webhook/whatsapp", form)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "received") {
		t.Errorf("Expected received status, got %s", w.Body.String())
	}

	// Unknown destination numbers are acknowledged, not retried by Twilio.
	unknown := url.Values{}
	unknown.Set("From", "whatsapp:+14155552672")
	unknown.Set("To", "whatsapp:+14155550100")
	unknown.Set("Body", "hi")
	w = f.postForm(t, "/webhook/whatsapp", unknown)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 for unknown business, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ignored") {
		t.Errorf("Expected ignored status, got %s", w.Body.String())
	}

	missing := url.Values{}
	missing.Set("Body", "hi")
	w = f.postForm(t, "/webhook/whatsapp", missing)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing fields, got %d", w.Code)
	}
}
