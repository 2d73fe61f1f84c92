package handlers

import (
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DineVoice/dinevoice-backend/internal/dialogue"
	"github.com/DineVoice/dinevoice-backend/internal/models"
	"github.com/DineVoice/dinevoice-backend/internal/phone"
	"github.com/DineVoice/dinevoice-backend/internal/services"
	"github.com/DineVoice/dinevoice-backend/internal/storage"
)

type noopNotifier struct{}

func (noopNotifier) OrderPlaced(*models.RestaurantSnapshot, *models.Order, []*models.OrderItem) {}
func (noopNotifier) ReservationBooked(*models.RestaurantSnapshot, *models.Reservation)          {}

func newTestApp(t *testing.T) (*fiber.App, storage.Store) {
	t.Helper()

	store := storage.NewMemoryStore()
	restaurant, err := store.CreateRestaurant(&models.Restaurant{
		RestaurantName: "Bella Vista",
		PhoneNumber:    "+15551234567",
		IVRMode:        models.IVRModeCategory,
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	category, err := store.CreateMenuCategory(&models.MenuCategory{
		RestaurantID: restaurant.ID, Name: "Appetizers", DisplayOrder: 1, IsActive: true,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	price := 5.0
	if _, err := store.CreateMenuItem(&models.MenuItem{
		RestaurantID: restaurant.ID, CategoryID: &category.ID, Name: "Garlic Bread", Price: &price, IsActive: true,
	}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	resolver := services.NewResolver(store, phone.Normalizer{CountryCode: "1"})
	sessions := services.NewMemorySessionStore(time.Hour)
	engine := dialogue.NewEngine(store, noopNotifier{})

	app := fiber.New()
	voice := NewVoiceHandler(store, sessions, resolver, engine)
	app.Post("/webhook/voice", voice.HandleWebhook)
	app.Get("/webhook/voice", voice.HandleWebhook)

	menu := NewMenuHandler(resolver)
	app.Get("/api/menu", menu.Lookup)
	app.Post("/api/menu", menu.Lookup)

	return app, store
}

func postWebhook(t *testing.T, app *fiber.App, form url.Values) string {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhook/voice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("webhook request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "xml") {
		t.Fatalf("expected XML content type, got %q", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func TestVoiceWebhookGreeting(t *testing.T) {
	app, _ := newTestApp(t)

	body := postWebhook(t, app, url.Values{
		"CallSid": {"CA-web-1"},
		"To":      {"+15551234567"},
		"From":    {"+15557654321"},
	})
	if !strings.Contains(body, "Bella Vista") {
		t.Fatalf("greeting should name the restaurant, got %q", body)
	}
	if !strings.Contains(body, "<Gather") {
		t.Fatalf("greeting should gather input, got %q", body)
	}
}

func TestVoiceWebhookAdvancesSession(t *testing.T) {
	app, _ := newTestApp(t)

	postWebhook(t, app, url.Values{
		"CallSid": {"CA-web-2"},
		"To":      {"+15551234567"},
		"From":    {"+15557654321"},
	})
	body := postWebhook(t, app, url.Values{
		"CallSid": {"CA-web-2"},
		"To":      {"+15551234567"},
		"From":    {"+15557654321"},
		"Digits":  {"1"},
	})
	if !strings.Contains(body, "Appetizers") {
		t.Fatalf("expected category listing on second turn, got %q", body)
	}
}

func TestVoiceWebhookUnknownCalleeApologizes(t *testing.T) {
	app, _ := newTestApp(t)

	body := postWebhook(t, app, url.Values{
		"CallSid": {"CA-web-3"},
		"To":      {"+19990000000"},
		"From":    {"+15557654321"},
	})
	if !strings.Contains(body, "not connected to a restaurant") {
		t.Fatalf("expected apology for unknown callee, got %q", body)
	}
	if !strings.Contains(body, "<Hangup") {
		t.Fatalf("expected hangup, got %q", body)
	}
}

func TestVoiceWebhookCreatesCallRecord(t *testing.T) {
	app, store := newTestApp(t)

	postWebhook(t, app, url.Values{
		"CallSid": {"CA-web-4"},
		"To":      {"+15551234567"},
		"From":    {"+15557654321"},
	})

	record, err := store.GetCallRecord("CA-web-4")
	if err != nil {
		t.Fatalf("get call record: %v", err)
	}
	if record.Status != models.CallStatusInProgress {
		t.Fatalf("expected in-progress, got %q", record.Status)
	}
	if record.CallerNumber != "+15557654321" {
		t.Fatalf("unexpected caller: %q", record.CallerNumber)
	}
}

func TestVoiceWebhookCalleeFromHeader(t *testing.T) {
	app, _ := newTestApp(t)

	form := url.Values{
		"CallSid": {"CA-web-5"},
		"From":    {"+15557654321"},
		"To":      {"{{customer.number}}"}, // unexpanded gateway template
	}
	req := httptest.NewRequest("POST", "/webhook/voice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Vapi-Call-Phone-Number-To", "+15551234567")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("webhook request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Bella Vista") {
		t.Fatalf("expected header fallback to resolve the restaurant, got %q", string(body))
	}
}

func TestMenuLookup(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/menu?callee=%2B15551234567", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("menu request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Garlic Bread") {
		t.Fatalf("expected menu items in response, got %q", string(body))
	}
}

func TestMenuLookupPostJSONBody(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/menu", strings.NewReader(`{"to": "+15551234567"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("menu request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Bella Vista") {
		t.Fatalf("expected restaurant in response, got %q", string(body))
	}
}

func TestMenuLookupBodyFallbackFieldNames(t *testing.T) {
	app, _ := newTestApp(t)

	// The primary field carries an unexpanded template; a later
	// fallback field has the real number.
	payload := `{"to": "{{customer.number}}", "restaurant_phone": "+15551234567"}`
	req := httptest.NewRequest("POST", "/api/menu", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("menu request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Garlic Bread") {
		t.Fatalf("expected menu items, got %q", string(body))
	}
}

func TestMenuLookupUnknownNumber(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/menu?callee=%2B19990000000", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("menu request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "tried_variations") {
		t.Fatalf("expected tried variations in response, got %q", string(body))
	}
}
