package dialogue

import (
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/DineVoice/dinevoice-backend/internal/models"
	"github.com/DineVoice/dinevoice-backend/internal/storage"
)

type recordingNotifier struct {
	orders       []*models.Order
	reservations []*models.Reservation
}

func (n *recordingNotifier) OrderPlaced(snapshot *models.RestaurantSnapshot, order *models.Order, items []*models.OrderItem) {
	n.orders = append(n.orders, order)
}

func (n *recordingNotifier) ReservationBooked(snapshot *models.RestaurantSnapshot, reservation *models.Reservation) {
	n.reservations = append(n.reservations, reservation)
}

func testSnapshot() *models.RestaurantSnapshot {
	return &models.RestaurantSnapshot{
		RestaurantID: 1,
		Name:         "Bella Vista",
		PhoneNumber:  "+15551234567",
		IVRMode:      models.IVRModeCategory,
		Hours:        []string{"Monday to Friday 9 AM to 9 PM"},
		Categories: []models.CategorySnapshot{
			{ID: 10, Name: "Appetizers", Items: []models.ItemSnapshot{
				{ID: 100, Name: "Garlic Bread", Price: 5, HasPrice: true},
				{ID: 101, Name: "Bruschetta", Price: 7.50, HasPrice: true},
			}},
			{ID: 11, Name: "Mains", Items: []models.ItemSnapshot{
				{ID: 102, Name: "Margherita Pizza", Price: 14, HasPrice: true},
			}},
		},
		Specials: []models.ItemSnapshot{
			{ID: 103, Name: "Truffle Pasta", Description: "Fresh pasta with truffle cream"},
		},
		Items: []models.ItemSnapshot{
			{ID: 100, Name: "Garlic Bread", Price: 5, HasPrice: true},
			{ID: 101, Name: "Bruschetta", Price: 7.50, HasPrice: true},
			{ID: 102, Name: "Margherita Pizza", Price: 14, HasPrice: true},
		},
	}
}

func newTestEngine(t *testing.T) (*Engine, *storage.MemoryStore, *recordingNotifier) {
	t.Helper()
	store := storage.NewMemoryStore()
	notifier := &recordingNotifier{}
	return NewEngine(store, notifier), store, notifier
}

func newTestSession(snapshot *models.RestaurantSnapshot) *Session {
	return NewSession("CA-test-1", "+15551234567", "+15557654321", snapshot)
}

func saidText(r Reply) string {
	return strings.Join(r.Say, " ")
}

func TestGreetingMentionsRestaurantAndHours(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	s := newTestSession(testSnapshot())

	r := engine.Greeting(s)
	said := saidText(r)
	if !strings.Contains(said, "Bella Vista") {
		t.Fatalf("greeting should name the restaurant, got %q", said)
	}
	if !strings.Contains(said, "9 AM to 9 PM") {
		t.Fatalf("greeting should read the hours, got %q", said)
	}
	if r.Gather == nil {
		t.Fatal("greeting should gather input")
	}
}

func TestWelcomeUnclearInputReprompts(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	s := newTestSession(testSnapshot())

	r := engine.HandleInput(s, Input{Speech: "what is the weather"})
	if s.Step != StepWelcome && s.Step != "" {
		t.Fatalf("unclear input should not advance, step = %q", s.Step)
	}
	if !strings.Contains(saidText(r), "press 1 or say menu") {
		t.Fatalf("expected welcome re-prompt, got %q", saidText(r))
	}
}

func TestWelcomeAffirmativeListsCategories(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	s := newTestSession(testSnapshot())

	r := engine.HandleInput(s, Input{Digits: "1"})
	if s.Step != StepMenuSelection {
		t.Fatalf("expected step %q, got %q", StepMenuSelection, s.Step)
	}
	said := saidText(r)
	if !strings.Contains(said, "Appetizers") || !strings.Contains(said, "Mains") {
		t.Fatalf("expected both categories in prompt, got %q", said)
	}
}

func TestWelcomeNoCategoriesApologizesAndHangsUp(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	snapshot := testSnapshot()
	snapshot.Categories = nil
	s := newTestSession(snapshot)

	r := engine.HandleInput(s, Input{Digits: "1"})
	if !r.Hangup {
		t.Fatal("expected hangup when no categories exist")
	}
	if !strings.Contains(saidText(r), "not able to take orders") {
		t.Fatalf("expected apology, got %q", saidText(r))
	}
}

func TestMenuSelectionOutOfRangeReprompts(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	s := newTestSession(testSnapshot())
	s.Step = StepMenuSelection

	r := engine.HandleInput(s, Input{Digits: "9"})
	if s.Step != StepMenuSelection {
		t.Fatalf("out-of-range choice should not advance, step = %q", s.Step)
	}
	if !strings.Contains(saidText(r), "between 1 and 2") {
		t.Fatalf("re-prompt should state the valid range, got %q", saidText(r))
	}
}

func TestMenuSelectionByWordNumber(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	s := newTestSession(testSnapshot())
	s.Step = StepMenuSelection

	r := engine.HandleInput(s, Input{Speech: "two"})
	if s.Step != StepItemSelection {
		t.Fatalf("expected step %q, got %q", StepItemSelection, s.Step)
	}
	if s.SelectedCategory == nil || *s.SelectedCategory != 11 {
		t.Fatalf("expected Mains (11) selected, got %v", s.SelectedCategory)
	}
	if !strings.Contains(saidText(r), "Margherita Pizza") {
		t.Fatalf("expected item list, got %q", saidText(r))
	}
}

func TestItemSelectionZeroGoesBack(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	s := newTestSession(testSnapshot())
	s.Step = StepItemSelection
	category := uint(10)
	s.SelectedCategory = &category

	engine.HandleInput(s, Input{Digits: "0"})
	if s.Step != StepMenuSelection {
		t.Fatalf("0 should return to categories, step = %q", s.Step)
	}
	if s.SelectedCategory != nil {
		t.Fatal("0 should clear the selected category")
	}
}

func TestItemSelectionAddsLineItem(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	s := newTestSession(testSnapshot())
	s.Step = StepItemSelection
	category := uint(10)
	s.SelectedCategory = &category

	r := engine.HandleInput(s, Input{Digits: "2"})
	if s.Step != StepOrderConfirmation {
		t.Fatalf("expected step %q, got %q", StepOrderConfirmation, s.Step)
	}
	if len(s.Items) != 1 || s.Items[0].Name != "Bruschetta" || s.Items[0].Quantity != 1 {
		t.Fatalf("unexpected line items: %+v", s.Items)
	}
	if !strings.Contains(saidText(r), "1 Bruschetta") {
		t.Fatalf("confirmation should read the order back, got %q", saidText(r))
	}
}

func TestOrderFlowEndToEnd(t *testing.T) {
	engine, store, notifier := newTestEngine(t)
	s := newTestSession(testSnapshot())
	if _, err := store.CreateCallRecord(&models.CallRecord{
		CallSID:      s.CallSID,
		RestaurantID: 1,
		CallerNumber: s.CallerNumber,
		Status:       models.CallStatusInProgress,
	}); err != nil {
		t.Fatalf("create call record: %v", err)
	}

	engine.HandleInput(s, Input{Digits: "1"})       // welcome -> categories
	engine.HandleInput(s, Input{Digits: "1"})       // Appetizers
	engine.HandleInput(s, Input{Digits: "1"})       // Garlic Bread
	r := engine.HandleInput(s, Input{Speech: "yes"}) // confirm

	if !r.Hangup {
		t.Fatal("expected hangup after order placement")
	}
	if s.Step != StepComplete {
		t.Fatalf("expected step %q, got %q", StepComplete, s.Step)
	}
	if len(notifier.orders) != 1 {
		t.Fatalf("expected 1 order notification, got %d", len(notifier.orders))
	}

	order, err := store.GetOrder(notifier.orders[0].ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if order.OrderNumber == "" {
		t.Fatal("expected order number to be assigned")
	}
	orderItems, err := store.GetOrderItems(order.ID)
	if err != nil {
		t.Fatalf("get order items: %v", err)
	}
	if len(orderItems) != 1 || orderItems[0].ItemName != "Garlic Bread" {
		t.Fatalf("unexpected order items: %+v", orderItems)
	}

	record, err := store.GetCallRecord(s.CallSID)
	if err != nil {
		t.Fatalf("get call record: %v", err)
	}
	if record.Status != models.CallStatusCompleted {
		t.Fatalf("expected call record completed, got %q", record.Status)
	}
}

func TestOrderConfirmationNoClearsAndRestarts(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	s := newTestSession(testSnapshot())
	s.Step = StepOrderConfirmation
	category := uint(10)
	s.SelectedCategory = &category
	s.Items = []LineItem{{ItemID: 100, Name: "Garlic Bread", Quantity: 1}}

	engine.HandleInput(s, Input{Digits: "2"})
	if s.Step != StepWelcome {
		t.Fatalf("cancel should return to welcome, step = %q", s.Step)
	}
	if len(s.Items) != 0 || s.SelectedCategory != nil {
		t.Fatal("cancel should clear the pending order")
	}
}

func TestCompletedCallReplayIsIdempotent(t *testing.T) {
	engine, store, notifier := newTestEngine(t)
	s := newTestSession(testSnapshot())
	s.Step = StepOrderConfirmation
	s.Items = []LineItem{{ItemID: 100, Name: "Garlic Bread", Quantity: 1}}

	engine.HandleInput(s, Input{Digits: "1"})
	if len(notifier.orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(notifier.orders))
	}

	// The provider retries the same confirm turn.
	s.Step = StepOrderConfirmation
	r := engine.HandleInput(s, Input{Digits: "1"})
	if !r.Hangup {
		t.Fatal("replay should still hang up politely")
	}
	if len(notifier.orders) != 1 {
		t.Fatalf("replay must not create a second order, got %d notifications", len(notifier.orders))
	}
	orders, err := store.GetOrdersByRestaurant(1)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected exactly 1 stored order, got %d", len(orders))
	}
}

func TestCompletedCallReplayIsIdempotentOnDatabaseStore(t *testing.T) {
	db, err := gorm.Open(gormsqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{}, &models.OrderItem{},
		&models.CallRecord{}, &models.IdempotencyKey{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	store := storage.NewDatabaseStore(db)
	notifier := &recordingNotifier{}
	engine := NewEngine(store, notifier)

	s := newTestSession(testSnapshot())
	if _, err := store.CreateCallRecord(&models.CallRecord{
		CallSID: s.CallSID, RestaurantID: 1, Status: models.CallStatusInProgress,
	}); err != nil {
		t.Fatalf("create call record: %v", err)
	}
	s.Step = StepOrderConfirmation
	s.Items = []LineItem{{ItemID: 100, Name: "Garlic Bread", Quantity: 1}}

	engine.HandleInput(s, Input{Digits: "1"})
	if len(notifier.orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(notifier.orders))
	}
	record, err := store.GetCallRecord(s.CallSID)
	if err != nil {
		t.Fatalf("get call record: %v", err)
	}
	if record.Status != models.CallStatusCompleted {
		t.Fatalf("expected completed call record, got %q", record.Status)
	}

	// Provider retry of the confirm turn against the real schema.
	s.Step = StepOrderConfirmation
	r := engine.HandleInput(s, Input{Digits: "1"})
	if !r.Hangup {
		t.Fatal("replay should hang up politely")
	}
	orders, err := store.GetOrdersByRestaurant(1)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("replay must not create a second order, got %d", len(orders))
	}
	if len(notifier.orders) != 1 {
		t.Fatalf("replay must not re-notify, got %d notifications", len(notifier.orders))
	}
}

func TestCompleteStepAcknowledgesAndHangsUp(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	s := newTestSession(testSnapshot())
	s.Step = StepComplete

	r := engine.HandleInput(s, Input{Digits: "5"})
	if !r.Hangup {
		t.Fatal("expected hangup on post-completion input")
	}
	if !strings.Contains(saidText(r), "already been placed") {
		t.Fatalf("expected already-placed acknowledgement, got %q", saidText(r))
	}
}
