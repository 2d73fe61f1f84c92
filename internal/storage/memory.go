package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DineVoice/dinevoice-backend/internal/models"
)

// MemoryStore holds all data in memory. Used for tests and local
// development without a database; not for production.
type MemoryStore struct {
	restaurants  map[uint]*models.Restaurant
	hours        map[uint][]*models.BusinessHour
	categories   map[uint]*models.MenuCategory
	items        map[uint]*models.MenuItem
	orders       map[uint]*models.Order
	orderItems   map[uint][]*models.OrderItem
	reservations map[uint]*models.Reservation
	callRecords  map[string]*models.CallRecord
	idemKeys     map[string]*models.IdempotencyKey

	mu sync.RWMutex

	// Counters for ID generation
	restaurantCounter  uint
	hourCounter        uint
	categoryCounter    uint
	itemCounter        uint
	orderCounter       uint
	orderItemCounter   uint
	reservationCounter uint
	callRecordCounter  uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		restaurants:  make(map[uint]*models.Restaurant),
		hours:        make(map[uint][]*models.BusinessHour),
		categories:   make(map[uint]*models.MenuCategory),
		items:        make(map[uint]*models.MenuItem),
		orders:       make(map[uint]*models.Order),
		orderItems:   make(map[uint][]*models.OrderItem),
		reservations: make(map[uint]*models.Reservation),
		callRecords:  make(map[string]*models.CallRecord),
		idemKeys:     make(map[string]*models.IdempotencyKey),
	}
}

// Restaurant operations

func (m *MemoryStore) CreateRestaurant(restaurant *models.Restaurant) (*models.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.restaurantCounter++
	restaurant.ID = m.restaurantCounter
	restaurant.CreatedAt = time.Now()
	restaurant.UpdatedAt = time.Now()
	if restaurant.IVRMode == "" {
		restaurant.IVRMode = models.IVRModeCategory
	}

	m.restaurants[restaurant.ID] = restaurant
	return restaurant, nil
}

func (m *MemoryStore) GetRestaurant(id uint) (*models.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	restaurant, exists := m.restaurants[id]
	if !exists {
		return nil, ErrNotFound
	}
	return restaurant, nil
}

func (m *MemoryStore) GetRestaurantByPhone(phone string) (*models.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, restaurant := range m.restaurants {
		if restaurant.PhoneNumber == phone {
			return restaurant, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateBusinessHour(hour *models.BusinessHour) (*models.BusinessHour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hourCounter++
	hour.ID = m.hourCounter
	m.hours[hour.RestaurantID] = append(m.hours[hour.RestaurantID], hour)
	return hour, nil
}

func (m *MemoryStore) GetBusinessHours(restaurantID uint) ([]*models.BusinessHour, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*models.BusinessHour{}, m.hours[restaurantID]...), nil
}

// Menu operations

func (m *MemoryStore) CreateMenuCategory(category *models.MenuCategory) (*models.MenuCategory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.categoryCounter++
	category.ID = m.categoryCounter
	category.CreatedAt = time.Now()
	m.categories[category.ID] = category
	return category, nil
}

func (m *MemoryStore) CreateMenuItem(item *models.MenuItem) (*models.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.itemCounter++
	item.ID = m.itemCounter
	item.CreatedAt = time.Now()
	m.items[item.ID] = item
	return item, nil
}

func (m *MemoryStore) GetActiveCategories(restaurantID uint) ([]*models.MenuCategory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var categories []*models.MenuCategory
	for _, c := range m.categories {
		if c.RestaurantID == restaurantID && c.IsActive {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].DisplayOrder != categories[j].DisplayOrder {
			return categories[i].DisplayOrder < categories[j].DisplayOrder
		}
		return strings.ToLower(categories[i].Name) < strings.ToLower(categories[j].Name)
	})
	return categories, nil
}

func (m *MemoryStore) GetActiveItems(restaurantID uint) ([]*models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []*models.MenuItem
	for _, item := range m.items {
		if item.RestaurantID == restaurantID && item.IsActive {
			items = append(items, item)
		}
	}
	sortItems(items)
	return items, nil
}

func (m *MemoryStore) GetItemsByCategory(categoryID uint) ([]*models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []*models.MenuItem
	for _, item := range m.items {
		if item.CategoryID != nil && *item.CategoryID == categoryID && item.IsActive {
			items = append(items, item)
		}
	}
	sortItems(items)
	return items, nil
}

func sortItems(items []*models.MenuItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
}

// Order operations

func (m *MemoryStore) CreateOrder(order *models.Order, items []*models.OrderItem) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orderCounter++
	order.ID = m.orderCounter
	order.OrderNumber = fmt.Sprintf("ORD%05d", m.orderCounter)
	if order.Status == "" {
		order.Status = models.OrderStatusReceived
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	m.orders[order.ID] = order

	for _, item := range items {
		m.orderItemCounter++
		item.ID = m.orderItemCounter
		item.OrderID = order.ID
		item.CreatedAt = time.Now()
		m.orderItems[order.ID] = append(m.orderItems[order.ID], item)
	}

	return order, nil
}

func (m *MemoryStore) GetOrder(id uint) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order, exists := m.orders[id]
	if !exists {
		return nil, ErrNotFound
	}
	return order, nil
}

func (m *MemoryStore) GetOrderItems(orderID uint) ([]*models.OrderItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*models.OrderItem{}, m.orderItems[orderID]...), nil
}

func (m *MemoryStore) GetOrdersByRestaurant(restaurantID uint) ([]*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var orders []*models.Order
	for _, order := range m.orders {
		if order.RestaurantID == restaurantID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func (m *MemoryStore) UpdateOrder(order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.orders[order.ID]; !exists {
		return ErrNotFound
	}
	order.UpdatedAt = time.Now()
	m.orders[order.ID] = order
	return nil
}

// Reservation operations

func (m *MemoryStore) CreateReservation(reservation *models.Reservation) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reservationCounter++
	reservation.ID = m.reservationCounter
	if reservation.Status == "" {
		reservation.Status = models.ReservationStatusConfirmed
	}
	reservation.CreatedAt = time.Now()
	reservation.UpdatedAt = time.Now()
	m.reservations[reservation.ID] = reservation
	return reservation, nil
}

func (m *MemoryStore) GetReservationsByRestaurant(restaurantID uint) ([]*models.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var reservations []*models.Reservation
	for _, r := range m.reservations {
		if r.RestaurantID == restaurantID {
			reservations = append(reservations, r)
		}
	}
	sort.Slice(reservations, func(i, j int) bool { return reservations[i].ID < reservations[j].ID })
	return reservations, nil
}

// Call record operations

func (m *MemoryStore) CreateCallRecord(record *models.CallRecord) (*models.CallRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, exists := m.callRecords[record.CallSID]; exists {
		// Webhook retries must not create a second record.
		return existing, nil
	}

	m.callRecordCounter++
	record.ID = m.callRecordCounter
	if record.Status == "" {
		record.Status = models.CallStatusInProgress
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	m.callRecords[record.CallSID] = record
	return record, nil
}

func (m *MemoryStore) GetCallRecord(callSID string) (*models.CallRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.callRecords[callSID]
	if !exists {
		return nil, ErrNotFound
	}
	return record, nil
}

func (m *MemoryStore) UpdateCallRecordStatus(callSID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.callRecords[callSID]
	if !exists {
		return ErrNotFound
	}
	record.Status = status
	record.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) MarkStaleCallRecords(olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var marked int64
	for _, record := range m.callRecords {
		if record.Status == models.CallStatusInProgress && record.UpdatedAt.Before(cutoff) {
			record.Status = models.CallStatusFailed
			marked++
		}
	}
	return marked, nil
}

// Idempotency operations

func (m *MemoryStore) CreateIdempotencyKey(key *models.IdempotencyKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapKey := key.CallSID + "/" + key.Kind
	if _, exists := m.idemKeys[mapKey]; exists {
		return fmt.Errorf("idempotency key already exists for %s", mapKey)
	}
	if key.ID == "" {
		key.ID = uuid.NewString()
	}
	key.CreatedAt = time.Now()
	m.idemKeys[mapKey] = key
	return nil
}

func (m *MemoryStore) GetIdempotencyKey(callSID, kind string) (*models.IdempotencyKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key, exists := m.idemKeys[callSID+"/"+kind]
	if !exists {
		return nil, ErrNotFound
	}
	return key, nil
}

func (m *MemoryStore) DeleteExpiredIdempotencyKeys() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for mapKey, key := range m.idemKeys {
		if !key.ExpiresAt.IsZero() && now.After(key.ExpiresAt) {
			delete(m.idemKeys, mapKey)
		}
	}
	return nil
}
