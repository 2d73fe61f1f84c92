package storage

import (
	"errors"
	"time"

	"github.com/DineVoice/dinevoice-backend/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Restaurant operations
	CreateRestaurant(restaurant *models.Restaurant) (*models.Restaurant, error)
	GetRestaurant(id uint) (*models.Restaurant, error)
	GetRestaurantByPhone(phone string) (*models.Restaurant, error)
	CreateBusinessHour(hour *models.BusinessHour) (*models.BusinessHour, error)
	GetBusinessHours(restaurantID uint) ([]*models.BusinessHour, error)

	// Menu operations
	CreateMenuCategory(category *models.MenuCategory) (*models.MenuCategory, error)
	CreateMenuItem(item *models.MenuItem) (*models.MenuItem, error)
	GetActiveCategories(restaurantID uint) ([]*models.MenuCategory, error)
	GetActiveItems(restaurantID uint) ([]*models.MenuItem, error)
	GetItemsByCategory(categoryID uint) ([]*models.MenuItem, error)

	// Order operations
	CreateOrder(order *models.Order, items []*models.OrderItem) (*models.Order, error)
	GetOrder(id uint) (*models.Order, error)
	GetOrderItems(orderID uint) ([]*models.OrderItem, error)
	GetOrdersByRestaurant(restaurantID uint) ([]*models.Order, error)
	UpdateOrder(order *models.Order) error

	// Reservation operations
	CreateReservation(reservation *models.Reservation) (*models.Reservation, error)
	GetReservationsByRestaurant(restaurantID uint) ([]*models.Reservation, error)

	// Call record operations
	CreateCallRecord(record *models.CallRecord) (*models.CallRecord, error)
	GetCallRecord(callSID string) (*models.CallRecord, error)
	UpdateCallRecordStatus(callSID, status string) error
	MarkStaleCallRecords(olderThan time.Duration) (int64, error)

	// Idempotency operations
	CreateIdempotencyKey(key *models.IdempotencyKey) error
	GetIdempotencyKey(callSID, kind string) (*models.IdempotencyKey, error)
	DeleteExpiredIdempotencyKeys() error
}
