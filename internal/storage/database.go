package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DineVoice/dinevoice-backend/internal/models"
)

// DatabaseStore implements Store on top of GORM.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Restaurant operations

func (d *DatabaseStore) CreateRestaurant(restaurant *models.Restaurant) (*models.Restaurant, error) {
	if restaurant.IVRMode == "" {
		restaurant.IVRMode = models.IVRModeCategory
	}
	if err := d.db.Create(restaurant).Error; err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (d *DatabaseStore) GetRestaurant(id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := d.db.First(&restaurant, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &restaurant, nil
}

func (d *DatabaseStore) GetRestaurantByPhone(phone string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := d.db.Where("phone_number = ?", phone).First(&restaurant).Error; err != nil {
		return nil, translateErr(err)
	}
	return &restaurant, nil
}

func (d *DatabaseStore) CreateBusinessHour(hour *models.BusinessHour) (*models.BusinessHour, error) {
	if err := d.db.Create(hour).Error; err != nil {
		return nil, err
	}
	return hour, nil
}

func (d *DatabaseStore) GetBusinessHours(restaurantID uint) ([]*models.BusinessHour, error) {
	var hours []*models.BusinessHour
	err := d.db.Where("restaurant_id = ?", restaurantID).Order("id ASC").Find(&hours).Error
	return hours, err
}

// Menu operations

func (d *DatabaseStore) CreateMenuCategory(category *models.MenuCategory) (*models.MenuCategory, error) {
	if err := d.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (d *DatabaseStore) CreateMenuItem(item *models.MenuItem) (*models.MenuItem, error) {
	if err := d.db.Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (d *DatabaseStore) GetActiveCategories(restaurantID uint) ([]*models.MenuCategory, error) {
	var categories []*models.MenuCategory
	err := d.db.Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		Order("display_order ASC, name ASC").
		Find(&categories).Error
	return categories, err
}

func (d *DatabaseStore) GetActiveItems(restaurantID uint) ([]*models.MenuItem, error) {
	var items []*models.MenuItem
	err := d.db.Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (d *DatabaseStore) GetItemsByCategory(categoryID uint) ([]*models.MenuItem, error) {
	var items []*models.MenuItem
	err := d.db.Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// Order operations

func (d *DatabaseStore) CreateOrder(order *models.Order, items []*models.OrderItem) (*models.Order, error) {
	if order.Status == "" {
		order.Status = models.OrderStatusReceived
	}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		order.OrderNumber = fmt.Sprintf("ORD%05d", order.ID)
		if err := tx.Model(order).Update("order_number", order.OrderNumber).Error; err != nil {
			return err
		}
		for _, item := range items {
			item.OrderID = order.ID
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (d *DatabaseStore) GetOrder(id uint) (*models.Order, error) {
	var order models.Order
	if err := d.db.First(&order, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &order, nil
}

func (d *DatabaseStore) GetOrderItems(orderID uint) ([]*models.OrderItem, error) {
	var items []*models.OrderItem
	err := d.db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error
	return items, err
}

func (d *DatabaseStore) GetOrdersByRestaurant(restaurantID uint) ([]*models.Order, error) {
	var orders []*models.Order
	err := d.db.Where("restaurant_id = ?", restaurantID).Order("id ASC").Find(&orders).Error
	return orders, err
}

func (d *DatabaseStore) UpdateOrder(order *models.Order) error {
	return d.db.Save(order).Error
}

// Reservation operations

func (d *DatabaseStore) CreateReservation(reservation *models.Reservation) (*models.Reservation, error) {
	if reservation.Status == "" {
		reservation.Status = models.ReservationStatusConfirmed
	}
	if err := d.db.Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

func (d *DatabaseStore) GetReservationsByRestaurant(restaurantID uint) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	err := d.db.Where("restaurant_id = ?", restaurantID).Order("id ASC").Find(&reservations).Error
	return reservations, err
}

// Call record operations

func (d *DatabaseStore) CreateCallRecord(record *models.CallRecord) (*models.CallRecord, error) {
	var existing models.CallRecord
	err := d.db.Where("call_sid = ?", record.CallSID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if record.Status == "" {
		record.Status = models.CallStatusInProgress
	}
	if err := d.db.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

func (d *DatabaseStore) GetCallRecord(callSID string) (*models.CallRecord, error) {
	var record models.CallRecord
	if err := d.db.Where("call_sid = ?", callSID).First(&record).Error; err != nil {
		return nil, translateErr(err)
	}
	return &record, nil
}

func (d *DatabaseStore) UpdateCallRecordStatus(callSID, status string) error {
	result := d.db.Model(&models.CallRecord{}).
		Where("call_sid = ?", callSID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DatabaseStore) MarkStaleCallRecords(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := d.db.Model(&models.CallRecord{}).
		Where("status = ? AND updated_at < ?", models.CallStatusInProgress, cutoff).
		Update("status", models.CallStatusFailed)
	return result.RowsAffected, result.Error
}

// Idempotency operations

func (d *DatabaseStore) CreateIdempotencyKey(key *models.IdempotencyKey) error {
	if key.ID == "" {
		key.ID = uuid.NewString()
	}
	return d.db.Create(key).Error
}

func (d *DatabaseStore) GetIdempotencyKey(callSID, kind string) (*models.IdempotencyKey, error) {
	var key models.IdempotencyKey
	err := d.db.Where("call_sid = ? AND kind = ?", callSID, kind).First(&key).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &key, nil
}

func (d *DatabaseStore) DeleteExpiredIdempotencyKeys() error {
	return d.db.Where("expires_at < ?", time.Now()).
		Delete(&models.IdempotencyKey{}).Error
}
