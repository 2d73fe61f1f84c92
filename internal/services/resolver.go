package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/DineVoice/dinevoice-backend/internal/models"
	"github.com/DineVoice/dinevoice-backend/internal/phone"
	"github.com/DineVoice/dinevoice-backend/internal/storage"
)

// NotFoundError reports a callee number that matched no restaurant under
// any normalized variation.
type NotFoundError struct {
	Callee string
	Tried  []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no restaurant found for %s (tried %s)", e.Callee, strings.Join(e.Tried, ", "))
}

// Resolver maps the number a caller dialed to a restaurant and builds the
// menu snapshot a call session carries.
type Resolver struct {
	store      storage.Store
	normalizer phone.Normalizer
}

func NewResolver(store storage.Store, normalizer phone.Normalizer) *Resolver {
	return &Resolver{store: store, normalizer: normalizer}
}

// Resolve looks the callee number up under each variation in priority
// order and returns the first active restaurant.
func (r *Resolver) Resolve(callee string) (*models.Restaurant, error) {
	variations := r.normalizer.Variations(callee)
	if len(variations) == 0 {
		return nil, &NotFoundError{Callee: callee}
	}

	for _, candidate := range variations {
		restaurant, err := r.store.GetRestaurantByPhone(candidate)
		if err != nil {
			if err == storage.ErrNotFound {
				continue
			}
			return nil, err
		}
		if !restaurant.IsActive {
			continue
		}
		log.Printf("📞 Resolved %s to restaurant %d (%s) via %s", callee, restaurant.ID, restaurant.RestaurantName, candidate)
		return restaurant, nil
	}

	return nil, &NotFoundError{Callee: callee, Tried: variations}
}

// Snapshot captures the restaurant's menu for one call. Missing pieces
// never fail the call: a restaurant without hours or categories still
// gets a snapshot, and the dialogue engine degrades accordingly.
func (r *Resolver) Snapshot(restaurant *models.Restaurant) *models.RestaurantSnapshot {
	snapshot := &models.RestaurantSnapshot{
		RestaurantID: restaurant.ID,
		Name:         restaurant.RestaurantName,
		PhoneNumber:  restaurant.PhoneNumber,
		Email:        restaurant.EmailAddress,
		Address:      restaurant.Address,
		WebsiteURL:   restaurant.WebsiteURL,
		IVRMode:      restaurant.IVRMode,
	}

	hours, err := r.store.GetBusinessHours(restaurant.ID)
	if err != nil {
		log.Printf("⚠️  Failed to load hours for restaurant %d: %v", restaurant.ID, err)
	}
	for _, h := range hours {
		if line := h.Display(); line != "" {
			snapshot.Hours = append(snapshot.Hours, line)
		}
	}

	categories, err := r.store.GetActiveCategories(restaurant.ID)
	if err != nil {
		log.Printf("⚠️  Failed to load categories for restaurant %d: %v", restaurant.ID, err)
	}

	items, err := r.store.GetActiveItems(restaurant.ID)
	if err != nil {
		log.Printf("⚠️  Failed to load items for restaurant %d: %v", restaurant.ID, err)
	}

	byCategory := make(map[uint][]models.ItemSnapshot)
	for _, item := range items {
		entry := itemSnapshot(item)
		if item.IsSpecial {
			snapshot.Specials = append(snapshot.Specials, entry)
			continue
		}
		snapshot.Items = append(snapshot.Items, entry)
		if item.CategoryID != nil {
			byCategory[*item.CategoryID] = append(byCategory[*item.CategoryID], entry)
		}
	}

	for _, category := range categories {
		categoryItems := byCategory[category.ID]
		if len(categoryItems) == 0 {
			continue
		}
		snapshot.Categories = append(snapshot.Categories, models.CategorySnapshot{
			ID:    category.ID,
			Name:  category.Name,
			Items: categoryItems,
		})
	}

	return snapshot
}

func itemSnapshot(item *models.MenuItem) models.ItemSnapshot {
	entry := models.ItemSnapshot{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
	}
	if item.Price != nil {
		entry.Price = *item.Price
		entry.HasPrice = true
	}
	return entry
}
