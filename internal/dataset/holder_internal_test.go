package dataset

import (
	"context"
	"testing"
	"time"

	"restaurant_map/internal/models"
)

func TestHolderExpiresAfterMaxAge(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	var items []models.Restaurant
	loads := 0
	h := NewHolder(func(ctx context.Context) ([]models.Restaurant, error) {
		loads++
		return items, nil
	}, 5*time.Second)
	h.now = func() time.Time { return clock }
	ctx := context.Background()

	if _, err := h.Current(ctx); err != nil {
		t.Fatalf("Current: %v", err)
	}

	// Another writer adds a record behind the holder's back.
	items = append(items, models.Restaurant{Name: "A", Cuisine: "Pizza"})
	clock = clock.Add(4 * time.Second)
	if snap, _ := h.Current(ctx); snap.Len() != 0 || loads != 1 {
		t.Errorf("within max age: len = %d, loads = %d; want 0, 1", snap.Len(), loads)
	}

	clock = clock.Add(time.Second)
	if snap, _ := h.Current(ctx); snap.Len() != 1 || loads != 2 {
		t.Errorf("after max age: len = %d, loads = %d; want 1, 2", snap.Len(), loads)
	}
}
