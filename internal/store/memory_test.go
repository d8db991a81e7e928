package store_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"restaurant_map/internal/models"
	"restaurant_map/internal/store"
)

func pizzaA() models.Restaurant {
	return models.Restaurant{
		Name:    "A",
		Cuisine: "Pizza",
		Address: models.Address{Coord: models.NewGeoPoint(-73.99, 40.73)},
		Grades:  []models.Grade{{Score: 5}, {Score: 15}},
	}
}

func pizzaB() models.Restaurant {
	return models.Restaurant{
		Name:    "B",
		Cuisine: "Pizza",
		Address: models.Address{Coord: models.NewGeoPoint(-73.98, 40.74)},
		Grades:  []models.Grade{{Score: 10}},
	}
}

// seed stores the given records and returns their ids in order.
func seed(t *testing.T, s store.Store, items ...models.Restaurant) []string {
	t.Helper()
	ids := make([]string, 0, len(items))
	for i := range items {
		if err := s.Create(context.Background(), &items[i]); err != nil {
			t.Fatalf("Create(%s): %v", items[i].Name, err)
		}
		ids = append(ids, items[i].ID)
	}
	return ids
}

func TestMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	// Given: a created record
	r := pizzaA()
	if err := s.Create(ctx, &r); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID == "" {
		t.Fatal("Create did not assign an id")
	}

	// When: it is read back
	got, err := s.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "A" || len(got.Grades) != 2 {
		t.Errorf("Get returned %+v", got)
	}

	// When: it is replaced
	replacement := pizzaB()
	if err := s.Replace(ctx, r.ID, &replacement); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	got, _ = s.Get(ctx, r.ID)
	if got.Name != "B" || got.ID != r.ID {
		t.Errorf("after Replace got %+v", got)
	}

	// When: it is deleted
	deleted, err := s.Delete(ctx, r.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.Name != "B" {
		t.Errorf("Delete returned %+v, want the removed record", deleted)
	}

	// Then: it is gone
	if _, err := s.Get(ctx, r.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	items, _ := s.List(ctx)
	if len(items) != 0 {
		t.Errorf("List after Delete has %d items", len(items))
	}
}

func TestMemoryUnknownID(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	seed(t, s, pizzaA())

	const id = "6f0e1c2a-1111-4b6a-9c1e-000000000000"
	if _, err := s.Get(ctx, id); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
	r := pizzaB()
	if err := s.Replace(ctx, id, &r); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Replace = %v, want ErrNotFound", err)
	}
	if _, err := s.Delete(ctx, id); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Delete = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "not-a-uuid"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get(malformed) = %v, want ErrNotFound", err)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	ids := seed(t, s, pizzaA())

	got, _ := s.Get(ctx, ids[0])
	got.Name = "mutated"
	got.Grades[0].Score = 99
	got.Address.Coord.Coordinates[0] = 0

	again, _ := s.Get(ctx, ids[0])
	if again.Name != "A" || again.Grades[0].Score != 5 || again.Address.Coord.Coordinates[0] != -73.99 {
		t.Errorf("stored record changed through a returned copy: %+v", again)
	}
}

func TestMemoryNearby(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	far := models.Restaurant{
		Name:    "C",
		Cuisine: "Bakery",
		Address: models.Address{Coord: models.NewGeoPoint(-73.7, 40.6)},
	}
	// B first so ordering cannot come from insertion order.
	seed(t, s, pizzaB(), far, pizzaA())

	got, err := s.Nearby(ctx, models.LngLat{Lng: -73.99, Lat: 40.73}, 2000)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Nearby returned %d results, want 2", len(got))
	}
	if got[0].Name != "A" || got[0].Dist.Calculated != 0 {
		t.Errorf("first = %s at %.2f, want A at 0", got[0].Name, got[0].Dist.Calculated)
	}
	if got[1].Name != "B" || math.Abs(got[1].Dist.Calculated-1395.1) > 1 {
		t.Errorf("second = %s at %.2f, want B at ~1395", got[1].Name, got[1].Dist.Calculated)
	}
	for _, hit := range got {
		if hit.Dist.Calculated > 2000 {
			t.Errorf("%s is %.2f m away, beyond the radius", hit.Name, hit.Dist.Calculated)
		}
	}
}

func TestMemoryNearbyNoMatches(t *testing.T) {
	s := store.NewMemory()
	seed(t, s, pizzaA())

	got, err := s.Nearby(context.Background(), models.LngLat{Lng: 2.35, Lat: 48.85}, 400)
	if err != nil {
		t.Fatalf("Nearby: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("Nearby = %v, want an empty non-nil slice", got)
	}
}

func TestMemoryScoresByCuisine(t *testing.T) {
	s := store.NewMemory()
	ungraded := models.Restaurant{
		Name:    "D",
		Cuisine: "Thai",
		Address: models.Address{Coord: models.NewGeoPoint(-73.9, 40.7)},
	}
	seed(t, s, pizzaA(), pizzaB(), ungraded)

	got, err := s.ScoresByCuisine(context.Background())
	if err != nil {
		t.Fatalf("ScoresByCuisine: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d groups, want 1 (ungraded cuisines contribute nothing): %+v", len(got), got)
	}
	want := models.CuisineScore{Cuisine: "Pizza", AverageScore: 10, Count: 3}
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}
}

func TestMemoryCreateMany(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	items := []models.Restaurant{pizzaA(), pizzaB()}
	n, err := s.CreateMany(ctx, items)
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if n != 2 {
		t.Errorf("CreateMany inserted %d, want 2", n)
	}
	if items[0].ID == "" || items[0].ID == items[1].ID {
		t.Errorf("ids not assigned uniquely: %q %q", items[0].ID, items[1].ID)
	}
	all, _ := s.List(ctx)
	if len(all) != 2 || all[0].Name != "A" || all[1].Name != "B" {
		t.Errorf("List = %+v, want A then B", all)
	}
}
