package store

import (
	"context"
	"sort"
	"sync"

	"restaurant_map/internal/geo"
	"restaurant_map/internal/models"
)

// Memory keeps records in process. Records are copied on the way in and out.
type Memory struct {
	mu    sync.RWMutex
	items map[string]*models.Restaurant
	order []string
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]*models.Restaurant)}
}

func (m *Memory) List(ctx context.Context) ([]models.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Restaurant, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.items[id].Clone())
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return r.Clone(), nil
}

func (m *Memory) Create(ctx context.Context, r *models.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insert(r)
	return nil
}

// CreateMany lets the import tool exercise the bulk path without a database.
func (m *Memory) CreateMany(ctx context.Context, items []models.Restaurant) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range items {
		m.insert(&items[i])
	}
	return len(items), nil
}

func (m *Memory) insert(r *models.Restaurant) {
	r.ID = newID()
	r.Normalize()
	m.items[r.ID] = r.Clone()
	m.order = append(m.order, r.ID)
}

func (m *Memory) Replace(ctx context.Context, id string, r *models.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return models.ErrNotFound
	}
	r.ID = id
	r.Normalize()
	m.items[id] = r.Clone()
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) (*models.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	delete(m.items, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return r, nil
}

func (m *Memory) Nearby(ctx context.Context, center models.LngLat, maxMeters float64) ([]models.NearbyRestaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.NearbyRestaurant{}
	for _, id := range m.order {
		r := m.items[id]
		if !r.Mappable() {
			continue
		}
		d := geo.Distance(center, r.Address.Coord.LngLat())
		if d > maxMeters {
			continue
		}
		out = append(out, models.NearbyRestaurant{Restaurant: *r.Clone(), Dist: models.Dist{Calculated: d}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Dist.Calculated < out[j].Dist.Calculated
	})
	return out, nil
}

func (m *Memory) ScoresByCuisine(ctx context.Context) ([]models.CuisineScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type acc struct {
		sum   float64
		count int64
	}
	groups := make(map[string]*acc)
	var keys []string
	for _, id := range m.order {
		r := m.items[id]
		if r.Cuisine == "" {
			continue
		}
		for _, g := range r.Grades {
			a, ok := groups[r.Cuisine]
			if !ok {
				a = &acc{}
				groups[r.Cuisine] = a
				keys = append(keys, r.Cuisine)
			}
			a.sum += float64(g.Score)
			a.count++
		}
	}

	out := make([]models.CuisineScore, 0, len(keys))
	for _, k := range keys {
		a := groups[k]
		out = append(out, models.CuisineScore{Cuisine: k, AverageScore: a.sum / float64(a.count), Count: a.count})
	}
	return out, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
