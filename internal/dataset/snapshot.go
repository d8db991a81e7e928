// Package dataset keeps the current set of records and derives the filtered
// views and chart aggregates the map shows from it.
package dataset

import (
	"sort"

	"restaurant_map/internal/models"
)

// DefaultTopCuisines is the number of cuisines a breakdown keeps.
const DefaultTopCuisines = 10

// heatWeight is the intensity of every heatmap point.
const heatWeight = 0.5

// Snapshot is an immutable view of every record at one point in time.
type Snapshot struct {
	items []models.Restaurant
}

func NewSnapshot(items []models.Restaurant) *Snapshot {
	return &Snapshot{items: items}
}

func (s *Snapshot) Len() int { return len(s.items) }

// Filter returns copies of the matching records in store order.
func (s *Snapshot) Filter(f Filter) []models.Restaurant {
	out := []models.Restaurant{}
	for i := range s.items {
		if f.Match(&s.items[i]) {
			out = append(out, *s.items[i].Clone())
		}
	}
	return out
}

// Count is one labelled bar of a chart.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Breakdown struct {
	Total    int     `json:"total"`
	Cuisines []Count `json:"cuisines"`
	Boroughs []Count `json:"boroughs"`
	Buckets  []Count `json:"scoreBuckets"`
}

// Breakdown counts the records matching f by cuisine (top limit), borough and
// score bucket. Records without a cuisine or borough are left out of that chart.
func (s *Snapshot) Breakdown(f Filter, limit int) Breakdown {
	if limit <= 0 {
		limit = DefaultTopCuisines
	}
	cuisines := map[string]int{}
	boroughs := map[string]int{}
	buckets := map[models.ScoreBucket]int{}
	total := 0
	for i := range s.items {
		r := &s.items[i]
		if !f.Match(r) {
			continue
		}
		total++
		if r.Cuisine != "" {
			cuisines[r.Cuisine]++
		}
		if r.Borough != "" {
			boroughs[r.Borough]++
		}
		buckets[r.Bucket()]++
	}

	out := Breakdown{
		Total:    total,
		Cuisines: ranked(cuisines),
		Boroughs: ranked(boroughs),
		Buckets:  make([]Count, 0, len(models.ScoreBuckets)),
	}
	if len(out.Cuisines) > limit {
		out.Cuisines = out.Cuisines[:limit]
	}
	for _, b := range models.ScoreBuckets {
		out.Buckets = append(out.Buckets, Count{Label: string(b), Count: buckets[b]})
	}
	return out
}

// ranked orders counts descending, ties by label.
func ranked(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Heat returns [lat, lng, weight] for every mappable record matching f.
func (s *Snapshot) Heat(f Filter) [][3]float64 {
	out := [][3]float64{}
	for i := range s.items {
		r := &s.items[i]
		if !r.Mappable() || !f.Match(r) {
			continue
		}
		c := r.Address.Coord.LngLat()
		out = append(out, [3]float64{c.Lat, c.Lng, heatWeight})
	}
	return out
}
