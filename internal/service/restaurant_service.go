// Package service implements the restaurant operations on top of a store:
// validation, cache and snapshot bookkeeping, and change notifications.
package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"restaurant_map/internal/cache"
	"restaurant_map/internal/dataset"
	"restaurant_map/internal/metrics"
	"restaurant_map/internal/models"
	"restaurant_map/internal/store"
)

// ChangeNotifier receives an event after every successful mutation.
type ChangeNotifier interface {
	Publish(event models.ChangeEvent)
}

type nopNotifier struct{}

func (nopNotifier) Publish(models.ChangeEvent) {}

// NearbyQuery is a proximity search. A zero MaxDistance means the default radius.
type NearbyQuery struct {
	Center      models.LngLat
	MaxDistance float64
}

type RestaurantService struct {
	store    store.Store
	scores   cache.ScoreCache
	notifier ChangeNotifier
	dataset  *dataset.Holder
	now      func() time.Time
}

type options struct {
	snapshotMaxAge time.Duration
}

type Option func(*options)

// WithSnapshotMaxAge bounds how long the filtered views may miss writes made
// outside this service. Zero or less reloads the dataset on every read.
func WithSnapshotMaxAge(d time.Duration) Option {
	return func(o *options) { o.snapshotMaxAge = d }
}

// New wires the service. nil cache and notifier are replaced by no-ops.
func New(s store.Store, scores cache.ScoreCache, notifier ChangeNotifier, opts ...Option) *RestaurantService {
	o := options{snapshotMaxAge: dataset.DefaultMaxAge}
	for _, opt := range opts {
		opt(&o)
	}
	if scores == nil {
		scores = cache.Nop{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &RestaurantService{
		store:    s,
		scores:   scores,
		notifier: notifier,
		dataset:  dataset.NewHolder(s.List, o.snapshotMaxAge),
		now:      time.Now,
	}
}

func (s *RestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	return s.store.List(ctx)
}

func (s *RestaurantService) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	return s.store.Get(ctx, id)
}

func (s *RestaurantService) Create(ctx context.Context, r *models.Restaurant) (*models.Restaurant, error) {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	s.changed(ctx, models.ChangeCreated, r.ID, r)
	return r, nil
}

// Update replaces the whole record. The id in the path wins over any id in the body.
func (s *RestaurantService) Update(ctx context.Context, id string, r *models.Restaurant) (*models.Restaurant, error) {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Replace(ctx, id, r); err != nil {
		return nil, err
	}
	s.changed(ctx, models.ChangeUpdated, id, r)
	return r, nil
}

func (s *RestaurantService) Delete(ctx context.Context, id string) (*models.Restaurant, error) {
	r, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, models.ChangeDeleted, id, r)
	return r, nil
}

func (s *RestaurantService) changed(ctx context.Context, kind models.ChangeType, id string, r *models.Restaurant) {
	s.scores.Invalidate(ctx)
	s.dataset.Invalidate()
	metrics.MutationsTotal.WithLabelValues(string(kind)).Inc()
	logrus.WithFields(logrus.Fields{"op": kind, "id": id}).Info("restaurant changed")

	event := models.ChangeEvent{Type: kind, ID: id, At: s.now()}
	if kind != models.ChangeDeleted {
		event.Item = r.Clone()
	}
	s.notifier.Publish(event)
}

func (s *RestaurantService) FindNearby(ctx context.Context, q NearbyQuery) ([]models.NearbyRestaurant, error) {
	if err := q.Center.Validate(); err != nil {
		return nil, err
	}
	maxDistance := q.MaxDistance
	switch {
	case math.IsNaN(maxDistance) || math.IsInf(maxDistance, 0) || maxDistance < 0:
		return nil, models.Invalidf("distance must be a positive number of meters")
	case maxDistance == 0:
		maxDistance = models.DefaultNearbyDistance
	}

	out, err := s.store.Nearby(ctx, q.Center, maxDistance)
	if err != nil {
		return nil, err
	}
	metrics.NearbyResults.Observe(float64(len(out)))
	return out, nil
}

// AverageScoreByCuisine averages every grade ever recorded per cuisine,
// highest average first. The result is cached under the version read before
// computing it, so a mutation landing meanwhile leaves it unreachable.
func (s *RestaurantService) AverageScoreByCuisine(ctx context.Context) ([]models.CuisineScore, error) {
	scores, version, ok := s.scores.Get(ctx)
	if ok {
		return scores, nil
	}
	scores, err := s.store.ScoresByCuisine(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].AverageScore != scores[j].AverageScore {
			return scores[i].AverageScore > scores[j].AverageScore
		}
		return scores[i].Cuisine < scores[j].Cuisine
	})
	s.scores.Set(ctx, version, scores)
	return scores, nil
}

func (s *RestaurantService) Filtered(ctx context.Context, f dataset.Filter) ([]models.Restaurant, error) {
	if f.Empty() {
		return s.store.List(ctx)
	}
	snap, err := s.dataset.Current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Filter(f), nil
}

func (s *RestaurantService) Breakdown(ctx context.Context, f dataset.Filter, limit int) (dataset.Breakdown, error) {
	snap, err := s.dataset.Current(ctx)
	if err != nil {
		return dataset.Breakdown{}, err
	}
	return snap.Breakdown(f, limit), nil
}

func (s *RestaurantService) Heatmap(ctx context.Context, f dataset.Filter) ([][3]float64, error) {
	snap, err := s.dataset.Current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Heat(f), nil
}

// Ping reports whether the store is reachable.
func (s *RestaurantService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
