package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olivere/elastic/v7"
	"github.com/sirupsen/logrus"

	"restaurant_map/internal/config"
	"restaurant_map/internal/models"
)

// maxSearchHits mirrors the default index.max_result_window.
const maxSearchHits = 10000

// elasticMapping indexes grades as nested documents so the score average can
// be computed per grade, and derives a geo_point from address.coord.
const elasticMapping = `{
  "mappings": {
    "properties": {
      "name":          {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "cuisine":       {"type": "keyword"},
      "borough":       {"type": "keyword"},
      "restaurant_id": {"type": "keyword"},
      "address": {
        "properties": {
          "building": {"type": "keyword"},
          "street":   {"type": "text"},
          "zipcode":  {"type": "keyword"},
          "coord":    {"type": "object", "enabled": false}
        }
      },
      "location": {"type": "geo_point"},
      "grades": {
        "type": "nested",
        "properties": {
          "date":  {"type": "date"},
          "grade": {"type": "keyword"},
          "score": {"type": "integer"}
        }
      }
    }
  }
}`

// Elastic stores records in one index keyed by record id.
type Elastic struct {
	client *elastic.Client
	index  string
}

// elasticDoc is the indexed source. The id lives in the document metadata.
type elasticDoc struct {
	Name         string            `json:"name"`
	Cuisine      string            `json:"cuisine"`
	Borough      string            `json:"borough,omitempty"`
	RestaurantID string            `json:"restaurant_id,omitempty"`
	Address      models.Address    `json:"address"`
	Grades       []models.Grade    `json:"grades"`
	Location     *elastic.GeoPoint `json:"location,omitempty"`
}

func OpenElastic(ctx context.Context, cfg config.ElasticConfig) (*Elastic, error) {
	client, err := elastic.NewClient(elastic.SetURL(cfg.URL), elastic.SetSniff(false))
	if err != nil {
		return nil, fmt.Errorf("create elastic client: %w", err)
	}
	e := NewElastic(client, cfg.Index)
	if err := e.EnsureIndex(ctx); err != nil {
		client.Stop()
		return nil, err
	}
	return e, nil
}

func NewElastic(client *elastic.Client, index string) *Elastic {
	return &Elastic{client: client, index: index}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (e *Elastic) EnsureIndex(ctx context.Context) error {
	exists, err := e.client.IndexExists(e.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", e.index, err)
	}
	if exists {
		logrus.WithField("index", e.index).Info("elastic index already exists")
		return nil
	}
	created, err := e.client.CreateIndex(e.index).BodyString(elasticMapping).Do(ctx)
	if err != nil {
		return fmt.Errorf("create index %s: %w", e.index, err)
	}
	if !created.Acknowledged {
		logrus.WithField("index", e.index).Warn("CreateIndex was not acknowledged")
	}
	return nil
}

func toElasticDoc(r *models.Restaurant) elasticDoc {
	doc := elasticDoc{
		Name:         r.Name,
		Cuisine:      r.Cuisine,
		Borough:      r.Borough,
		RestaurantID: r.RestaurantID,
		Address:      r.Address,
		Grades:       r.Grades,
	}
	if r.Mappable() {
		c := r.Address.Coord.LngLat()
		doc.Location = elastic.GeoPointFromLatLon(c.Lat, c.Lng)
	}
	return doc
}

func fromSource(id string, src json.RawMessage) (models.Restaurant, error) {
	var doc elasticDoc
	if err := json.Unmarshal(src, &doc); err != nil {
		return models.Restaurant{}, err
	}
	r := models.Restaurant{
		ID:           id,
		Name:         doc.Name,
		Cuisine:      doc.Cuisine,
		Borough:      doc.Borough,
		RestaurantID: doc.RestaurantID,
		Address:      doc.Address,
		Grades:       doc.Grades,
	}
	r.Normalize()
	return r, nil
}

func (e *Elastic) List(ctx context.Context) ([]models.Restaurant, error) {
	scroll := e.client.Scroll(e.index).Size(500)
	defer scroll.Clear(context.Background())

	items := []models.Restaurant{}
	for {
		res, err := scroll.Do(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, translateElastic("list", err)
		}
		for _, hit := range res.Hits.Hits {
			r, err := fromSource(hit.Id, hit.Source)
			if err != nil {
				logrus.WithError(err).WithField("id", hit.Id).Warn("skipping undecodable document")
				continue
			}
			items = append(items, r)
		}
	}
	return items, nil
}

func (e *Elastic) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	if !validID(id) {
		return nil, models.ErrNotFound
	}
	res, err := e.client.Get().Index(e.index).Id(id).Do(ctx)
	if err != nil {
		return nil, translateElastic("get", err)
	}
	if !res.Found {
		return nil, models.ErrNotFound
	}
	r, err := fromSource(res.Id, res.Source)
	if err != nil {
		return nil, models.NewStoreError("get", err)
	}
	return &r, nil
}

func (e *Elastic) Create(ctx context.Context, r *models.Restaurant) error {
	r.ID = newID()
	r.Normalize()
	return e.put(ctx, "create", r)
}

func (e *Elastic) Replace(ctx context.Context, id string, r *models.Restaurant) error {
	if !validID(id) {
		return models.ErrNotFound
	}
	exists, err := e.client.Exists().Index(e.index).Id(id).Do(ctx)
	if err != nil {
		return translateElastic("replace", err)
	}
	if !exists {
		return models.ErrNotFound
	}
	r.ID = id
	r.Normalize()
	return e.put(ctx, "replace", r)
}

func (e *Elastic) put(ctx context.Context, op string, r *models.Restaurant) error {
	_, err := e.client.Index().
		Index(e.index).
		Id(r.ID).
		BodyJson(toElasticDoc(r)).
		Refresh("wait_for").
		Do(ctx)
	return translateElastic(op, err)
}

func (e *Elastic) CreateMany(ctx context.Context, items []models.Restaurant) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	bulk := e.client.Bulk().Index(e.index).Refresh("wait_for")
	for i := range items {
		items[i].ID = newID()
		items[i].Normalize()
		bulk.Add(elastic.NewBulkIndexRequest().Id(items[i].ID).Doc(toElasticDoc(&items[i])))
	}

	res, err := bulk.Do(ctx)
	if err != nil {
		return 0, translateElastic("create many", err)
	}
	failed := res.Failed()
	for _, item := range failed {
		if item.Error != nil {
			logrus.WithField("id", item.Id).Warnf("bulk index failed: %s", item.Error.Reason)
		}
	}
	return len(items) - len(failed), nil
}

func (e *Elastic) Delete(ctx context.Context, id string) (*models.Restaurant, error) {
	r, err := e.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	_, err = e.client.Delete().Index(e.index).Id(id).Refresh("wait_for").Do(ctx)
	if err != nil {
		return nil, translateElastic("delete", err)
	}
	return r, nil
}

func (e *Elastic) Nearby(ctx context.Context, center models.LngLat, maxMeters float64) ([]models.NearbyRestaurant, error) {
	query, sorter := nearbySearch(center, maxMeters)
	res, err := e.client.Search().
		Index(e.index).
		Query(query).
		SortBy(sorter).
		Size(maxSearchHits).
		TrackTotalHits(true).
		Do(ctx)
	if err != nil {
		return nil, translateElastic("nearby", err)
	}
	if total := res.TotalHits(); total > int64(len(res.Hits.Hits)) {
		logrus.WithFields(logrus.Fields{
			"total":        total,
			"returned":     len(res.Hits.Hits),
			"max_distance": maxMeters,
		}).Warn("nearby search truncated to the result window")
	}

	out := make([]models.NearbyRestaurant, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		r, err := fromSource(hit.Id, hit.Source)
		if err != nil {
			logrus.WithError(err).WithField("id", hit.Id).Warn("skipping undecodable document")
			continue
		}
		var dist float64
		if len(hit.Sort) > 0 {
			dist, _ = hit.Sort[0].(float64)
		}
		out = append(out, models.NearbyRestaurant{Restaurant: r, Dist: models.Dist{Calculated: dist}})
	}
	return out, nil
}

// nearbySearch filters by arc distance and sorts by it; the sort value is the distance in meters.
func nearbySearch(center models.LngLat, maxMeters float64) (elastic.Query, elastic.Sorter) {
	query := elastic.NewBoolQuery().Filter(
		elastic.NewGeoDistanceQuery("location").
			Lat(center.Lat).
			Lon(center.Lng).
			Distance(strconv.FormatFloat(maxMeters, 'f', -1, 64) + "m").
			DistanceType("arc"),
	)
	sorter := elastic.NewGeoDistanceSort("location").
		Point(center.Lat, center.Lng).
		Asc().
		Unit("m").
		DistanceType("arc")
	return query, sorter
}

func (e *Elastic) ScoresByCuisine(ctx context.Context) ([]models.CuisineScore, error) {
	res, err := e.client.Search().
		Index(e.index).
		Size(0).
		Aggregation("cuisines", scoresAggregation()).
		Do(ctx)
	if err != nil {
		return nil, translateElastic("scores by cuisine", err)
	}

	out := []models.CuisineScore{}
	terms, ok := res.Aggregations.Terms("cuisines")
	if !ok {
		return out, nil
	}
	for _, bucket := range terms.Buckets {
		cuisine, _ := bucket.Key.(string)
		if cuisine == "" {
			continue
		}
		grades, ok := bucket.Nested("grades")
		if !ok || grades.DocCount == 0 {
			continue
		}
		avg, ok := grades.Avg("avg_score")
		if !ok || avg.Value == nil {
			continue
		}
		out = append(out, models.CuisineScore{Cuisine: cuisine, AverageScore: *avg.Value, Count: grades.DocCount})
	}
	return out, nil
}

// scoresAggregation averages nested grade scores per cuisine; the nested doc
// count is the number of grades.
func scoresAggregation() elastic.Aggregation {
	return elastic.NewTermsAggregation().
		Field("cuisine").
		Size(maxSearchHits).
		SubAggregation("grades", elastic.NewNestedAggregation().
			Path("grades").
			SubAggregation("avg_score", elastic.NewAvgAggregation().Field("grades.score")))
}

func (e *Elastic) Ping(ctx context.Context) error {
	_, err := e.client.ClusterHealth().Index(e.index).Do(ctx)
	return models.NewStoreError("ping", err)
}

func (e *Elastic) Close() error {
	e.client.Stop()
	return nil
}

func translateElastic(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case elastic.IsNotFound(err):
		return models.ErrNotFound
	case elastic.IsStatusCode(err, 400):
		return fmt.Errorf("%w: %v", models.ErrInvalidArgument, err)
	default:
		return models.NewStoreError(op, err)
	}
}
