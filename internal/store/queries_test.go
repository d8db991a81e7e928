package store

import (
	"encoding/json"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"restaurant_map/internal/models"
)

func stageNames(t *testing.T, stages []bson.D) []string {
	t.Helper()
	names := make([]string, 0, len(stages))
	for _, s := range stages {
		if len(s) != 1 {
			t.Fatalf("stage %v has %d keys, want 1", s, len(s))
		}
		names = append(names, s[0].Key)
	}
	return names
}

func field(d bson.D, key string) interface{} {
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

func TestNearbyPipeline(t *testing.T) {
	p := nearbyPipeline(models.LngLat{Lng: -73.99, Lat: 40.73}, 2000)
	if names := stageNames(t, p); len(names) != 1 || names[0] != "$geoNear" {
		t.Fatalf("stages = %v, want [$geoNear]", names)
	}
	geoNear := p[0][0].Value.(bson.D)
	if got := field(geoNear, "distanceField"); got != "dist.calculated" {
		t.Errorf("distanceField = %v", got)
	}
	if got := field(geoNear, "spherical"); got != true {
		t.Errorf("spherical = %v", got)
	}
	if got := field(geoNear, "maxDistance"); got != 2000.0 {
		t.Errorf("maxDistance = %v", got)
	}
	near := field(geoNear, "near").(bson.D)
	coords := field(near, "coordinates").(bson.A)
	if coords[0] != -73.99 || coords[1] != 40.73 {
		t.Errorf("near coordinates = %v, want [lng, lat]", coords)
	}
}

func TestScoresByCuisinePipeline(t *testing.T) {
	p := scoresByCuisinePipeline()
	want := []string{"$match", "$unwind", "$group", "$sort"}
	got := stageNames(t, p)
	if len(got) != len(want) {
		t.Fatalf("stages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stage %d = %s, want %s", i, got[i], want[i])
		}
	}
	if unwind := p[1][0].Value; unwind != "$grades" {
		t.Errorf("$unwind = %v", unwind)
	}
	sort := p[3][0].Value.(bson.D)
	if sort[0].Key != "averageScore" || sort[0].Value != -1 {
		t.Errorf("$sort = %v, want averageScore descending", sort)
	}
}

func sourceJSON(t *testing.T, src interface{ Source() (interface{}, error) }) map[string]interface{} {
	t.Helper()
	s, err := src.Source()
	if err != nil {
		t.Fatalf("Source: %v", err)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal source: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal source: %v", err)
	}
	return out
}

func TestNearbySearch(t *testing.T) {
	query, sorter := nearbySearch(models.LngLat{Lng: -73.99, Lat: 40.73}, 2000)

	q := sourceJSON(t, query)
	filter := q["bool"].(map[string]interface{})["filter"]
	// A single filter clause is serialized without the surrounding array.
	if arr, ok := filter.([]interface{}); ok {
		filter = arr[0]
	}
	geoDistance := filter.(map[string]interface{})["geo_distance"].(map[string]interface{})
	if geoDistance["distance"] != "2000m" {
		t.Errorf("distance = %v, want 2000m", geoDistance["distance"])
	}
	if geoDistance["distance_type"] != "arc" {
		t.Errorf("distance_type = %v, want arc", geoDistance["distance_type"])
	}
	loc := geoDistance["location"].(map[string]interface{})
	if loc["lat"] != 40.73 || loc["lon"] != -73.99 {
		t.Errorf("location = %v", loc)
	}

	s := sourceJSON(t, sorter)
	sort := s["_geo_distance"].(map[string]interface{})
	if sort["order"] != "asc" || sort["unit"] != "m" {
		t.Errorf("sort = %v, want ascending meters", sort)
	}
}

func TestScoresAggregation(t *testing.T) {
	agg := sourceJSON(t, scoresAggregation())
	terms := agg["terms"].(map[string]interface{})
	if terms["field"] != "cuisine" {
		t.Errorf("terms field = %v", terms["field"])
	}
	nested := agg["aggregations"].(map[string]interface{})["grades"].(map[string]interface{})
	if nested["nested"].(map[string]interface{})["path"] != "grades" {
		t.Errorf("nested = %v", nested)
	}
	avg := nested["aggregations"].(map[string]interface{})["avg_score"].(map[string]interface{})
	if avg["avg"].(map[string]interface{})["field"] != "grades.score" {
		t.Errorf("avg = %v", avg)
	}
}
