package importer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"

	"restaurant_map/internal/models"
)

// rawRestaurant is one record as found in dataset dumps. The _id is ignored.
type rawRestaurant struct {
	Name         string     `json:"name"`
	Cuisine      string     `json:"cuisine"`
	Borough      string     `json:"borough"`
	RestaurantID string     `json:"restaurant_id"`
	Address      rawAddress `json:"address"`
	Grades       []rawGrade `json:"grades"`
}

type rawAddress struct {
	Building string          `json:"building"`
	Street   string          `json:"street"`
	Zipcode  string          `json:"zipcode"`
	Coord    json.RawMessage `json:"coord"`
}

type rawGrade struct {
	Date  json.RawMessage `json:"date"`
	Grade string          `json:"grade"`
	Score *int            `json:"score"`
}

func (raw rawRestaurant) toModel() (models.Restaurant, error) {
	coord, err := decodeCoord(raw.Address.Coord)
	if err != nil {
		return models.Restaurant{}, err
	}
	r := models.Restaurant{
		Name:         raw.Name,
		Cuisine:      raw.Cuisine,
		Borough:      raw.Borough,
		RestaurantID: raw.RestaurantID,
		Address: models.Address{
			Building: raw.Address.Building,
			Street:   raw.Address.Street,
			Zipcode:  raw.Address.Zipcode,
			Coord:    coord,
		},
		Grades: make([]models.Grade, 0, len(raw.Grades)),
	}
	for i, g := range raw.Grades {
		// Unscored inspections carry no sample for the averages.
		if g.Score == nil {
			continue
		}
		date, err := models.ParseDate(g.Date)
		if err != nil {
			return models.Restaurant{}, fmt.Errorf("grades[%d].date: %w", i, err)
		}
		r.Grades = append(r.Grades, models.Grade{Date: date, Grade: g.Grade, Score: *g.Score})
	}
	return r, nil
}

// decodeCoord accepts a GeoJSON point or a legacy [lng, lat] pair.
func decodeCoord(raw json.RawMessage) (*models.GeoPoint, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch raw[0] {
	case '[':
		var pair []float64
		if err := json.Unmarshal(raw, &pair); err != nil {
			return nil, fmt.Errorf("address.coord: %w", err)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("address.coord: want [lng, lat], got %d numbers", len(pair))
		}
		return models.NewGeoPoint(pair[0], pair[1]), nil
	case '{':
		var g geom.T
		if err := gjson.Unmarshal(raw, &g); err != nil {
			return nil, fmt.Errorf("address.coord: %w", err)
		}
		pt, ok := g.(*geom.Point)
		if !ok {
			return nil, fmt.Errorf("address.coord: want a Point, got %T", g)
		}
		return models.NewGeoPoint(pt.X(), pt.Y()), nil
	default:
		return nil, fmt.Errorf("address.coord: unexpected %q", raw)
	}
}
