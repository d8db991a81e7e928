package models

import (
	"database/sql/driver"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

// SRID of every stored point (WGS84).
const SRID = 4326

const pointType = "Point"

// GeoPoint is a GeoJSON point. Coordinates are always [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
}

// LngLat is a query center.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

func NewGeoPoint(lng, lat float64) *GeoPoint {
	return &GeoPoint{Type: pointType, Coordinates: []float64{lng, lat}}
}

func (c LngLat) Validate() error {
	if math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) || c.Lng < -180 || c.Lng > 180 {
		return Invalidf("longitude must be a number between -180 and 180")
	}
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || c.Lat < -90 || c.Lat > 90 {
		return Invalidf("latitude must be a number between -90 and 90")
	}
	return nil
}

func (p GeoPoint) Validate() error {
	if p.Type != "" && p.Type != pointType {
		return Invalidf("address.coord.type must be %q, got %q", pointType, p.Type)
	}
	if len(p.Coordinates) != 2 {
		return Invalidf("address.coord.coordinates must hold exactly [lng, lat]")
	}
	if err := p.LngLat().Validate(); err != nil {
		return fmt.Errorf("address.coord: %w", err)
	}
	return nil
}

// LngLat assumes the point has two coordinates.
func (p GeoPoint) LngLat() LngLat {
	return LngLat{Lng: p.Coordinates[0], Lat: p.Coordinates[1]}
}

// Geom converts the point into a go-geom point carrying the storage SRID.
func (p GeoPoint) Geom() (*geom.Point, error) {
	if len(p.Coordinates) != 2 {
		return nil, Invalidf("point needs two coordinates")
	}
	pt, err := geom.NewPoint(geom.XY).SetCoords(geom.Coord{p.Coordinates[0], p.Coordinates[1]})
	if err != nil {
		return nil, err
	}
	return pt.SetSRID(SRID), nil
}

// Value encodes the point as hex EWKB, the text form PostGIS accepts for geometry input.
func (p GeoPoint) Value() (driver.Value, error) {
	if len(p.Coordinates) == 0 {
		return nil, nil
	}
	pt, err := p.Geom()
	if err != nil {
		return nil, err
	}
	b, err := ewkb.Marshal(pt, binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	return hex.EncodeToString(b), nil
}

// Scan accepts raw EWKB or its hex text form.
func (p *GeoPoint) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*p = GeoPoint{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into GeoPoint", src)
	}
	if raw, err := hex.DecodeString(string(b)); err == nil {
		b = raw
	}
	g, err := ewkb.Unmarshal(b)
	if err != nil {
		return fmt.Errorf("decode ewkb point: %w", err)
	}
	pt, ok := g.(*geom.Point)
	if !ok {
		return fmt.Errorf("expected point geometry, got %T", g)
	}
	*p = *NewGeoPoint(pt.X(), pt.Y())
	return nil
}
