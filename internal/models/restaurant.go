package models

import (
	"strings"

	"gorm.io/gorm"
)

// Restaurant is one inspected establishment.
// The JSON and BSON layout matches the public NYC restaurants dataset.
type Restaurant struct {
	ID           string  `json:"_id" bson:"_id" gorm:"primaryKey;type:uuid"`
	Name         string  `json:"name" bson:"name" gorm:"not null"`
	Cuisine      string  `json:"cuisine" bson:"cuisine" gorm:"index;not null"`
	Borough      string  `json:"borough,omitempty" bson:"borough,omitempty" gorm:"index"`
	RestaurantID string  `json:"restaurant_id,omitempty" bson:"restaurant_id,omitempty"`
	Address      Address `json:"address" bson:"address" gorm:"embedded;embeddedPrefix:address_"`
	Grades       []Grade `json:"grades" bson:"grades" gorm:"type:jsonb;serializer:json"`
}

type Address struct {
	Building string    `json:"building,omitempty" bson:"building,omitempty"`
	Street   string    `json:"street,omitempty" bson:"street,omitempty"`
	Zipcode  string    `json:"zipcode,omitempty" bson:"zipcode,omitempty"`
	Coord    *GeoPoint `json:"coord,omitempty" bson:"coord,omitempty" gorm:"type:geometry(Point,4326)"`
}

func (Restaurant) TableName() string { return "restaurants" }

// BeforeSave keeps rows in the shape the aggregation queries expect.
func (r *Restaurant) BeforeSave(tx *gorm.DB) error {
	r.Normalize()
	return nil
}

func (r *Restaurant) AfterFind(tx *gorm.DB) error {
	r.Normalize()
	return nil
}

// Normalize trims text fields, defaults the point type and never leaves grades nil.
// An empty point (what a NULL geometry column scans into) becomes no point.
func (r *Restaurant) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Cuisine = strings.TrimSpace(r.Cuisine)
	r.Borough = strings.TrimSpace(r.Borough)
	if r.Address.Coord != nil {
		if r.Address.Coord.Type == "" && len(r.Address.Coord.Coordinates) == 0 {
			r.Address.Coord = nil
		} else if r.Address.Coord.Type == "" {
			r.Address.Coord.Type = pointType
		}
	}
	if r.Grades == nil {
		r.Grades = []Grade{}
	}
}

// Validate checks the fields required before a record reaches a store.
func (r *Restaurant) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return Invalidf("name is required")
	}
	if strings.TrimSpace(r.Cuisine) == "" {
		return Invalidf("cuisine is required")
	}
	if r.Address.Coord == nil {
		return Invalidf("address.coord is required")
	}
	if err := r.Address.Coord.Validate(); err != nil {
		return err
	}
	for i, g := range r.Grades {
		if g.Score < 0 {
			return Invalidf("grades[%d].score must be non-negative", i)
		}
	}
	return nil
}

// Mappable reports whether the record carries a usable point.
func (r *Restaurant) Mappable() bool {
	return r.Address.Coord != nil && r.Address.Coord.Validate() == nil
}

// CurrentScore returns the score of the most recent grade.
// ok is false when the record has never been graded.
func (r *Restaurant) CurrentScore() (score int, ok bool) {
	if len(r.Grades) == 0 {
		return 0, false
	}
	return r.Grades[0].Score, true
}

// Clone returns a deep copy.
func (r *Restaurant) Clone() *Restaurant {
	out := *r
	if r.Address.Coord != nil {
		coord := *r.Address.Coord
		coord.Coordinates = append([]float64(nil), r.Address.Coord.Coordinates...)
		out.Address.Coord = &coord
	}
	if r.Grades != nil {
		out.Grades = make([]Grade, len(r.Grades))
		for i, g := range r.Grades {
			if g.Date != nil {
				d := *g.Date
				g.Date = &d
			}
			out.Grades[i] = g
		}
	}
	return &out
}
