package models

import "time"

// DefaultNearbyDistance is the search radius in meters when none is given.
const DefaultNearbyDistance = 400.0

type Dist struct {
	Calculated float64 `json:"calculated" bson:"calculated"`
}

// NearbyRestaurant is a proximity hit: the record plus its distance in meters.
type NearbyRestaurant struct {
	Restaurant `bson:",inline"`
	Dist       Dist `json:"dist" bson:"dist"`
}

// CuisineScore is one group of the average-score aggregation.
// Count is the number of grades, not the number of restaurants.
type CuisineScore struct {
	Cuisine      string  `json:"_id" bson:"_id" gorm:"column:cuisine"`
	AverageScore float64 `json:"averageScore" bson:"averageScore" gorm:"column:average_score"`
	Count        int64   `json:"count" bson:"count" gorm:"column:count"`
}

type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// ChangeEvent is pushed to live map clients after every mutation.
type ChangeEvent struct {
	Type ChangeType  `json:"type"`
	ID   string      `json:"id"`
	Item *Restaurant `json:"item,omitempty"`
	At   time.Time   `json:"at"`
}
