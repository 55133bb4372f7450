package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RainfallRecord is the running rainfall total for one month on a farmer's
// profile. One document per (user, year, month); yearly totals are summed
// from the monthly records.
type RainfallRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Year      int                `bson:"year" json:"year"`
	Month     int                `bson:"month" json:"month"` // 1-12
	Total     float64            `bson:"total" json:"total"` // Inches
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
