package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field is a named parcel a farmer tracks input costs against.
type Field struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Name      string             `bson:"name" json:"name"`
	Acres     float64            `bson:"acres,omitempty" json:"acres,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// FieldCost is the running input-cost total for one field in one year.
// One document per (user, field, year); recording a cost adds to the total.
type FieldCost struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	FieldID   primitive.ObjectID `bson:"fieldId" json:"fieldId"`
	Year      int                `bson:"year" json:"year"`
	TotalCost float64            `bson:"totalCost" json:"totalCost"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
