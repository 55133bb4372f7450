package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upload records a media object that went through the upload pipeline.
// The ObjectKey is the durable storage key; URL is the public download URL
// handed back to the caller at upload time.
type Upload struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	ObjectKey   string             `bson:"objectKey" json:"objectKey"`
	URL         string             `bson:"url" json:"url"`
	Folder      string             `bson:"folder" json:"folder"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
