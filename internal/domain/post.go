package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostType distinguishes plain text posts from structured fence posts.
type PostType string

const (
	PostSimple    PostType = "simple"    // Regular text post
	PostFencePost PostType = "fencepost" // Structured farm activity post
	PostRainGauge PostType = "rainGauge" // Rainfall reading post
)

// Activity is the kind of field work a fence post records.
type Activity string

const (
	ActivityPlanting    Activity = "planting"
	ActivitySpraying    Activity = "spraying"
	ActivityFertilizing Activity = "fertilizing"
	ActivityHarvesting  Activity = "harvesting"
	ActivityTillage     Activity = "tillage"
	ActivityMaintenance Activity = "maintenance"
)

// Season buckets fence posts for year-over-year comparison.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// FencePostDetails is the structured payload on fencepost-type posts.
// CostPerAcre feeds the per-field cost tracking views.
type FencePostDetails struct {
	Activity    Activity `bson:"activity" json:"activity"`
	Crop        string   `bson:"crop,omitempty" json:"crop,omitempty"`
	Acres       float64  `bson:"acres,omitempty" json:"acres,omitempty"`
	CostPerAcre float64  `bson:"costPerAcre,omitempty" json:"costPerAcre,omitempty"`
	Season      Season   `bson:"season,omitempty" json:"season,omitempty"`
}

// RainGaugeDetails is the structured payload on rain gauge posts. The
// location is copied from the author's profile at posting time so the card
// still renders correctly after the profile changes.
type RainGaugeDetails struct {
	Rainfall float64   `bson:"rainfall" json:"rainfall"` // Inches
	Notes    string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Date     time.Time `bson:"date" json:"date"`
	City     string    `bson:"city,omitempty" json:"city,omitempty"`
	State    string    `bson:"state,omitempty" json:"state,omitempty"`
}

// Post is a feed entry in one of the chat rooms.
type Post struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Username     string             `bson:"username,omitempty" json:"username,omitempty"`
	Type         PostType           `bson:"type" json:"type"`
	Text         string             `bson:"text" json:"text"`
	ChatRoom     ChatRoom           `bson:"chatRoom" json:"chatRoom"`
	MediaURLs    []string           `bson:"mediaUrls,omitempty" json:"mediaUrls,omitempty"`
	FencePost    *FencePostDetails  `bson:"fencePost,omitempty" json:"fencePost,omitempty"`
	RainGauge    *RainGaugeDetails  `bson:"rainGauge,omitempty" json:"rainGauge,omitempty"`
	Likes        int64              `bson:"likes" json:"likes"`
	CommentCount int64              `bson:"commentCount" json:"commentCount"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}
