package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleFarmer Role = "farmer"
	RoleAdmin  Role = "admin"
)

// ChatRoom identifies which feed a post belongs to.
type ChatRoom string

const (
	RoomRegional  ChatRoom = "regional"
	RoomStatewide ChatRoom = "statewide"
	RoomNational  ChatRoom = "national"
)

// Address is the farmer's mailing address; the profile region is derived from it.
type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zipCode,omitempty" json:"zipCode,omitempty"`
}

// User represents a farmer (or admin) account and their public profile.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Profile ---
	Address     Address `bson:"address,omitempty" json:"address"`
	AcresFarmed float64 `bson:"acresFarmed,omitempty" json:"acresFarmed"`
	Region      string  `bson:"region,omitempty" json:"region,omitempty"` // Derived from address state
	PhotoURL    string  `bson:"photoUrl,omitempty" json:"photoUrl,omitempty"`

	// Banned users can read the feed but cannot post or comment.
	Banned bool `bson:"banned,omitempty" json:"banned,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
