package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User keeps the fields the service relies on as typed columns and everything
// else the client sent in Profile.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Role      Role               `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
	Profile   map[string]any     `bson:",inline"`
}

// Keys that never land in Profile.
var ReservedUserFields = map[string]struct{}{
	"_id":       {},
	"id":        {},
	"email":     {},
	"role":      {},
	"createdAt": {},
	"updatedAt": {},
}

// MarshalJSON flattens the profile into the user document.
func (u User) MarshalJSON() ([]byte, error) {
	doc := make(map[string]any, len(u.Profile)+5)
	for k, v := range u.Profile {
		doc[k] = v
	}
	doc["_id"] = u.ID
	doc["email"] = u.Email
	doc["role"] = u.Role
	doc["createdAt"] = u.CreatedAt
	doc["updatedAt"] = u.UpdatedAt
	return json.Marshal(doc)
}

type UserUpdate struct {
	Email     *string
	Role      *Role
	Profile   map[string]any
	UpdatedAt time.Time
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
