package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Token holds the structure for the tokens collection in mongo. Bearer tokens
// are opaque; expiry is handled by the scheduler's purge job, not by the token
// itself.
type Token struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Token     string             `bson:"token"`
	CPF       string             `bson:"cpf"`
	UserID    string             `bson:"userID"`
	CreatedAt time.Time          `bson:"createdAt"`
}
