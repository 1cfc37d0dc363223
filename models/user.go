package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User roles.
const (
	RoleAdmin      = "admin"
	RolePerito     = "perito"
	RoleAssistente = "assistente"
)

// User holds the structure for the users collection in mongo. Senha stores a
// bcrypt hash and is never serialized out.
type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Nome      string             `json:"nome" bson:"nome"`
	CPF       string             `json:"cpf" bson:"cpf"`
	Email     string             `json:"email" bson:"email"`
	Senha     string             `json:"-" bson:"senha"`
	Role      string             `json:"role" bson:"role"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// UserProjection is the denormalized display projection cached on the device
// after login: name plus a human readable role label. It is distinct from the
// authoritative remote user record.
type UserProjection struct {
	Nome      string `json:"nome"`
	RoleLabel string `json:"roleLabel"`
}

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RolePerito, RoleAssistente:
		return true
	}
	return false
}

// RoleLabel maps a role value to its display label.
func RoleLabel(role string) string {
	switch role {
	case RoleAdmin:
		return "Administrador"
	case RolePerito:
		return "Perito"
	case RoleAssistente:
		return "Assistente"
	}
	return role
}

// Projection builds the display projection for a user.
func (u *User) Projection() UserProjection {
	return UserProjection{Nome: u.Nome, RoleLabel: RoleLabel(u.Role)}
}
