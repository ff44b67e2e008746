package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// ValidRoles lists the roles a user may hold.
var ValidRoles = []string{RoleUser, RoleAdmin, RoleModerator}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is an account document. GeminiAPIKey holds ciphertext only.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Email           string             `bson:"email"`
	Password        string             `bson:"password,omitempty"`
	ProfileImageURL string             `bson:"profileImageUrl,omitempty"`
	Role            string             `bson:"role"`
	GeminiAPIKey    string             `bson:"geminiApiKey,omitempty"`
	GoogleID        string             `bson:"googleId,omitempty"`
	Notes           string             `bson:"notes,omitempty"`
	IsActive        bool               `bson:"isActive"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HasGeminiKey() bool {
	return u.GeminiAPIKey != ""
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search string
	Role   string
	// Status is "active" or "inactive" by activity in the last ActiveWindow; empty means all.
	Status       string
	ActiveWindow time.Duration
	Page         int
	Limit        int
}

// UserUpdate lists the fields an update may change; nil means unchanged.
type UserUpdate struct {
	Name            *string
	Email           *string
	Password        *string
	ProfileImageURL *string
	Role            *string
	Notes           *string
	IsActive        *bool
	// GeminiAPIKey set to a pointer to "" removes the stored key.
	GeminiAPIKey *string
	GoogleID     *string
	// UpdatedAt overrides the activity timestamp normally set to now.
	UpdatedAt *time.Time
}

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*User, error)
	Update(ctx context.Context, id primitive.ObjectID, update UserUpdate) (*User, error)
	Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter UserFilter) ([]*UserWithCounts, int64, error)
}

// UserWithCounts is a user row in the admin listing.
type UserWithCounts struct {
	User          `bson:",inline"`
	SessionCount  int `bson:"sessionCount"`
	QuestionCount int `bson:"questionCount"`
	MaterialCount int `bson:"materialCount"`
}
