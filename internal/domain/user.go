package domain

import (
	"context"
	"time"
)

// Role is the closed set of user roles. A user's role never changes after registration.
type Role string

const (
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleOrganizer
}

// User represents a registered community member.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role"`
	Organization string    `json:"organization,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, firstName, lastName string, role Role, organization string, createdAt time.Time) *User {
	return &User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		Organization: organization,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Profile is a user together with their membership edges.
// swagger:model Profile
type Profile struct {
	*User
	JoinedEventIDs []string `json:"joined_event_ids"`
	SavedEventIDs  []string `json:"saved_event_ids"`
}

// Registration is the input for creating an account.
type Registration struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Role         Role
	Organization string
}

// ProfilePatch lists the profile fields a user may change. Nil fields are left untouched.
type ProfilePatch struct {
	FirstName    *string
	LastName     *string
	Organization *string
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer issues bearer credentials for an authenticated user.
type TokenIssuer interface {
	Issue(p Principal, email string, expiry time.Duration) (string, error)
}

// TokenVerifier maps a bearer credential to a principal or fails with ErrUnauthenticated.
type TokenVerifier interface {
	Verify(token string) (Principal, error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	// Create stores u and sets its ID. Fails with ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
}

// UserService defines registration, login and profile operations.
type UserService interface {
	Register(ctx context.Context, reg Registration) (token string, user *User, err error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	GetProfile(ctx context.Context, p Principal) (*Profile, error)
	UpdateProfile(ctx context.Context, p Principal, patch ProfilePatch) (*Profile, error)
	ListClubs(ctx context.Context) ([]*User, error)
}
