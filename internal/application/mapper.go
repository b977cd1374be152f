package application

import (
	"time"

	"github.com/lukian/user-api/internal/domain/entity"
)

// RegisterUserInput carries the registration payload. It doubles as the
// full-update payload since every editable field is present.
type RegisterUserInput struct {
	Email       string
	FirstName   string
	LastName    string
	BirthDate   time.Time
	Address     string
	PhoneNumber string
}

// UpdateEmailInput carries the single-field partial update.
type UpdateEmailInput struct {
	Email string
}

// UserView is the externally visible projection of a user. The deletion
// flag never leaves the service layer.
type UserView struct {
	ID          int64
	Email       string
	FirstName   string
	LastName    string
	BirthDate   time.Time
	Address     string
	PhoneNumber string
}

// NewUser builds a fresh entity from a registration input. ID and the
// deletion flag stay at their zero values; storage assigns the rest.
func NewUser(in RegisterUserInput) *entity.User {
	return &entity.User{
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		BirthDate:   in.BirthDate,
		Address:     in.Address,
		PhoneNumber: in.PhoneNumber,
	}
}

// ToView projects an entity onto its response shape.
func ToView(u *entity.User) UserView {
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		BirthDate:   u.BirthDate,
		Address:     u.Address,
		PhoneNumber: u.PhoneNumber,
	}
}

// ApplyEmailUpdate overwrites only the email on the target entity.
func ApplyEmailUpdate(in UpdateEmailInput, u *entity.User) {
	u.Email = in.Email
}

// ApplyFullUpdate overwrites every editable field on the target entity.
// ID and the deletion flag are untouched.
func ApplyFullUpdate(in RegisterUserInput, u *entity.User) {
	u.Email = in.Email
	u.FirstName = in.FirstName
	u.LastName = in.LastName
	u.BirthDate = in.BirthDate
	u.Address = in.Address
	u.PhoneNumber = in.PhoneNumber
}
