package dto

import (
	"time"

	"github.com/lukian/user-api/internal/application"
)

// DateLayout is the wire format for calendar dates (ISO-8601 date).
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// RegisterUserRequest is the registration payload. It is reused verbatim
// for PUT since a full update touches the same fields.
type RegisterUserRequest struct {
	Email       string `json:"email" binding:"required,email"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	BirthDate   string `json:"birth_date" binding:"required,datetime=2006-01-02"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
}

// ToInput converts the bound request into the application input. The date
// has already passed the datetime binding rule, so a parse failure here
// means the request never bound.
func (r RegisterUserRequest) ToInput() (application.RegisterUserInput, error) {
	birth, err := ParseDate(r.BirthDate)
	if err != nil {
		return application.RegisterUserInput{}, err
	}
	return application.RegisterUserInput{
		Email:       r.Email,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		BirthDate:   birth,
		Address:     r.Address,
		PhoneNumber: r.PhoneNumber,
	}, nil
}

// UpdateUserEmailRequest is the email-only partial update payload.
type UpdateUserEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (r UpdateUserEmailRequest) ToInput() application.UpdateEmailInput {
	return application.UpdateEmailInput{Email: r.Email}
}

// UserResponse is the response projection of a user.
type UserResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	BirthDate   string `json:"birth_date"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

func FromView(v application.UserView) UserResponse {
	return UserResponse{
		ID:          v.ID,
		Email:       v.Email,
		FirstName:   v.FirstName,
		LastName:    v.LastName,
		BirthDate:   v.BirthDate.Format(DateLayout),
		Address:     v.Address,
		PhoneNumber: v.PhoneNumber,
	}
}

func FromViews(views []application.UserView) []UserResponse {
	out := make([]UserResponse, 0, len(views))
	for _, v := range views {
		out = append(out, FromView(v))
	}
	return out
}
