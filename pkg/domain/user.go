package domain

import "strings"

// User is the profile of a ThriftEase account holder.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"givenName"`
	MiddleName string `json:"middleName"`
	FamilyName string `json:"familyName"`
	Suffix     string `json:"suffix"`
	FullName   string `json:"fullName,omitempty"`
}

// DisplayName returns the server-computed full name, or assembles one from the
// name parts when the server left it empty.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	parts := []string{}
	for _, p := range []string{u.GivenName, u.MiddleName, u.FamilyName, u.Suffix} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return u.Email
	}
	return strings.Join(parts, " ")
}

// CreateUserInput is the sign-up payload.
type CreateUserInput struct {
	ClientMutationID string  `json:"clientMutationId,omitempty"`
	Email            string  `json:"email" validate:"required,email,max=50"`
	Password         string  `json:"password" validate:"required,min=7,max=128,haslower,hasupper,hasdigit,hasspecial"`
	GivenName        string  `json:"givenName" validate:"required,max=50"`
	MiddleName       *string `json:"middleName,omitempty" validate:"omitempty,max=50"`
	FamilyName       string  `json:"familyName" validate:"required,max=50"`
	Suffix           *string `json:"suffix,omitempty" validate:"omitempty,max=20"`
}

// UpdateUserInput changes the signed-in user's profile. Nil fields are left as is.
type UpdateUserInput struct {
	ClientMutationID string  `json:"clientMutationId,omitempty"`
	Password         *string `json:"password,omitempty" validate:"omitempty,min=7,max=128,haslower,hasupper,hasdigit,hasspecial"`
	GivenName        *string `json:"givenName,omitempty" validate:"omitempty,max=50"`
	MiddleName       *string `json:"middleName,omitempty" validate:"omitempty,max=50"`
	FamilyName       *string `json:"familyName,omitempty" validate:"omitempty,max=50"`
	Suffix           *string `json:"suffix,omitempty" validate:"omitempty,max=20"`
}

// ApplyResetInput sets a new password using a reset token.
type ApplyResetInput struct {
	ClientMutationID string `json:"clientMutationId,omitempty"`
	Token            string `json:"token" validate:"required"`
	Password         string `json:"password" validate:"required,min=7,max=128,haslower,hasupper,hasdigit,hasspecial"`
}

// SignInPayload is returned by a successful sign-in.
type SignInPayload struct {
	Token            string `json:"token"`
	RefreshExpiresIn int    `json:"refreshExpiresIn"`
	User             *User  `json:"user"`
}

// VerifyPayload is returned by token verification.
type VerifyPayload struct {
	User *User `json:"user"`
}
