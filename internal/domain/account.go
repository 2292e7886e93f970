package domain

import "time"

type AccountOrigin string

const (
	OriginLocal     AccountOrigin = "local"
	OriginFederated AccountOrigin = "federated"
)

// Credential is the origin-specific part of an account. Only LocalCredential
// and FederatedCredential implement it.
type Credential interface {
	Origin() AccountOrigin
}

type LocalCredential struct {
	PasswordHash string
}

func (LocalCredential) Origin() AccountOrigin { return OriginLocal }

type FederatedCredential struct {
	Provider   string
	ProviderID string
}

func (FederatedCredential) Origin() AccountOrigin { return OriginFederated }

type Account struct {
	ID           string
	Name         string
	Email        string
	CompanyName  string
	ProfileImage string
	Credential   Credential
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Account) Origin() AccountOrigin {
	if a.Credential == nil {
		return ""
	}
	return a.Credential.Origin()
}

func (a Account) Profile() Profile {
	return Profile{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		CompanyName:  a.CompanyName,
		ProfileImage: a.ProfileImage,
		Origin:       a.Origin(),
		CreatedAt:    a.CreatedAt,
	}
}

type Profile struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	CompanyName  string        `json:"company_name"`
	ProfileImage string        `json:"profile_image"`
	Origin       AccountOrigin `json:"origin"`
	CreatedAt    time.Time     `json:"created_at"`
}

type ProfileUpdateRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1"`
	CompanyName  *string `json:"company_name,omitempty"`
	ProfileImage *string `json:"profile_image,omitempty"`
}

type RegisterRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	CompanyName string `json:"company_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type FederatedSignInRequest struct {
	Provider     string `json:"provider" validate:"required"`
	ProviderID   string `json:"provider_id" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
}

type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresAt   string  `json:"expires_at"`
	Profile     Profile `json:"profile"`
}
