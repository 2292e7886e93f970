package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"warungledger/backend/internal/domain"
	"warungledger/backend/internal/service"
	"warungledger/backend/internal/store"
	"warungledger/backend/internal/xid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthManager struct {
	secret     []byte
	tokenTTL   time.Duration
	accounts   store.AccountRepository
	bcryptCost int
	now        func() time.Time
}

type accountClaims struct {
	jwtlib.RegisteredClaims
	Email string `json:"email"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, accounts store.AccountRepository) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}

	return &AuthManager{
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		accounts:   accounts,
		bcryptCost: bcrypt.DefaultCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account that signs in with email and password.
func (a *AuthManager) Register(ctx context.Context, req domain.RegisterRequest) (domain.Profile, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if err := service.Validate(req); err != nil {
		return domain.Profile{}, err
	}

	hash, err := a.hashPassword(req.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		// max=72 counts runes; bcrypt's limit is 72 bytes.
		return domain.Profile{}, &service.ValidationError{Message: "invalid request", Fields: map[string]string{"password": "max"}}
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	account, err := a.accounts.CreateAccount(ctx, domain.Account{
		ID:          xid.New("acc"),
		Name:        req.Name,
		Email:       req.Email,
		CompanyName: req.CompanyName,
		Credential:  domain.LocalCredential{PasswordHash: hash},
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return account.Profile(), nil
}

func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	account, err := a.accounts.GetAccountByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, store.ErrNotFound) {
		return domain.LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.LoginResponse{}, err
	}

	switch cred := account.Credential.(type) {
	case domain.LocalCredential:
		if !verifyPassword(cred.PasswordHash, req.Password) {
			return domain.LoginResponse{}, ErrInvalidCredentials
		}
	case domain.FederatedCredential:
		return domain.LoginResponse{}, fmt.Errorf("%w: account signs in with %s", ErrInvalidCredentials, cred.Provider)
	default:
		return domain.LoginResponse{}, ErrInvalidCredentials
	}

	return a.issue(*account)
}

// SignInFederated trusts an identity already verified by the gateway. It
// finds the account by provider identity, then by email among federated
// accounts, and creates one otherwise. An email owned by a password account
// is a conflict.
func (a *AuthManager) SignInFederated(ctx context.Context, req domain.FederatedSignInRequest) (domain.LoginResponse, error) {
	req.Provider = strings.ToLower(strings.TrimSpace(req.Provider))
	req.ProviderID = strings.TrimSpace(req.ProviderID)
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.ProfileImage = strings.TrimSpace(req.ProfileImage)
	if err := service.Validate(req); err != nil {
		return domain.LoginResponse{}, err
	}

	account, err := a.accounts.GetAccountByProvider(ctx, req.Provider, req.ProviderID)
	if err == nil {
		return a.issue(*account)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.LoginResponse{}, err
	}

	account, err = a.accounts.GetAccountByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if account.Origin() != domain.OriginFederated {
			return domain.LoginResponse{}, fmt.Errorf("email %s is registered with a password: %w", req.Email, store.ErrDuplicate)
		}
		return a.issue(*account)
	case !errors.Is(err, store.ErrNotFound):
		return domain.LoginResponse{}, err
	}

	name := req.Name
	if name == "" {
		name, _, _ = strings.Cut(req.Email, "@")
	}
	account, err = a.accounts.CreateAccount(ctx, domain.Account{
		ID:           xid.New("acc"),
		Name:         name,
		Email:        req.Email,
		ProfileImage: req.ProfileImage,
		Credential:   domain.FederatedCredential{Provider: req.Provider, ProviderID: req.ProviderID},
	})
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return a.issue(*account)
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &accountClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	return domain.Actor{AccountID: sub, Email: claims.Email}, nil
}

func (a *AuthManager) issue(account domain.Account) (domain.LoginResponse, error) {
	expiresAt := a.now().Add(a.tokenTTL)
	token, err := a.sign(account, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return domain.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		Profile:     account.Profile(),
	}, nil
}

func (a *AuthManager) sign(account domain.Account, expiresAt time.Time) (string, error) {
	claims := accountClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwtlib.NewNumericDate(a.now()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "warungledger",
		},
		Email: account.Email,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *AuthManager) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
