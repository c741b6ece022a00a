package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Provider error codes as returned by the identity provider's REST API.
const (
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS_TRY_LATER"
	CodeUserDisabled       = "USER_DISABLED"
	CodeNotAllowed         = "OPERATION_NOT_ALLOWED"
	CodeEmailNotFound      = "EMAIL_NOT_FOUND"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeInvalidCredentials = "INVALID_LOGIN_CREDENTIALS"
)

// ProviderError carries the provider-defined code of a failed sign-in.
type ProviderError struct {
	Code string
}

func (e *ProviderError) Error() string {
	return "identity provider error: " + e.Code
}

// MessageFor maps a sign-in failure to its fixed user-facing string. Wrong
// email and wrong password collapse to one message on purpose: the contract
// never reveals which of the two was wrong.
func MessageFor(err error) string {
	var perr *ProviderError
	if !errors.As(err, &perr) {
		return "Wrong credentials. Please try again."
	}
	switch perr.Code {
	case CodeInvalidEmail:
		return "Please enter a valid email address."
	case CodeTooManyAttempts:
		return "Too many failed attempts. Try again later."
	case CodeUserDisabled:
		return "This account has been disabled. Contact support."
	case CodeNotAllowed:
		return "Email/password sign-in is not enabled."
	case CodeEmailNotFound, CodeInvalidPassword, CodeInvalidCredentials:
		return "Invalid email or password. Please try again."
	default:
		return "Wrong credentials. Please try again."
	}
}

// Provider is the external authentication service. It verifies credentials;
// session lifetime is our own concern (Sessions below).
type Provider interface {
	SignIn(ctx context.Context, email, password string) error
}

// IdentityClient signs in against a Firebase-style REST endpoint:
// POST {endpoint}?key={apiKey} with the credentials, error bodies carrying a
// provider code in error.message.
type IdentityClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *zerolog.Logger
}

func NewIdentityClient(endpoint, apiKey string, log *zerolog.Logger) *IdentityClient {
	return &IdentityClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   http.DefaultClient,
		log:      log,
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *IdentityClient) SignIn(ctx context.Context, email, password string) error {
	payload, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return fmt.Errorf("failed to marshal sign-in request: %w", err)
	}

	url := c.endpoint + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sign-in request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed signInError
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Error.Message == "" {
		c.log.Warn().Int("status", resp.StatusCode).Msg("sign-in failed without a provider code")
		return &ProviderError{Code: "UNKNOWN"}
	}
	c.log.Warn().Str("code", parsed.Error.Message).Msg("sign-in rejected by identity provider")
	return &ProviderError{Code: parsed.Error.Message}
}

// Sessions issues and verifies the admin session tokens. Every admin request
// re-verifies the token, so an expired session is caught mid-visit, not just
// at login.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

func (s *Sessions) Issue(email string) (string, error) {
	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(s.ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify returns the operator email for a valid, unexpired token.
func (s *Sessions) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid session claims")
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return "", fmt.Errorf("session token missing subject")
	}
	return email, nil
}
