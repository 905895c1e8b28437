package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

// DefaultTokenTTL is how long an issued identity token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey   string
	TokenTTL    time.Duration
	TokenIssuer string
}

// JWTService issues and verifies stateless identity tokens.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service. It refuses to run without a signing secret.
func NewJWTService(config JWTConfig) (*JWTService, error) {
	if strings.TrimSpace(config.SecretKey) == "" {
		return nil, errors.New("jwt secret key is required")
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = DefaultTokenTTL
	}
	return &JWTService{config: config, now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and verifying.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// Claims defines JWT token content
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// Issue signs a token for userID and reports when it expires.
func (s *JWTService) Issue(userID int64) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.TokenTTL)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.TokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify returns the user id carried by tokenString. Failures are either
// apperrors.ErrTokenExpired or apperrors.ErrTokenInvalid.
func (s *JWTService) Verify(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, apperrors.ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, apperrors.ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %v", apperrors.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, apperrors.ErrTokenInvalid
	}
	return claims.UserID, nil
}

// ExtractBearerToken pulls the token out of an "Authorization: Bearer <token>" header.
// ok is false when the header is empty or uses another scheme.
func ExtractBearerToken(authHeader string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
