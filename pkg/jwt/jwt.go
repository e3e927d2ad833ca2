package jwt

import (
	"time"

	"tours-backend/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
)

// JWTUtil issues and verifies the opaque session tokens binding a request
// to a principal id and an issue timestamp. Tokens are never persisted;
// validity is derived from the signature and expiry alone.
type JWTUtil struct {
	secretKey []byte
	expiry    time.Duration
}

type Claims struct {
	jwt.RegisteredClaims
}

// TokenDetails is the verified content of a session token.
type TokenDetails struct {
	UserID   string
	IssuedAt time.Time
}

func NewJWTUtil(secret string, expiry time.Duration) *JWTUtil {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &JWTUtil{
		secretKey: []byte(secret),
		expiry:    expiry,
	}
}

// Expiry returns the configured token lifetime.
func (j *JWTUtil) Expiry() time.Duration {
	return j.expiry
}

// GenerateToken signs a token for the given principal id, embedding the
// issue time so later password changes can invalidate it.
func (j *JWTUtil) GenerateToken(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "tours-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// ValidateToken verifies signature and expiry and extracts the principal
// id and issue time. Any structural failure is reported as InvalidToken.
func (j *JWTUtil) ValidateToken(tokenString string) (*TokenDetails, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperror.New(apperror.InvalidToken, "Unexpected signing method")
		}
		return j.secretKey, nil
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.InvalidToken, "Invalid or expired token", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperror.New(apperror.InvalidToken, "Invalid or expired token")
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, apperror.New(apperror.InvalidToken, "Token payload is incomplete")
	}

	return &TokenDetails{
		UserID:   claims.Subject,
		IssuedAt: claims.IssuedAt.Time,
	}, nil
}
