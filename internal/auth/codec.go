package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMalformedToken covers structurally invalid tokens and bad signatures.
	ErrMalformedToken = errors.New("malformed token")
	// ErrUnsupportedToken is returned for tokens signed with a foreign method.
	ErrUnsupportedToken = errors.New("unsupported signing method")
	// ErrEmptyClaims is returned when a well-signed token carries no usable claims.
	ErrEmptyClaims = errors.New("token carries no claims")
)

// Claims is the signed token payload. All timestamps are absolute epoch
// milliseconds.
type Claims struct {
	SubjectID   string `json:"sub"`
	TokenID     string `json:"tid"`
	IssuedAtMs  int64  `json:"iat"`
	ExpiresAtMs int64  `json:"exp"`
}

// Expired reports whether the token's expiration has passed. Expiration is a
// claim the caller inspects: the codec never rejects on it, because relaxed
// request paths and the refresh flow deliberately tolerate expired tokens.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAtMs <= now.UnixMilli()
}

// Remaining returns the token lifetime left at now, zero when already expired.
func (c *Claims) Remaining(now time.Time) time.Duration {
	remaining := time.UnixMilli(c.ExpiresAtMs).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// jwt.Claims implementation. Registered-claim validation is disabled on
// parse, so these accessors only serve callers that want time.Time views.

func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.ExpiresAtMs)), nil
}

func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.UnixMilli(c.IssuedAtMs)), nil
}

func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c *Claims) GetIssuer() (string, error)              { return "", nil }
func (c *Claims) GetSubject() (string, error)             { return c.SubjectID, nil }
func (c *Claims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

// Codec is the deterministic, reversible mapping between a claim set and a
// compact signed token string. Pure and stateless; the symmetric key comes
// from process-wide configuration.
type Codec struct {
	secret []byte
}

// NewCodec builds a codec around the shared signing secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode signs a fresh claim set for the subject: unique token id, issued-at
// now, expiration now + ttl. No side effects.
func (c *Codec) Encode(subjectID string, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		SubjectID:   subjectID,
		TokenID:     uuid.NewString(),
		IssuedAtMs:  now.UnixMilli(),
		ExpiresAtMs: now.Add(ttl).UnixMilli(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Decode verifies signature and structure and returns the embedded claims.
// Expiration is not checked here; see Claims.Expired.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrUnsupportedToken
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, ErrUnsupportedToken) {
			return nil, ErrUnsupportedToken
		}
		return nil, ErrMalformedToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformedToken
	}
	if claims.SubjectID == "" || claims.TokenID == "" {
		return nil, ErrEmptyClaims
	}
	return claims, nil
}
