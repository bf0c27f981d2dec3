package authclient

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Identity is the user record recovered from a credential's claims payload.
// It has no lifecycle of its own: it is recomputed from the token on every
// restore and discarded with it.
type Identity struct {
	SubjectID   string  `json:"subject_id"`
	Email       string  `json:"email,omitempty"`
	Role        string  `json:"role,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
}

// ID returns the primary identity key
func (i *Identity) ID() string {
	return i.SubjectID
}

// SubjectUUID parses the subject id as a UUID
func (i *Identity) SubjectUUID() (uuid.UUID, error) {
	return uuid.Parse(i.SubjectID)
}

// Name returns the display name when the claims payload carried one,
// falling back to the email.
func (i *Identity) Name() string {
	if i.DisplayName != nil {
		return *i.DisplayName
	}
	return i.Email
}

// HasRole checks if the identity carries a specific role
func (i *Identity) HasRole(role string) bool {
	return i.Role == role
}

// IsAtLeast checks if the identity's role is at least the minimum required role
func (i *Identity) IsAtLeast(minRole UserRole) bool {
	return UserRole(i.Role).IsAtLeast(minRole)
}

// DecodeIdentity decodes a compact token string into an Identity without
// verifying the signature. The token is a display and gating convenience
// here; the server that issued it validates it on every request.
//
// Subject precedence: userId, then sub, then id. Email and role default to
// empty strings. DisplayName is only set when the payload carries one.
func DecodeIdentity(token string) (*Identity, error) {
	claims := jwt.MapClaims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(normalizeToken(token), claims); err != nil {
		return nil, goerrors.Wrap(err, ErrMalformedCredential.Category, ErrMalformedCredential.Message).
			WithTextCode(ErrMalformedCredential.TextCode)
	}

	identity := &Identity{
		SubjectID: stringClaim(claims, "userId", "sub", "id"),
		Email:     stringClaim(claims, "email"),
		Role:      stringClaim(claims, "role"),
	}

	if name, ok := presentClaim(claims, "name", "displayName"); ok {
		identity.DisplayName = &name
	}

	return identity, nil
}

// CredentialExpiry reports the exp claim of a token, when present. The
// session core never consults it; cleanup is driven by server rejection.
func CredentialExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(normalizeToken(token), claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}

// normalizeToken pads a missing signature segment. Only the middle segment
// is ever read so a two-segment token is still decodable.
func normalizeToken(token string) string {
	if strings.Count(token, ".") == 1 {
		return token + "."
	}
	return token
}

// stringClaim extracts the first non-empty string claim, first-match-wins.
func stringClaim(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if s, ok := val.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// presentClaim reports a string claim only when the payload carries it,
// preserving the absent vs empty distinction.
func presentClaim(claims jwt.MapClaims, keys ...string) (string, bool) {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if s, ok := val.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}
