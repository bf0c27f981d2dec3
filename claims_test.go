package authclient_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	authclient "github.com/goliatone/go-auth-client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIdentity_SubjectPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		claims   jwt.MapClaims
		expected string
	}{
		{
			name:     "userId wins over sub and id",
			claims:   jwt.MapClaims{"userId": "u-1", "sub": "s-1", "id": "i-1"},
			expected: "u-1",
		},
		{
			name:     "sub wins over id",
			claims:   jwt.MapClaims{"sub": "s-1", "id": "i-1"},
			expected: "s-1",
		},
		{
			name:     "id is the last fallback",
			claims:   jwt.MapClaims{"id": "i-1"},
			expected: "i-1",
		},
		{
			name:     "empty userId falls through to sub",
			claims:   jwt.MapClaims{"userId": "", "sub": "s-1"},
			expected: "s-1",
		},
		{
			name:     "no subject field defaults to empty",
			claims:   jwt.MapClaims{"email": "admin@example.com"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := authclient.DecodeIdentity(signToken(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, identity.SubjectID)
		})
	}
}

func TestDecodeIdentity_Fields(t *testing.T) {
	t.Run("email and role default to empty strings", func(t *testing.T) {
		identity, err := authclient.DecodeIdentity(signToken(t, jwt.MapClaims{"sub": "s-1"}))
		require.NoError(t, err)

		assert.Equal(t, "", identity.Email)
		assert.Equal(t, "", identity.Role)
	})

	t.Run("display name is absent when the payload omits it", func(t *testing.T) {
		identity, err := authclient.DecodeIdentity(signToken(t, jwt.MapClaims{
			"sub":   "s-1",
			"email": "admin@example.com",
			"role":  "admin",
		}))
		require.NoError(t, err)

		assert.Nil(t, identity.DisplayName)
		assert.Equal(t, "admin@example.com", identity.Email)
		assert.Equal(t, "admin", identity.Role)
	})

	t.Run("display name passes through when present", func(t *testing.T) {
		identity, err := authclient.DecodeIdentity(signToken(t, jwt.MapClaims{
			"sub":  "s-1",
			"name": "Ada Lovelace",
		}))
		require.NoError(t, err)

		require.NotNil(t, identity.DisplayName)
		assert.Equal(t, "Ada Lovelace", *identity.DisplayName)
	})

	t.Run("present empty display name stays distinct from absent", func(t *testing.T) {
		identity, err := authclient.DecodeIdentity(signToken(t, jwt.MapClaims{
			"sub":  "s-1",
			"name": "",
		}))
		require.NoError(t, err)

		require.NotNil(t, identity.DisplayName)
		assert.Equal(t, "", *identity.DisplayName)
	})
}

func TestDecodeIdentity_Malformed(t *testing.T) {
	// a structurally valid segment that is not claims data
	junkPayload := base64.RawURLEncoding.EncodeToString([]byte("hello"))

	tests := []struct {
		name  string
		token string
	}{
		{name: "no segments", token: "not-a-token"},
		{name: "two junk segments", token: "a.b"},
		{name: "three junk segments", token: "a.b.c"},
		{name: "empty string", token: ""},
		{name: "valid base64 but not claims data", token: "x." + junkPayload + ".y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := authclient.DecodeIdentity(tt.token)
			require.Error(t, err)
			assert.Nil(t, identity)
			assert.True(t, authclient.IsMalformedCredentialError(err))
		})
	}
}

func TestDecodeIdentity_TwoSegmentToken(t *testing.T) {
	// only the middle segment is read, so a missing signature is tolerated
	full := signToken(t, jwt.MapClaims{"sub": "s-1"})
	parts := strings.Split(full, ".")

	identity, err := authclient.DecodeIdentity(parts[0] + "." + parts[1])
	require.NoError(t, err)
	assert.Equal(t, "s-1", identity.SubjectID)
}

func TestIdentity_Name(t *testing.T) {
	name := "Ada"
	withName := &authclient.Identity{Email: "a@example.com", DisplayName: &name}
	assert.Equal(t, "Ada", withName.Name())

	withoutName := &authclient.Identity{Email: "a@example.com"}
	assert.Equal(t, "a@example.com", withoutName.Name())
}

func TestIdentity_SubjectUUID(t *testing.T) {
	identity := &authclient.Identity{SubjectID: "8191a164-93e1-4fd1-a1b1-7b3a2aa2b0d3"}
	id, err := identity.SubjectUUID()
	require.NoError(t, err)
	assert.Equal(t, "8191a164-93e1-4fd1-a1b1-7b3a2aa2b0d3", id.String())

	bad := &authclient.Identity{SubjectID: "nope"}
	_, err = bad.SubjectUUID()
	assert.Error(t, err)
}

func TestIdentity_IsAtLeast(t *testing.T) {
	admin := &authclient.Identity{Role: "admin"}

	assert.True(t, admin.IsAtLeast(authclient.RoleMember))
	assert.True(t, admin.IsAtLeast(authclient.RoleAdmin))
	assert.False(t, admin.IsAtLeast(authclient.RoleOwner))
	assert.True(t, admin.HasRole("admin"))
	assert.False(t, admin.HasRole("owner"))
}

func TestCredentialExpiry(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "s-1", "exp": float64(1900000000)})

	exp, ok := authclient.CredentialExpiry(token)
	require.True(t, ok)
	assert.Equal(t, int64(1900000000), exp.Unix())

	_, ok = authclient.CredentialExpiry(signToken(t, jwt.MapClaims{"sub": "s-1"}))
	assert.False(t, ok)

	_, ok = authclient.CredentialExpiry("garbage")
	assert.False(t, ok)
}
