package authclient_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	authclient "github.com/goliatone/go-auth-client"
	"github.com/stretchr/testify/require"
)

// signToken mints a compact token with the given claims payload. The core
// never verifies signatures so the key only needs to be stable.
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	return token
}

func newTestConfig(baseURL string) *authclient.ConfigObject {
	return &authclient.ConfigObject{
		BaseURL: baseURL,
	}
}

type silentLogger struct{}

func (silentLogger) Debug(format string, args ...any) {}
func (silentLogger) Info(format string, args ...any)  {}
func (silentLogger) Error(format string, args ...any) {}
