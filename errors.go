package authclient

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeMalformedCredential   = "MALFORMED_CREDENTIAL"
	textCodeLoginRejected         = "LOGIN_REJECTED"
	textCodeAuthorizationExpired  = "AUTHORIZATION_EXPIRED"
	textCodeMalformedLoginPayload = "MALFORMED_LOGIN_RESPONSE"
)

// DefaultLoginErrorMessage is shown when no better message can be extracted
// from a failed login attempt.
const DefaultLoginErrorMessage = "Unable to sign in. Please try again."

// ErrMalformedCredential is returned when a token does not decode as three
// segments of valid claims data. It is never surfaced to the end user; the
// session settles Unauthenticated and the bad credential is discarded.
var ErrMalformedCredential = goerrors.New("malformed access credential", goerrors.CategoryAuth).
	WithTextCode(textCodeMalformedCredential).
	WithCode(goerrors.CodeUnauthorized)

// ErrLoginRejected is returned when the login endpoint answers non-2xx.
var ErrLoginRejected = goerrors.New("login rejected", goerrors.CategoryAuth).
	WithTextCode(textCodeLoginRejected).
	WithCode(goerrors.CodeUnauthorized)

// ErrMalformedLoginResponse is returned when a 2xx login response carries no
// access token.
var ErrMalformedLoginResponse = goerrors.New("login response missing access token", goerrors.CategoryOperation).
	WithTextCode(textCodeMalformedLoginPayload)

// ErrAuthorizationExpired is returned when the server rejects an
// authenticated call with 401. Recovery is automatic: the transport clears
// the credential store and forces re-authentication.
var ErrAuthorizationExpired = goerrors.New("authorization expired", goerrors.CategoryAuth).
	WithTextCode(textCodeAuthorizationExpired).
	WithCode(goerrors.CodeUnauthorized)

// IsMalformedCredentialError will check for credential decode failures
func IsMalformedCredentialError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == textCodeMalformedCredential {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "invalid number of segments")
}

// IsAuthorizationExpiredError will check for server-signaled 401 rejections
func IsAuthorizationExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == textCodeAuthorizationExpired {
		return true
	}
	return strings.Contains(err.Error(), "authorization expired")
}

// LoginErrorMessage extracts the user-facing message for a failed login.
// Precedence: server-provided message, the error's own text, then the
// generic fallback.
func LoginErrorMessage(err error) string {
	if err == nil {
		return DefaultLoginErrorMessage
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if msg, ok := richErr.Metadata["message"].(string); ok && msg != "" {
			return msg
		}
		if richErr.Message != "" {
			return richErr.Message
		}
	}

	if msg := err.Error(); msg != "" {
		return msg
	}

	return DefaultLoginErrorMessage
}
