package authclient

import (
	"os"
	"strings"
)

// BaseURLEnvVar supplies the API base address. When unset the hardcoded
// local default applies.
const BaseURLEnvVar = "AUTH_API_URL"

const (
	defaultBaseURL      = "http://localhost:8080/api"
	defaultLoginPath    = "/auth/login"
	defaultSignInRoute  = "/login"
	defaultLandingRoute = "/"
)

// defaultPublicRoutes are reachable without an authenticated session.
var defaultPublicRoutes = []string{
	"/login",
	"/auth-error",
	"/access-denied",
}

// ConfigObject is the default Config implementation. Zero-value fields fall
// back to the package defaults.
type ConfigObject struct {
	BaseURL      string   `json:"base_url,omitempty"`
	LoginPath    string   `json:"login_path,omitempty"`
	SignInRoute  string   `json:"sign_in_route,omitempty"`
	LandingRoute string   `json:"landing_route,omitempty"`
	PublicRoutes []string `json:"public_routes,omitempty"`
}

var _ Config = &ConfigObject{}

// NewEnvConfig builds a ConfigObject from the environment, falling back to
// the local development defaults.
func NewEnvConfig() *ConfigObject {
	return &ConfigObject{
		BaseURL: os.Getenv(BaseURLEnvVar),
	}
}

func (c *ConfigObject) GetBaseURL() string {
	if c.BaseURL == "" {
		return defaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c *ConfigObject) GetLoginPath() string {
	if c.LoginPath == "" {
		return defaultLoginPath
	}
	return c.LoginPath
}

func (c *ConfigObject) GetSignInRoute() string {
	if c.SignInRoute == "" {
		return defaultSignInRoute
	}
	return c.SignInRoute
}

func (c *ConfigObject) GetLandingRoute() string {
	if c.LandingRoute == "" {
		return defaultLandingRoute
	}
	return c.LandingRoute
}

func (c *ConfigObject) GetPublicRoutes() []string {
	if len(c.PublicRoutes) == 0 {
		return defaultPublicRoutes
	}
	return c.PublicRoutes
}
