package weather

import (
	"context"
)

// Fetcher performs a single current-weather lookup.
type Fetcher interface {
	FetchWeather(ctx context.Context, target RequestTarget) (Record, error)
}

// IconResolver returns the icon for a code, or nil when it cannot be obtained.
type IconResolver interface {
	Resolve(ctx context.Context, code string) *Icon
}

// AuthorizationStatus is the location permission state.
type AuthorizationStatus string

const (
	AuthorizationNotDetermined AuthorizationStatus = "not_determined"
	AuthorizationAuthorized    AuthorizationStatus = "authorized"
	AuthorizationDenied        AuthorizationStatus = "denied"
	AuthorizationRestricted    AuthorizationStatus = "restricted"
)

// ParseAuthorizationStatus maps a config or request value to a status.
func ParseAuthorizationStatus(s string) (AuthorizationStatus, bool) {
	switch AuthorizationStatus(s) {
	case AuthorizationNotDetermined, AuthorizationAuthorized, AuthorizationDenied, AuthorizationRestricted:
		return AuthorizationStatus(s), true
	case "authorized_always", "authorized_when_in_use":
		return AuthorizationAuthorized, true
	}
	return "", false
}

// LocationProvider abstracts the device location service.
type LocationProvider interface {
	AuthorizationStatus() AuthorizationStatus
	RequestPermissionPrompt()
	RequestOneLocation()
	Events() <-chan LocationEvent
}

// PreferenceStore persists the PreferredLocation string. An empty value
// means "use live geolocation".
type PreferenceStore interface {
	PreferredLocation(ctx context.Context) (string, error)
	SetPreferredLocation(ctx context.Context, city string) error
}
