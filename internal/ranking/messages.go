package ranking

import (
	"errors"
	"fmt"

	"mandi/server/internal/gateway"
	"mandi/server/internal/geocoding"
	"mandi/server/internal/models"
	"mandi/server/internal/search"
)

// UserMessage is the single sentence shown for a failed request
func UserMessage(err error) string {
	var apiErr *gateway.APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, search.ErrInvalidInput):
		return "Please enter both location and crop"
	case errors.Is(err, search.ErrLocationNotFound):
		return "Could not find coordinates for your location. Please try a different location or select from suggestions."
	case errors.Is(err, search.ErrNoDataForCrop):
		return "No mandi data found for this crop. Please check the spelling or try another crop."
	case errors.Is(err, search.ErrTimeout):
		return "Search timed out. Please try a more specific location or try again later."
	case errors.Is(err, search.ErrCancelled):
		return "Search was cancelled."
	case errors.Is(err, gateway.ErrRateLimited):
		return "Rate limit exceeded. Please try again later."
	case errors.Is(err, gateway.ErrNotFound):
		return "Location not found. Please try a different search term."
	case errors.As(err, &apiErr):
		return "Failed to fetch data. Please try again."
	default:
		return "An error occurred during search. Please try again."
	}
}

// GeolocationCode mirrors the browser geolocation error codes
type GeolocationCode int

const (
	GeolocationUnsupported         GeolocationCode = 0
	GeolocationPermissionDenied    GeolocationCode = 1
	GeolocationPositionUnavailable GeolocationCode = 2
	GeolocationTimeout             GeolocationCode = 3
)

// GeolocationMessage explains a failed browser position request
func GeolocationMessage(code GeolocationCode) string {
	switch code {
	case GeolocationUnsupported:
		return "Geolocation is not supported by your browser. Please select your state manually."
	case GeolocationTimeout:
		return "Location request timed out. Please select your state manually."
	case GeolocationPositionUnavailable:
		return "Location information is unavailable. Please select your state manually."
	default:
		return "Location access denied. Please select your state manually."
	}
}

// DeviceLocation is what the client shows after a successful position fix
type DeviceLocation struct {
	Label       string             `json:"label"`
	State       string             `json:"state,omitempty"`
	Message     string             `json:"message"`
	Coordinates models.Coordinates `json:"coordinates"`
}

// DeviceLocationView labels a device position. A recognised state gets the
// auto-detected label the resolver short-circuits on.
func DeviceLocationView(coords models.Coordinates, state string) DeviceLocation {
	if state == "" {
		return DeviceLocation{
			Label:       fmt.Sprintf("Location detected (%.4f, %.4f)", coords.Lat, coords.Lon),
			Message:     "Location detected but couldn't identify your state automatically. Please select your state from the dropdown below.",
			Coordinates: coords,
		}
	}
	return DeviceLocation{
		Label:       state + " " + geocoding.AutoDetectedMarker,
		State:       state,
		Message:     fmt.Sprintf("Location detected: %s. Click Search to view local prices.", state),
		Coordinates: coords,
	}
}
