package weather

import (
	"fmt"
	"strings"
)

// ResolveName turns free-text input into a named Location. Whitespace-only
// input is rejected with ErrEmptyLocation so that no request is made.
func ResolveName(input string) (Location, error) {
	name := strings.TrimSpace(input)
	if name == "" {
		return Location{}, ErrEmptyLocation
	}
	return Location{Name: name}, nil
}

// ResolveCoordinates turns a device position into a Location.
func ResolveCoordinates(lat, lon float64) (Location, error) {
	if err := ValidateCoordinates(lat, lon); err != nil {
		return Location{}, err
	}
	return Location{Coordinates: &Coordinates{Lat: lat, Lon: lon}}, nil
}

// ResolveGeolocationFailure converts a failed position lookup (permission
// denied, unavailable, timeout) into ErrGeolocationUnavailable. There is no
// retry; the reason is kept for logs only.
func ResolveGeolocationFailure(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrGeolocationUnavailable
	}
	return fmt.Errorf("%w: %s", ErrGeolocationUnavailable, reason)
}

// ValidateCoordinates checks that lat/lon are within valid ranges.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %f out of range [-90, 90]", ErrInvalidCoordinates, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %f out of range [-180, 180]", ErrInvalidCoordinates, lon)
	}
	return nil
}
