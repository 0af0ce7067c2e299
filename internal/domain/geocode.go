package domain

import (
	"context"
	"log/slog"
)

// ResolveLocation fills in whatever the configured location lacks. A location without
// coordinates is forward geocoded by name; one with coordinates is reverse geocoded for a
// display address. Any lookup failure leaves the input unchanged, since the report can
// always be rendered from the configured values alone.
func ResolveLocation(ctx context.Context, loc Location, geocoder Geocoder, logger *slog.Logger) Location {
	if geocoder == nil {
		return loc
	}

	if !loc.HasCoords() {
		if loc.Name == "" {
			return loc
		}
		result, err := geocoder.ForwardGeocode(ctx, loc.Name)
		if err != nil {
			logger.Warn("forward geocoding failed", "location", loc.Name, "error", err)
			return loc
		}
		if result.Lat == 0 && result.Lon == 0 {
			logger.Warn("forward geocoding returned no match", "location", loc.Name)
			return loc
		}
		loc.Lat = result.Lat
		loc.Lon = result.Lon
		loc.Address = result.FormattedAddress
		return loc
	}

	if loc.Address != "" {
		return loc
	}
	result, err := geocoder.ReverseGeocode(ctx, loc.Lat, loc.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed", "lat", loc.Lat, "lon", loc.Lon, "error", err)
		return loc
	}
	loc.Address = result.FormattedAddress
	if loc.Name == "" {
		loc.Name = result.PlaceName
	}
	return loc
}
