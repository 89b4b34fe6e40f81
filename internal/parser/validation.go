package parser

import (
	"fmt"
)

// ValidateCoordinate validates a single coordinate pair
// S-57 coordinates must be within valid geographic bounds
func ValidateCoordinate(lat, lon float64) error {
	if lat < -90.0 || lat > 90.0 || lon < -180.0 || lon > 180.0 {
		return &ErrInvalidCoordinate{Lat: lat, Lon: lon}
	}
	return nil
}

// ValidateGeometry checks every position of the geometry.
//
// Empty geometries are valid: meta features (PRIM=255) have none, and
// degenerate lines or areas are left for the consumer to drop.
func ValidateGeometry(geometry *Geometry) error {
	if geometry == nil {
		return &ErrInvalidGeometry{Reason: "geometry is nil"}
	}

	check := func(i int, coord []float64) error {
		// Soundings carry [lon, lat, depth]; depth is not range checked.
		if len(coord) < 2 || len(coord) > 3 {
			return &ErrInvalidGeometry{
				Type:   geometry.Type,
				Reason: fmt.Sprintf("coordinate %d must have 2 or 3 values, got %d", i, len(coord)),
			}
		}
		if err := ValidateCoordinate(coord[1], coord[0]); err != nil {
			return &ErrInvalidGeometry{
				Type:   geometry.Type,
				Reason: fmt.Sprintf("coordinate %d invalid: %v", i, err),
			}
		}
		return nil
	}

	for i, coord := range geometry.Coordinates {
		if err := check(i, coord); err != nil {
			return err
		}
	}
	for _, part := range geometry.Parts {
		for i, coord := range part {
			if err := check(i, coord); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateFeature validates a feature per S-57 rules
func ValidateFeature(feature *Feature) error {
	if feature == nil {
		return fmt.Errorf("feature is nil")
	}
	if feature.ObjectClass == "" {
		return fmt.Errorf("feature has empty object class")
	}
	if err := ValidateGeometry(&feature.Geometry); err != nil {
		return fmt.Errorf("feature %d: %w", feature.ID, err)
	}
	return nil
}
