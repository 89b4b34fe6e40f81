package parser

import (
	"fmt"
)

// ErrInvalidCoordinate indicates coordinate out of valid bounds
type ErrInvalidCoordinate struct {
	Lat, Lon float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lat=%f lon=%f (lat must be ±90, lon must be ±180)",
		e.Lat, e.Lon)
}

// ErrUnknownObjectClass indicates an OBJL code that cannot name a layer
type ErrUnknownObjectClass struct {
	Code int
}

func (e *ErrUnknownObjectClass) Error() string {
	return fmt.Sprintf("unknown S-57 object class: %d", e.Code)
}

// ErrInvalidGeometry indicates geometry violates S-57 rules
type ErrInvalidGeometry struct {
	Type   GeometryType
	Reason string
}

func (e *ErrInvalidGeometry) Error() string {
	if e.Type != GeometryTypeNone {
		return fmt.Sprintf("invalid geometry (%v): %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("invalid geometry: %s", e.Reason)
}

// ErrMissingSpatialRecord indicates a pointer to a spatial record the cell does not contain
type ErrMissingSpatialRecord struct {
	SpatialID int64
}

func (e *ErrMissingSpatialRecord) Error() string {
	return fmt.Sprintf("missing spatial record %d", e.SpatialID)
}

// ErrUpdateTarget indicates a MODIFY instruction for a record the cell does not have
type ErrUpdateTarget struct {
	Kind string
	ID   string
}

func (e *ErrUpdateTarget) Error() string {
	return fmt.Sprintf("MODIFY: %s (%s) not found", e.Kind, e.ID)
}
