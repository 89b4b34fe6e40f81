package s57

// Feature represents a navigational object from an S-57 chart.
//
// Features include depth contours, buoys, lights, hazards, restricted areas,
// and all other objects defined in the S-57 Object Catalogue. The object class
// is also the name of the layer the feature belongs to.
type Feature struct {
	id          int64
	objectClass string
	geometry    Geometry
	attributes  map[string]interface{}
}

// NewFeature builds a feature from already-decoded parts.
func NewFeature(id int64, objectClass string, geometry Geometry, attributes map[string]interface{}) Feature {
	if attributes == nil {
		attributes = map[string]interface{}{}
	}
	return Feature{
		id:          id,
		objectClass: objectClass,
		geometry:    geometry,
		attributes:  attributes,
	}
}

// ID returns the feature identification number (FOID FIDN).
func (f *Feature) ID() int64 {
	return f.id
}

// ObjectClass returns the S-57 object class acronym.
//
// Common examples:
//   - "DEPCNT": Depth contour
//   - "DEPARE": Depth area
//   - "LNDARE": Land area
//   - "SOUNDG": Sounding
//   - "OBSTRN": Obstruction
func (f *Feature) ObjectClass() string {
	return f.objectClass
}

// Geometry returns the spatial representation of the feature.
func (f *Feature) Geometry() Geometry {
	return f.geometry
}

// Attributes returns all feature attributes as a map keyed by acronym.
func (f *Feature) Attributes() map[string]interface{} {
	return f.attributes
}

// Attribute returns a specific attribute value by name.
//
// Example:
//
//	if depth, ok := feature.Attribute("DRVAL1"); ok {
//	    fmt.Printf("Depth: %v meters\n", depth)
//	}
func (f *Feature) Attribute(name string) (interface{}, bool) {
	val, ok := f.attributes[name]
	return val, ok
}

// Geometry represents the spatial representation of a feature.
//
// Coordinates follow GeoJSON convention: [longitude, latitude] pairs, with an
// optional third depth value on soundings.
type Geometry struct {
	Type GeometryType

	// Coordinates holds point positions. More than one makes a multipoint.
	Coordinates [][]float64

	// Parts holds line parts, or polygon rings with the exterior ring first.
	Parts [][][]float64
}

// IsEmpty reports whether the geometry has no positions.
func (g Geometry) IsEmpty() bool {
	return len(g.Coordinates) == 0 && len(g.Parts) == 0
}

// GeometryType represents the type of geometry.
type GeometryType int

const (
	// GeometryTypeNone is carried by features without a location (PRIM=255).
	GeometryTypeNone GeometryType = iota

	// GeometryTypePoint represents one or more point locations.
	GeometryTypePoint

	// GeometryTypeLineString represents one or more connected lines.
	GeometryTypeLineString

	// GeometryTypePolygon represents a closed area.
	GeometryTypePolygon
)

// String returns the string representation of the geometry type.
func (g GeometryType) String() string {
	switch g {
	case GeometryTypePoint:
		return "Point"
	case GeometryTypeLineString:
		return "LineString"
	case GeometryTypePolygon:
		return "Polygon"
	default:
		return "None"
	}
}
