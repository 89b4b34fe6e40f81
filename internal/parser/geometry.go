package parser

// GeometryType represents the type of geometry.
type GeometryType int

const (
	// GeometryTypeNone is used for PRIM=255 features (meta and collection objects).
	GeometryTypeNone GeometryType = iota
	GeometryTypePoint
	GeometryTypeLineString
	GeometryTypePolygon
)

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

// Geometry is the spatial representation of a feature in [lon, lat] order.
//
// Points use Coordinates; more than one position makes a multipoint (soundings
// carry a third depth value). Lines and polygons use Parts: line parts in edge
// order, or polygon rings with the exterior first.
type Geometry struct {
	Type        GeometryType
	Coordinates [][]float64
	Parts       [][][]float64
}

// IsEmpty reports whether the geometry has no positions.
func (g Geometry) IsEmpty() bool {
	return len(g.Coordinates) == 0 && len(g.Parts) == 0
}

// constructGeometry builds a Geometry from feature and spatial records
// S-57 §2.1: Features reference spatial records to build geometry
func constructGeometry(featureRec *featureRecord, spatialRecords map[spatialKey]*spatialRecord) (Geometry, error) {
	switch featureRec.GeomPrim {
	case 1:
		return constructPointGeometry(featureRec, spatialRecords), nil
	case 2:
		return constructLineGeometry(featureRec, spatialRecords), nil
	case 3:
		return constructPolygonGeometry(featureRec, spatialRecords), nil
	case 255:
		return Geometry{Type: GeometryTypeNone}, nil
	default:
		return Geometry{}, &ErrInvalidGeometry{Reason: "unknown geometric primitive"}
	}
}

// lookupSpatial resolves an FSPT pointer. Pointers normally name their target
// record type; when RCNM is missing the candidate types are tried in order.
func lookupSpatial(ref spatialRef, spatialRecords map[spatialKey]*spatialRecord, candidates ...spatialType) *spatialRecord {
	if ref.RCNM != 0 {
		return spatialRecords[spatialKey{RCNM: ref.RCNM, RCID: ref.RCID}]
	}
	for _, rcnm := range candidates {
		if sp, ok := spatialRecords[spatialKey{RCNM: int(rcnm), RCID: ref.RCID}]; ok {
			return sp
		}
	}
	return nil
}

// constructPointGeometry collects every position of every referenced node.
// Isolated nodes come first so that SG3D soundings are found before any
// connected node sharing the RCID.
func constructPointGeometry(featureRec *featureRecord, spatialRecords map[spatialKey]*spatialRecord) Geometry {
	coords := make([][]float64, 0, len(featureRec.SpatialRefs))

	for _, ref := range featureRec.SpatialRefs {
		spatial := lookupSpatial(ref, spatialRecords, spatialTypeIsolatedNode, spatialTypeConnectedNode)
		if spatial == nil {
			continue
		}
		coords = append(coords, spatial.Coordinates...)
	}

	return Geometry{Type: GeometryTypePoint, Coordinates: coords}
}

// constructLineGeometry chains referenced edges into one or more parts.
func constructLineGeometry(featureRec *featureRecord, spatialRecords map[spatialKey]*spatialRecord) Geometry {
	resolver := newTopologyResolver(spatialRecords)

	edgeRefs := make([]spatialRef, 0, len(featureRec.SpatialRefs))
	for _, ref := range featureRec.SpatialRefs {
		spatial := lookupSpatial(ref, spatialRecords, spatialTypeEdge)
		if spatial != nil && spatial.RecordType == spatialTypeEdge {
			edgeRefs = append(edgeRefs, spatialRef{RCNM: int(spatialTypeEdge), RCID: spatial.ID, Orientation: ref.Orientation})
		}
	}

	return Geometry{Type: GeometryTypeLineString, Parts: resolver.chain(edgeRefs, false)}
}

// constructPolygonGeometry assembles area boundaries into rings.
//
// Area features reference edges directly (chain-node topology) or faces whose
// VRPT lists the boundary edges (full topology).
// S-57 §4.7.3 (31Main.pdf)
func constructPolygonGeometry(featureRec *featureRecord, spatialRecords map[spatialKey]*spatialRecord) Geometry {
	resolver := newTopologyResolver(spatialRecords)

	edgeRefs := make([]spatialRef, 0, len(featureRec.SpatialRefs))
	for _, ref := range featureRec.SpatialRefs {
		spatial := lookupSpatial(ref, spatialRecords, spatialTypeFace, spatialTypeEdge)
		if spatial == nil {
			continue
		}

		switch spatial.RecordType {
		case spatialTypeFace:
			for _, ptr := range spatial.VectorPointers {
				if ptr.TargetRCNM == int(spatialTypeEdge) {
					edgeRefs = append(edgeRefs, spatialRef{
						RCNM:        ptr.TargetRCNM,
						RCID:        ptr.TargetRCID,
						Orientation: ptr.Orientation,
						Usage:       ptr.Usage,
						Mask:        ptr.Mask,
					})
				}
			}
		case spatialTypeEdge:
			edgeRefs = append(edgeRefs, ref)
		}
	}

	return Geometry{Type: GeometryTypePolygon, Parts: resolver.chain(exteriorFirst(edgeRefs), true)}
}
