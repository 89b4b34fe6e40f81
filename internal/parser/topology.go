package parser

// topology.go - edge/node resolution and ring assembly for line and area features

// spatialKey uniquely identifies a spatial record by (RCNM, RCID) pair
// S-57 §2.2.2 (31Main.pdf): RCID is unique within a record type, not globally
type spatialKey struct {
	RCNM int
	RCID int64
}

// edge represents a spatial edge record with its bounding nodes.
// S-57 §5.1.3.2 (31Main.pdf): Edges connect nodes to form boundaries
type edge struct {
	ID          int64
	Points      [][]float64 // SG2D shape points only, nodes excluded
	StartNodeID int64
	EndNodeID   int64
}

// topologyResolver resolves edges to coordinate sequences, caching edges
// across the features of one chart.
type topologyResolver struct {
	spatialRecords map[spatialKey]*spatialRecord
	edgeCache      map[int64]*edge
}

func newTopologyResolver(spatialRecords map[spatialKey]*spatialRecord) *topologyResolver {
	return &topologyResolver{
		spatialRecords: spatialRecords,
		edgeCache:      make(map[int64]*edge),
	}
}

// nodePosition returns the 2D position of a connected or isolated node.
func (r *topologyResolver) nodePosition(nodeID int64) ([]float64, bool) {
	for _, rcnm := range []spatialType{spatialTypeConnectedNode, spatialTypeIsolatedNode} {
		node, ok := r.spatialRecords[spatialKey{RCNM: int(rcnm), RCID: nodeID}]
		if ok && len(node.Coordinates) > 0 && len(node.Coordinates[0]) >= 2 {
			return []float64{node.Coordinates[0][0], node.Coordinates[0][1]}, true
		}
	}
	return nil, false
}

// loadEdge loads an edge from spatial records, with caching.
//
// Nodes are found from the VRPT topology indicator (1=begin, 2=end); when the
// producer left TOPI null the first node pointer is the start and the second
// the end.
func (r *topologyResolver) loadEdge(edgeID int64) (*edge, error) {
	if e, ok := r.edgeCache[edgeID]; ok {
		return e, nil
	}

	spatial, ok := r.spatialRecords[spatialKey{RCNM: int(spatialTypeEdge), RCID: edgeID}]
	if !ok {
		return nil, &ErrMissingSpatialRecord{SpatialID: edgeID}
	}

	var startNodeID, endNodeID int64
	for _, ptr := range spatial.VectorPointers {
		if ptr.TargetRCNM != int(spatialTypeConnectedNode) && ptr.TargetRCNM != int(spatialTypeIsolatedNode) {
			continue
		}
		switch {
		case ptr.Topology == 1:
			startNodeID = ptr.TargetRCID
		case ptr.Topology == 2:
			endNodeID = ptr.TargetRCID
		case startNodeID == 0:
			startNodeID = ptr.TargetRCID
		case endNodeID == 0:
			endNodeID = ptr.TargetRCID
		}
	}

	points := make([][]float64, 0, len(spatial.Coordinates))
	for _, coord := range spatial.Coordinates {
		if len(coord) >= 2 {
			points = append(points, []float64{coord[0], coord[1]})
		}
	}

	e := &edge{
		ID:          edgeID,
		Points:      points,
		StartNodeID: startNodeID,
		EndNodeID:   endNodeID,
	}
	r.edgeCache[edgeID] = e
	return e, nil
}

// edgeCoordinates returns start node + shape points + end node, reversed when
// the pointer orientation is 2.
func (r *topologyResolver) edgeCoordinates(edgeID int64, orientation int) ([][]float64, error) {
	e, err := r.loadEdge(edgeID)
	if err != nil {
		return nil, err
	}

	coords := make([][]float64, 0, len(e.Points)+2)
	if pos, ok := r.nodePosition(e.StartNodeID); ok {
		coords = append(coords, pos)
	}
	coords = append(coords, e.Points...)
	if pos, ok := r.nodePosition(e.EndNodeID); ok {
		coords = append(coords, pos)
	}

	if orientation == 2 {
		reversed := make([][]float64, len(coords))
		for i, c := range coords {
			reversed[len(coords)-1-i] = c
		}
		return reversed, nil
	}
	return coords, nil
}

// chain walks edge references in order and joins consecutive edges that share
// an end point. A gap starts a new part. With closeRings, a part is emitted as
// soon as it closes on itself and any part left open is closed explicitly;
// parts with fewer than four positions are dropped.
func (r *topologyResolver) chain(refs []spatialRef, closeRings bool) [][][]float64 {
	var parts [][][]float64
	var current [][]float64

	flush := func() {
		if closeRings {
			current = closeRing(current)
			if len(current) >= 4 {
				parts = append(parts, current)
			}
		} else if len(current) >= 2 {
			parts = append(parts, current)
		}
		current = nil
	}

	for _, ref := range refs {
		coords, err := r.edgeCoordinates(ref.RCID, ref.Orientation)
		if err != nil || len(coords) == 0 {
			continue
		}

		if len(current) > 0 {
			if samePosition(current[len(current)-1], coords[0]) {
				coords = coords[1:]
			} else {
				flush()
			}
		}
		current = append(current, coords...)

		if closeRings && len(current) >= 4 && samePosition(current[0], current[len(current)-1]) {
			flush()
		}
	}
	if len(current) > 0 {
		flush()
	}

	return parts
}

// exteriorFirst orders boundary references so that exterior edges (USAG 1 or 3)
// precede interior ones (USAG 2), keeping the original order within each group.
func exteriorFirst(refs []spatialRef) []spatialRef {
	ordered := make([]spatialRef, 0, len(refs))
	for _, ref := range refs {
		if ref.Usage != 2 {
			ordered = append(ordered, ref)
		}
	}
	for _, ref := range refs {
		if ref.Usage == 2 {
			ordered = append(ordered, ref)
		}
	}
	return ordered
}

func closeRing(ring [][]float64) [][]float64 {
	if len(ring) == 0 || samePosition(ring[0], ring[len(ring)-1]) {
		return ring
	}
	return append(ring, []float64{ring[0][0], ring[0][1]})
}

func samePosition(a, b []float64) bool {
	return len(a) >= 2 && len(b) >= 2 && a[0] == b[0] && a[1] == b[1]
}
