package parser

import (
	"encoding/binary"

	iso8211 "github.com/beetlebugorg/iso8211/pkg/v1"
)

// vectorPointer represents a pointer to another spatial record
// S-57 §7.7.1.4: Vector Record Pointer (VRPT) - 9 bytes per pointer
type vectorPointer struct {
	TargetRCNM  int   // 110=isolated node, 120=connected node, 130=edge, 140=face
	TargetRCID  int64 // Record ID of target
	Orientation int   // 1=forward, 2=reverse, 255=null
	Usage       int   // 1=Exterior, 2=Interior, 3=Exterior boundary truncated
	Topology    int   // 1=begin, 2=end, 3=left face, 4=right face, 255=null
	Mask        int   // 1=mask, 2=show, 255=null
}

// spatialRecord represents a parsed S-57 spatial (vector) record
type spatialRecord struct {
	ID             int64
	RecordType     spatialType
	Coordinates    [][]float64 // [lon, lat] or [lon, lat, depth]
	VectorPointers []vectorPointer
	RecordVersion  int
	UpdateInstr    int
}

func (s *spatialRecord) key() spatialKey {
	return spatialKey{RCNM: int(s.RecordType), RCID: s.ID}
}

type spatialType int

// S-57 Appendix B.1: RCNM values for spatial records
const (
	spatialTypeIsolatedNode  spatialType = 110
	spatialTypeConnectedNode spatialType = 120
	spatialTypeEdge          spatialType = 130
	spatialTypeFace          spatialType = 140
)

// parseSpatialRecord extracts spatial data from an ISO 8211 record.
// Returns nil if the record is not a vector record.
//
//	VRID: RCNM(1) + RCID(4) + RVER(2) + RUIN(1)
//
// S-57 §7.7.1.1
func parseSpatialRecord(record *iso8211.DataRecord, params datasetParams) *spatialRecord {
	vridData, hasVRID := record.Fields["VRID"]
	if !hasVRID || len(vridData) < 8 {
		return nil
	}

	spatialRec := &spatialRecord{
		RecordType:    spatialType(vridData[0]),
		ID:            int64(binary.LittleEndian.Uint32(vridData[1:5])),
		RecordVersion: int(binary.LittleEndian.Uint16(vridData[5:7])),
		UpdateInstr:   int(vridData[7]),
	}

	if sg2dData, ok := record.Fields["SG2D"]; ok {
		spatialRec.Coordinates = parseCoordinates2D(sg2dData, params.COMF)
	}
	if sg3dData, ok := record.Fields["SG3D"]; ok {
		spatialRec.Coordinates = parseCoordinates3D(sg3dData, params.COMF, params.SOMF)
	}
	if vrptData, ok := record.Fields["VRPT"]; ok {
		spatialRec.VectorPointers = parseVectorPointers(vrptData)
	}

	return spatialRec
}

// parseCoordinates2D decodes SG2D coordinate pairs. The standard lists YCOO
// before XCOO, but cells read through the ISO 8211 reader yield longitude
// first, so pairs are taken as [x, y].
// S-57 §7.7.1.6
func parseCoordinates2D(data []byte, comf int32) [][]float64 {
	coords := make([][]float64, 0, len(data)/8)

	for offset := 0; offset+8 <= len(data); offset += 8 {
		x := int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
		y := int32(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		coords = append(coords, []float64{convertCoordinate(x, comf), convertCoordinate(y, comf)})
	}

	return coords
}

// parseCoordinates3D decodes SG3D triples in the same [x, y] order as SG2D,
// followed by VE3D scaled by SOMF.
// S-57 §7.7.1.7
func parseCoordinates3D(data []byte, comf int32, somf int32) [][]float64 {
	coords := make([][]float64, 0, len(data)/12)

	for offset := 0; offset+12 <= len(data); offset += 12 {
		x := int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
		y := int32(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		z := int32(binary.LittleEndian.Uint32(data[offset+8 : offset+12]))
		coords = append(coords, []float64{
			convertCoordinate(x, comf),
			convertCoordinate(y, comf),
			convertCoordinate(z, somf),
		})
	}

	return coords
}

// parseVectorPointers extracts vector record pointers from the VRPT field.
// S-57 §7.7.1.4
func parseVectorPointers(data []byte) []vectorPointer {
	pointers := make([]vectorPointer, 0, len(data)/9)

	for i := 0; i+8 < len(data); i += 9 {
		pointers = append(pointers, vectorPointer{
			TargetRCNM:  int(data[i]),
			TargetRCID:  int64(binary.LittleEndian.Uint32(data[i+1 : i+5])),
			Orientation: int(data[i+5]),
			Usage:       int(data[i+6]),
			Topology:    int(data[i+7]),
			Mask:        int(data[i+8]),
		})
	}

	return pointers
}
