package parser

import (
	"encoding/binary"

	iso8211 "github.com/beetlebugorg/iso8211/pkg/v1"
)

// Feature represents a navigational object extracted from S-57 chart data
// S-57 §2.1: Feature objects contain geometric and attribute information
type Feature struct {
	// ID is the feature identification number (FOID FIDN)
	ID int64
	// ObjectClass is the S-57 object class acronym (e.g., "DEPCNT", "DEPARE", "LNDARE")
	ObjectClass string
	// Primitive is the FRID PRIM value: 1=Point, 2=Line, 3=Area, 255=N/A
	Primitive int
	// Geometry is the spatial representation of the feature
	Geometry Geometry
	// Attributes holds ATTF and NATF values keyed by attribute acronym
	Attributes map[string]interface{}
}

// spatialRef represents a feature-to-spatial pointer with orientation
// S-57 §7.6.8: FSPT field contains NAME (RCNM + RCID) + ORNT + USAG + MASK
type spatialRef struct {
	RCNM        int   // Target record type (110, 120, 130, 140)
	RCID        int64 // Spatial record ID
	Orientation int   // 1=Forward, 2=Reverse, 255=Null
	Usage       int   // 1=Exterior, 2=Interior, 3=Exterior truncated
	Mask        int   // 1=Mask, 2=Show, 255=Null
}

// featureRecord represents a parsed S-57 feature record
// S-57 §7.6: Feature records contain feature identification and attributes
type featureRecord struct {
	ID            int64
	AGEN          uint16 // Producing agency from FOID
	FIDN          uint32 // Feature identification number from FOID
	FIDS          uint16 // Feature identification subdivision from FOID
	ObjectClass   int    // OBJL
	GeomPrim      int    // PRIM
	Group         int    // GRUP
	RecordVersion int    // RVER
	UpdateInstr   int    // RUIN
	Attributes    map[string]interface{}
	// DeletedAttributes lists attributes an update record removes.
	DeletedAttributes []string
	SpatialRefs       []spatialRef
}

func (f *featureRecord) key() featureID {
	return featureID{AGEN: f.AGEN, FIDN: f.FIDN, FIDS: f.FIDS}
}

// parseFeatureRecord extracts feature data from an ISO 8211 record.
// Returns nil if the record is not a feature record.
// S-57 §7.6.1: Feature records identified by FRID field
func parseFeatureRecord(record *iso8211.DataRecord, lexical lexicalLevels) *featureRecord {
	// RCNM(1) + RCID(4) + PRIM(1) + GRUP(1) + OBJL(2) + RVER(2) + RUIN(1)
	fridData, hasFRID := record.Fields["FRID"]
	if !hasFRID || len(fridData) < 12 || fridData[0] != 100 {
		return nil
	}

	featureRec := &featureRecord{
		GeomPrim:      int(fridData[5]),
		Group:         int(fridData[6]),
		ObjectClass:   int(binary.LittleEndian.Uint16(fridData[7:9])),
		RecordVersion: int(binary.LittleEndian.Uint16(fridData[9:11])),
		UpdateInstr:   int(fridData[11]),
		Attributes:    make(map[string]interface{}),
	}

	// S-57 §7.6.2: FOID = AGEN(2) + FIDN(4) + FIDS(2)
	if foidData, ok := record.Fields["FOID"]; ok && len(foidData) >= 8 {
		featureRec.AGEN = binary.LittleEndian.Uint16(foidData[0:2])
		featureRec.FIDN = binary.LittleEndian.Uint32(foidData[2:6])
		featureRec.FIDS = binary.LittleEndian.Uint16(foidData[6:8])
		featureRec.ID = int64(featureRec.FIDN)
	}

	if attfData, ok := record.Fields["ATTF"]; ok {
		values, deleted := parseAttributes(attfData, lexical.attf)
		for k, v := range values {
			featureRec.Attributes[k] = v
		}
		featureRec.DeletedAttributes = append(featureRec.DeletedAttributes, deleted...)
	}

	// National attributes (NOBJNM, NINFOM, ...) share the ATTF layout but use
	// the national lexical level, normally UCS-2.
	if natfData, ok := record.Fields["NATF"]; ok {
		values, deleted := parseAttributes(natfData, lexical.natf)
		for k, v := range values {
			featureRec.Attributes[k] = v
		}
		featureRec.DeletedAttributes = append(featureRec.DeletedAttributes, deleted...)
	}

	if fsptData, ok := record.Fields["FSPT"]; ok {
		featureRec.SpatialRefs = parseSpatialPointers(fsptData)
	}

	return featureRec
}

// parseAttributes decodes a repeating [ATTL(b12), ATVL(A)] group.
//
// ATVL is terminated by the unit terminator, which is one byte at lexical
// levels 0 and 1 and a UCS-2 code unit (0x1F 0x00) at level 2. Empty values
// are omitted. Attributes carrying the update "delete value" marker (0x7F)
// are returned in deleted instead.
//
// Reference: S-57 Part 3 §7.6.3 (ATTF) and §7.6.4 (NATF).
func parseAttributes(data []byte, level int) (attributes map[string]string, deleted []string) {
	attributes = make(map[string]string)

	width := 1
	if level == lexicalUCS2 {
		width = 2
	}

	offset := 0
	for offset+2 <= len(data) {
		// ATTL 30 (CATHAF) is 0x1E 0x00, so only a trailing 0x1E ends the field.
		if len(data)-offset <= width && data[offset] == fieldTerminator {
			break
		}
		attrCode := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
		offset += 2

		valueEnd := offset
		for valueEnd+width <= len(data) && !isTerminator(data[valueEnd:valueEnd+width]) {
			valueEnd += width
		}
		if valueEnd+width > len(data) {
			valueEnd = len(data)
		}

		raw := data[offset:valueEnd]
		name := AttributeCodeToString(attrCode)
		switch {
		case isDeleteMarker(raw, level):
			deleted = append(deleted, name)
		case len(raw) > 0:
			attributes[name] = decodeText(raw, level)
		}

		offset = valueEnd + width
	}

	return attributes, deleted
}

// isDeleteMarker reports whether raw is the update "delete value" marker,
// one 0x7F character at the lexical level.
func isDeleteMarker(raw []byte, level int) bool {
	if level == lexicalUCS2 {
		return len(raw) == 2 && raw[0] == 0x7F && raw[1] == 0
	}
	return len(raw) == 1 && raw[0] == 0x7F
}

func isTerminator(b []byte) bool {
	if b[0] != unitTerminator && b[0] != fieldTerminator {
		return false
	}
	return len(b) == 1 || b[1] == 0
}

// parseSpatialPointers extracts spatial record references from the FSPT field.
//
// Each entry is 8 bytes: NAME B(40) = RCNM(1) + RCID(4), then ORNT, USAG, MASK.
// S-57 §7.6.8
func parseSpatialPointers(data []byte) []spatialRef {
	refs := make([]spatialRef, 0, len(data)/8)

	for i := 0; i+7 < len(data); i += 8 {
		refs = append(refs, spatialRef{
			RCNM:        int(data[i]),
			RCID:        int64(binary.LittleEndian.Uint32(data[i+1 : i+5])),
			Orientation: int(data[i+5]),
			Usage:       int(data[i+6]),
			Mask:        int(data[i+7]),
		})
	}

	return refs
}
