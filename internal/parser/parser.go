package parser

import (
	"encoding/binary"
	"fmt"
	"slices"
	"strings"

	iso8211 "github.com/beetlebugorg/iso8211/pkg/v1"
)

// Parser parses S-57 ENC files and extracts features.
//
// S-57 defines an "exchange set" as a collection of files for transferring hydrographic data.
// Each file contains records (metadata, features, spatial data) structured per ISO 8211.
// This parser reads the ISO 8211 structure and interprets it according to S-57 semantics.
//
// References:
//   - S-57 Part 1 (31Main.pdf p1.1): Definition of "exchange set"
//   - S-57 Part 3 §7 (31Main.pdf p3.31): Complete record and field structure specification
type Parser interface {
	// Parse reads an S-57 file with default options.
	Parse(filename string) (*Chart, error)

	// ParseWithOptions parses with custom options.
	ParseWithOptions(filename string, opts ParseOptions) (*Chart, error)
}

// ParseOptions configures parsing behavior
type ParseOptions struct {
	// SkipUnknownFeatures drops features whose geometry cannot be built
	// instead of failing the whole cell.
	SkipUnknownFeatures bool

	// ValidateGeometry checks every coordinate against geographic bounds.
	ValidateGeometry bool

	// ObjectClassFilter limits extraction to these object classes. Empty means all.
	ObjectClassFilter []string

	// ApplyUpdates discovers and applies update files (.001, .002, ...) that sit
	// next to the base cell.
	ApplyUpdates bool
}

// DefaultParseOptions returns parse options with defaults
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		SkipUnknownFeatures: true,
		ValidateGeometry:    true,
		ApplyUpdates:        true,
	}
}

type defaultParser struct{}

// NewParser creates a new S-57 parser
func NewParser() Parser {
	return &defaultParser{}
}

// Parse reads an S-57 file and returns extracted chart
func (p *defaultParser) Parse(filename string) (*Chart, error) {
	return p.ParseWithOptions(filename, DefaultParseOptions())
}

// ParseWithOptions parses the base cell, merges any update files and builds geometries.
func (p *defaultParser) ParseWithOptions(filename string, opts ParseOptions) (*Chart, error) {
	data, err := parseBaseFile(filename)
	if err != nil {
		return nil, err
	}

	if opts.ApplyUpdates {
		updateFiles, err := findUpdateFiles(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to discover update files: %w", err)
		}
		if err := applyUpdates(data, updateFiles); err != nil {
			return nil, fmt.Errorf("failed to apply updates: %w", err)
		}
		data.updates = len(updateFiles)
	}

	return buildChart(data, opts)
}

// parseBaseFile extracts raw feature and spatial records without building geometries,
// so that update files can be merged at the record level first.
func parseBaseFile(filename string) (*chartData, error) {
	isoFile, err := readISO8211(filename)
	if err != nil {
		return nil, err
	}

	data := &chartData{
		params:         extractDatasetParams(isoFile),
		metadata:       extractDSID(isoFile),
		featuresByID:   make(map[featureID]*featureRecord),
		spatialRecords: make(map[spatialKey]*spatialRecord),
	}
	if data.metadata == nil {
		data.metadata = &datasetMetadata{}
	}
	data.lexical = extractDSSI(isoFile)

	for _, record := range isoFile.Records {
		if featureRec := parseFeatureRecord(record, data.lexical); featureRec != nil {
			data.features = append(data.features, featureRec)
			data.featuresByID[featureRec.key()] = featureRec
			continue
		}
		if spatialRec := parseSpatialRecord(record, data.params); spatialRec != nil {
			data.spatialRecords[spatialRec.key()] = spatialRec
		}
	}

	return data, nil
}

func readISO8211(filename string) (*iso8211.ISO8211File, error) {
	reader, err := iso8211.NewReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	isoFile, err := reader.Parse()
	if err != nil {
		return nil, fmt.Errorf("failed to parse ISO 8211: %w", err)
	}
	return isoFile, nil
}

// buildChart constructs the final Chart once all updates have been merged.
func buildChart(data *chartData, opts ParseOptions) (*Chart, error) {
	features := make([]Feature, 0, len(data.features))

	for _, featureRec := range data.features {
		objClass, err := ObjectClassToString(featureRec.ObjectClass)
		if err != nil {
			if opts.SkipUnknownFeatures {
				continue
			}
			return nil, err
		}

		if len(opts.ObjectClassFilter) > 0 && !slices.Contains(opts.ObjectClassFilter, objClass) {
			continue
		}

		geometry, err := constructGeometry(featureRec, data.spatialRecords)
		if err == nil && opts.ValidateGeometry {
			err = ValidateGeometry(&geometry)
		}
		if err != nil {
			if opts.SkipUnknownFeatures {
				continue
			}
			return nil, fmt.Errorf("feature FIDN=%d, ObjectClass=%s (OBJL=%d), PRIM=%d: %w",
				featureRec.FIDN, objClass, featureRec.ObjectClass, featureRec.GeomPrim, err)
		}

		features = append(features, Feature{
			ID:          featureRec.ID,
			ObjectClass: objClass,
			Primitive:   featureRec.GeomPrim,
			Geometry:    geometry,
			Attributes:  featureRec.Attributes,
		})
	}

	return &Chart{
		metadata: data.metadata,
		params:   data.params,
		updates:  data.updates,
		Features: features,
	}, nil
}

// extractDSID extracts and parses the DSID field from the ISO 8211 file.
//
// DSID (Data Set Identification) is the first field in every S-57 dataset's general
// information record.
//
// Reference: S-57 Part 3 §7.3.1.1 (31Main.pdf p3.34-3.35, table 7.4).
func extractDSID(isoFile *iso8211.ISO8211File) *datasetMetadata {
	for _, record := range isoFile.Records {
		if dsidData, ok := record.Fields["DSID"]; ok {
			return parseDSID(dsidData)
		}
	}
	return nil
}

// extractDSSI returns the attribute lexical levels declared by the DSSI field.
//
// Reference: S-57 Part 3 §7.3.1.2 (31Main.pdf p3.35, table 7.5).
func extractDSSI(isoFile *iso8211.ISO8211File) lexicalLevels {
	for _, record := range isoFile.Records {
		if dssiData, ok := record.Fields["DSSI"]; ok {
			return parseDSSI(dssiData)
		}
	}
	return defaultLexicalLevels()
}

// parseDSSI reads DSTR(b11), AALL(b11) and NALL(b11) from the start of the field.
// The record counts that follow are not needed.
func parseDSSI(data []byte) lexicalLevels {
	levels := defaultLexicalLevels()
	if len(data) >= 2 {
		levels.attf = int(data[1])
	}
	if len(data) >= 3 {
		levels.natf = int(data[2])
	}
	return levels
}

// parseDSID parses DSID field binary data into a datasetMetadata structure.
//
// Binary fields (RCNM, RCID, EXPP, INTU) come first at fixed offsets, followed by
// ASCII fields terminated by 0x1F, three fixed-width ASCII dates/editions, and
// binary PRSP/PROF/AGEN in between.
//
// Format codes (table 7.4):
//   - b11 = 1-byte binary
//   - b12 = 2-byte binary (uint16 LE)
//   - b14 = 4-byte binary (uint32 LE)
//   - A( ) = variable-length ASCII
//   - A(8), R(4) = fixed-length ASCII
func parseDSID(data []byte) *datasetMetadata {
	dsid := &datasetMetadata{}

	// RCNM(1) + RCID(4) + EXPP(1) + INTU(1)
	if len(data) < 7 {
		return dsid
	}

	dsid.rcnm = int(data[0])
	dsid.rcid = int64(binary.LittleEndian.Uint32(data[1:5]))
	dsid.expp = int(data[5])
	dsid.intu = int(data[6])
	offset := 7

	extractASCII := func() string {
		if offset >= len(data) {
			return ""
		}
		start := offset
		for offset < len(data) && data[offset] != unitTerminator {
			offset++
		}
		result := string(data[start:offset])
		if offset < len(data) {
			offset++
		}
		return result
	}
	extractFixed := func(n int) string {
		if offset+n > len(data) {
			return ""
		}
		s := strings.TrimRight(string(data[offset:offset+n]), "\x00 \x1f")
		offset += n
		return s
	}
	extractByte := func() int {
		if offset >= len(data) {
			return 0
		}
		b := int(data[offset])
		offset++
		return b
	}

	dsid.dsnm = extractASCII()
	dsid.edtn = extractASCII()
	dsid.updn = extractASCII()
	dsid.uadt = extractFixed(8)
	dsid.isdt = extractFixed(8)
	dsid.sted = extractFixed(4)
	dsid.prsp = extractByte()
	dsid.psdn = extractASCII()
	dsid.pred = extractASCII()
	dsid.prof = extractByte()
	if offset+2 <= len(data) {
		dsid.agen = int(binary.LittleEndian.Uint16(data[offset : offset+2]))
		offset += 2
	}
	dsid.comt = strings.TrimRight(extractASCII(), string(rune(fieldTerminator)))

	return dsid
}
