package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	iso8211 "github.com/beetlebugorg/iso8211/pkg/v1"
)

// UpdateInstruction represents the RUIN (Record Update Instruction) field values
// S-57 Part 3 §8.4.2.2 and §8.4.3.2
type UpdateInstruction int

const (
	UpdateInsert UpdateInstruction = 1
	UpdateDelete UpdateInstruction = 2
	UpdateModify UpdateInstruction = 3
)

// featureID uniquely identifies a feature using the composite key from FOID.
// Per S-57 §7.6.2 the identifier is (AGEN, FIDN, FIDS), not FIDN alone.
type featureID struct {
	AGEN uint16
	FIDN uint32
	FIDS uint16
}

// chartData holds the record-level state of a cell while updates are merged.
type chartData struct {
	params         datasetParams
	lexical        lexicalLevels
	metadata       *datasetMetadata
	features       []*featureRecord
	featuresByID   map[featureID]*featureRecord
	spatialRecords map[spatialKey]*spatialRecord
	updates        int
}

// UpdateFiles lists the sequential update files that belong to a base cell.
func UpdateFiles(baseFilename string) ([]string, error) {
	return findUpdateFiles(baseFilename)
}

// findUpdateFiles discovers sequential update files for a base cell.
//
// Given "GB5X01SW.000", looks for "GB5X01SW.001", "GB5X01SW.002", etc. in the
// same directory and stops at the first gap.
func findUpdateFiles(baseFilename string) ([]string, error) {
	dir := filepath.Dir(baseFilename)
	base := filepath.Base(baseFilename)
	baseName := strings.TrimSuffix(base, filepath.Ext(base))

	var updates []string
	for updateNum := 1; updateNum <= 999; updateNum++ {
		updateFile := filepath.Join(dir, fmt.Sprintf("%s.%03d", baseName, updateNum))

		_, err := os.Stat(updateFile)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error checking for update file %s: %w", updateFile, err)
		}
		updates = append(updates, updateFile)
	}

	return updates, nil
}

// applyUpdates applies update files in order at the record level, before any
// geometry is built.
func applyUpdates(data *chartData, updateFiles []string) error {
	for _, updateFile := range updateFiles {
		isoFile, err := readISO8211(updateFile)
		if err != nil {
			return fmt.Errorf("update %s: %w", updateFile, err)
		}
		if err := applyUpdate(data, isoFile); err != nil {
			return fmt.Errorf("update %s: %w", updateFile, err)
		}
	}
	return nil
}

func applyUpdate(data *chartData, isoFile *iso8211.ISO8211File) error {
	lexical := data.lexical
	for _, record := range isoFile.Records {
		if dssi, ok := record.Fields["DSSI"]; ok {
			lexical = parseDSSI(dssi)
			break
		}
	}

	for _, record := range isoFile.Records {
		if featureRec := parseFeatureRecord(record, lexical); featureRec != nil {
			if err := applyFeatureUpdate(data, featureRec); err != nil {
				return err
			}
			continue
		}
		if spatialRec := parseSpatialRecord(record, data.params); spatialRec != nil {
			if err := applySpatialUpdate(data, spatialRec); err != nil {
				return err
			}
		}
	}

	// Updates may advance UPDN, UADT and ISDT. DSNM and EDTN never change.
	if updated := extractDSID(isoFile); updated != nil {
		if updated.updn != "" {
			data.metadata.updn = updated.updn
		}
		if updated.uadt != "" {
			data.metadata.uadt = updated.uadt
		}
		if updated.isdt != "" {
			data.metadata.isdt = updated.isdt
		}
	}

	return nil
}

// applyFeatureUpdate handles INSERT/DELETE/MODIFY for features.
func applyFeatureUpdate(data *chartData, featureRec *featureRecord) error {
	key := featureRec.key()
	existing, exists := data.featuresByID[key]

	switch UpdateInstruction(featureRec.UpdateInstr) {
	case UpdateInsert:
		// Some producers insert records the base already has; treat as upsert.
		if exists {
			*existing = *featureRec
			return nil
		}
		data.features = append(data.features, featureRec)
		data.featuresByID[key] = featureRec

	case UpdateDelete:
		if !exists {
			return nil
		}
		delete(data.featuresByID, key)
		for i, f := range data.features {
			if f == existing {
				data.features = append(data.features[:i], data.features[i+1:]...)
				break
			}
		}

	case UpdateModify:
		if !exists {
			return &ErrUpdateTarget{Kind: "feature", ID: fmt.Sprintf("AGEN=%d FIDN=%d FIDS=%d", key.AGEN, key.FIDN, key.FIDS)}
		}
		// A modify record carries only what changes.
		for k, v := range featureRec.Attributes {
			existing.Attributes[k] = v
		}
		for _, k := range featureRec.DeletedAttributes {
			delete(existing.Attributes, k)
		}
		if len(featureRec.SpatialRefs) > 0 {
			existing.SpatialRefs = featureRec.SpatialRefs
		}
		existing.RecordVersion = featureRec.RecordVersion

	default:
		return fmt.Errorf("unknown RUIN value for feature: %d", featureRec.UpdateInstr)
	}

	return nil
}

// applySpatialUpdate handles INSERT/DELETE/MODIFY for vector records.
func applySpatialUpdate(data *chartData, spatialRec *spatialRecord) error {
	key := spatialRec.key()
	existing, exists := data.spatialRecords[key]

	switch UpdateInstruction(spatialRec.UpdateInstr) {
	case UpdateInsert:
		data.spatialRecords[key] = spatialRec

	case UpdateDelete:
		delete(data.spatialRecords, key)

	case UpdateModify:
		if !exists {
			return &ErrUpdateTarget{Kind: "spatial record", ID: fmt.Sprintf("RCNM=%d RCID=%d", key.RCNM, key.RCID)}
		}
		if len(spatialRec.Coordinates) > 0 {
			existing.Coordinates = spatialRec.Coordinates
		}
		if len(spatialRec.VectorPointers) > 0 {
			existing.VectorPointers = spatialRec.VectorPointers
		}
		existing.RecordVersion = spatialRec.RecordVersion

	default:
		return fmt.Errorf("unknown RUIN value for spatial record: %d", spatialRec.UpdateInstr)
	}

	return nil
}
