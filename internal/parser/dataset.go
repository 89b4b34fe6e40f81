package parser

import (
	"encoding/binary"

	iso8211 "github.com/beetlebugorg/iso8211/pkg/v1"
)

// ISO 8211 delimiters used inside S-57 fields.
const (
	unitTerminator  = 0x1F
	fieldTerminator = 0x1E
)

// datasetParams holds dataset-level parameters from the DSPM record.
// S-57 §7.3.2: Data Set Parameter Record
type datasetParams struct {
	COMF int32 // Coordinate multiplication factor (typically 10^7)
	SOMF int32 // Sounding (3D) multiplication factor (typically 10)
	HDAT int   // Horizontal geodetic datum
	VDAT int   // Vertical datum
	SDAT int   // Sounding datum
	CSCL int32 // Compilation scale
	COUN int   // Coordinate units, 1=lat/lon
}

func defaultDatasetParams() datasetParams {
	return datasetParams{
		COMF: 10000000,
		SOMF: 10,
		COUN: 1,
	}
}

func extractDatasetParams(isoFile *iso8211.ISO8211File) datasetParams {
	for _, record := range isoFile.Records {
		if dspmData, ok := record.Fields["DSPM"]; ok {
			return parseDSPM(dspmData)
		}
	}
	return defaultDatasetParams()
}

// parseDSPM parses the DSPM field per S-57 §7.3.2.1
//
//	RCNM (1)  RCID (4)  HDAT (1)  VDAT (1)  SDAT (1)  CSCL (4)
//	DUNI (1)  HUNI (1)  PUNI (1)  COUN (1)  COMF (4)  SOMF (4)  COMT (A)
func parseDSPM(data []byte) datasetParams {
	params := defaultDatasetParams()

	if len(data) < 24 || data[0] != 20 {
		return params
	}

	params.HDAT = int(data[5])
	params.VDAT = int(data[6])
	params.SDAT = int(data[7])
	params.CSCL = int32(binary.LittleEndian.Uint32(data[8:12]))
	params.COUN = int(data[15])
	params.COMF = int32(binary.LittleEndian.Uint32(data[16:20]))
	params.SOMF = int32(binary.LittleEndian.Uint32(data[20:24]))

	if params.COMF <= 0 {
		params.COMF = 10000000
	}
	if params.SOMF <= 0 {
		params.SOMF = 10
	}

	return params
}

// convertCoordinate scales an integer coordinate by its multiplication factor.
func convertCoordinate(value int32, factor int32) float64 {
	if factor <= 0 {
		factor = 1
	}
	return float64(value) / float64(factor)
}
