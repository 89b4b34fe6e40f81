package parser

import (
	"encoding/binary"
	"unicode/utf16"

	iso8211 "github.com/beetlebugorg/iso8211/pkg/v1"
)

// Byte builders for hand-made S-57 records used across the parser tests.

func fridBytes(prim int, objl int, ruin UpdateInstruction) []byte {
	data := make([]byte, 12)
	data[0] = 100
	binary.LittleEndian.PutUint32(data[1:5], 1)
	data[5] = byte(prim)
	data[6] = 2
	binary.LittleEndian.PutUint16(data[7:9], uint16(objl))
	binary.LittleEndian.PutUint16(data[9:11], 1)
	data[11] = byte(ruin)
	return data
}

func foidBytes(agen uint16, fidn uint32, fids uint16) []byte {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint16(data[0:2], agen)
	binary.LittleEndian.PutUint32(data[2:6], fidn)
	binary.LittleEndian.PutUint16(data[6:8], fids)
	return data
}

type attr struct {
	code  int
	value string
}

func attfBytes(attrs ...attr) []byte {
	var data []byte
	for _, a := range attrs {
		data = binary.LittleEndian.AppendUint16(data, uint16(a.code))
		data = append(data, a.value...)
		data = append(data, unitTerminator)
	}
	return append(data, fieldTerminator)
}

func natfBytes(attrs ...attr) []byte {
	var data []byte
	for _, a := range attrs {
		data = binary.LittleEndian.AppendUint16(data, uint16(a.code))
		for _, u := range utf16.Encode([]rune(a.value)) {
			data = binary.LittleEndian.AppendUint16(data, u)
		}
		data = append(data, unitTerminator, 0)
	}
	return append(data, fieldTerminator, 0)
}

func fsptBytes(refs ...spatialRef) []byte {
	var data []byte
	for _, r := range refs {
		data = append(data, byte(r.RCNM))
		data = binary.LittleEndian.AppendUint32(data, uint32(r.RCID))
		data = append(data, byte(r.Orientation), byte(r.Usage), byte(r.Mask))
	}
	return data
}

func vridBytes(rcnm spatialType, rcid int64, ruin UpdateInstruction) []byte {
	data := make([]byte, 8)
	data[0] = byte(rcnm)
	binary.LittleEndian.PutUint32(data[1:5], uint32(rcid))
	binary.LittleEndian.PutUint16(data[5:7], 1)
	data[7] = byte(ruin)
	return data
}

func sg2dBytes(comf float64, coords ...[2]float64) []byte {
	var data []byte
	for _, c := range coords {
		data = binary.LittleEndian.AppendUint32(data, uint32(int32(c[0]*comf)))
		data = binary.LittleEndian.AppendUint32(data, uint32(int32(c[1]*comf)))
	}
	return data
}

func featureDataRecord(fields map[string][]byte) *iso8211.DataRecord {
	return &iso8211.DataRecord{Fields: fields}
}
