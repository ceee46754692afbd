// ABOUTME: Minimal raw FIT message scanner for fields the typed decoder discards.
// ABOUTME: Walks definition and data records and collects selected session fields.
package fitfile

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tormoder/fit/dyncrc16"
)

const (
	compressedHeaderMask = 0x80
	compressedLocalMask  = 0x60
	definitionMask       = 0x40
	devDataMask          = 0x20
	localMesgMask        = 0x0F

	headerSizeNoCRC = 12
	headerSizeCRC   = 14

	sessionMesgNum = 18
)

type rawField struct {
	num  uint8
	size uint8
	base uint8
}

type rawDefinition struct {
	global    uint16
	arch      binary.ByteOrder
	fields    []rawField
	devFields []uint8 // sizes only
}

// scanSessionFields returns the numeric value of each wanted field found in the
// first session message. Invalid values are omitted.
func scanSessionFields(data []byte, wanted []uint8) (map[uint8]float64, error) {
	found := make(map[uint8]float64)
	if len(wanted) == 0 {
		return found, nil
	}
	want := make(map[uint8]bool, len(wanted))
	for _, w := range wanted {
		want[w] = true
	}

	body, err := rawBody(data)
	if err != nil {
		return nil, err
	}

	defs := make(map[uint8]rawDefinition)
	pos := 0
	for pos < len(body) {
		header := body[pos]
		pos++

		var local uint8
		switch {
		case header&compressedHeaderMask == compressedHeaderMask:
			local = (header & compressedLocalMask) >> 5
		case header&definitionMask == definitionMask:
			def, next, err := readDefinition(body, pos, header)
			if err != nil {
				return nil, err
			}
			defs[header&localMesgMask] = def
			pos = next
			continue
		default:
			local = header & localMesgMask
		}

		def, ok := defs[local]
		if !ok {
			return nil, fmt.Errorf("data message for undefined local type %d", local)
		}
		size := 0
		for _, f := range def.fields {
			size += int(f.size)
		}
		for _, s := range def.devFields {
			size += int(s)
		}
		if pos+size > len(body) {
			return nil, fmt.Errorf("data message truncated at byte %d", pos)
		}

		if def.global == sessionMesgNum {
			off := pos
			for _, f := range def.fields {
				raw := body[off : off+int(f.size)]
				off += int(f.size)
				if !want[f.num] {
					continue
				}
				if v, ok := decodeNumber(raw, f.base, def.arch); ok {
					found[f.num] = v
				}
			}
			return found, nil
		}
		pos += size
	}
	return found, nil
}

// rawBody validates the header and file CRC and returns the data section.
func rawBody(data []byte) ([]byte, error) {
	if len(data) < headerSizeNoCRC+2 {
		return nil, fmt.Errorf("file too short: %d bytes", len(data))
	}
	hsize := int(data[0])
	if hsize != headerSizeNoCRC && hsize != headerSizeCRC {
		return nil, fmt.Errorf("invalid header size %d", hsize)
	}
	if string(data[8:12]) != ".FIT" {
		return nil, fmt.Errorf("missing .FIT signature")
	}
	dataSize := int(binary.LittleEndian.Uint32(data[4:8]))
	end := hsize + dataSize
	if len(data) < end+2 {
		return nil, fmt.Errorf("file truncated: have %d bytes, need %d", len(data), end+2)
	}
	stored := binary.LittleEndian.Uint16(data[end : end+2])
	if computed := dyncrc16.Checksum(data[:end]); stored != computed {
		return nil, fmt.Errorf("file crc mismatch: stored 0x%04X computed 0x%04X", stored, computed)
	}
	return data[hsize:end], nil
}

func readDefinition(body []byte, pos int, header byte) (rawDefinition, int, error) {
	if pos+5 > len(body) {
		return rawDefinition{}, 0, fmt.Errorf("definition truncated at byte %d", pos)
	}
	var def rawDefinition
	switch body[pos+1] {
	case 0:
		def.arch = binary.LittleEndian
	case 1:
		def.arch = binary.BigEndian
	default:
		return rawDefinition{}, 0, fmt.Errorf("invalid architecture byte %d", body[pos+1])
	}
	def.global = def.arch.Uint16(body[pos+2 : pos+4])
	n := int(body[pos+4])
	pos += 5

	if pos+3*n > len(body) {
		return rawDefinition{}, 0, fmt.Errorf("field definitions truncated at byte %d", pos)
	}
	def.fields = make([]rawField, n)
	for i := 0; i < n; i++ {
		def.fields[i] = rawField{num: body[pos], size: body[pos+1], base: body[pos+2]}
		pos += 3
	}

	if header&devDataMask == devDataMask {
		if pos >= len(body) {
			return rawDefinition{}, 0, fmt.Errorf("developer definitions truncated at byte %d", pos)
		}
		dn := int(body[pos])
		pos++
		if pos+3*dn > len(body) {
			return rawDefinition{}, 0, fmt.Errorf("developer definitions truncated at byte %d", pos)
		}
		def.devFields = make([]uint8, dn)
		for i := 0; i < dn; i++ {
			def.devFields[i] = body[pos+1]
			pos += 3
		}
	}
	return def, pos, nil
}

// decodeNumber reads the first element of a numeric field.
func decodeNumber(raw []byte, base uint8, arch binary.ByteOrder) (float64, bool) {
	switch base & 0x1F {
	case 0x00, 0x02: // enum, uint8
		if len(raw) < 1 || raw[0] == 0xFF {
			return 0, false
		}
		return float64(raw[0]), true
	case 0x0A: // uint8z
		if len(raw) < 1 || raw[0] == 0 {
			return 0, false
		}
		return float64(raw[0]), true
	case 0x01: // sint8
		if len(raw) < 1 || raw[0] == 0x7F {
			return 0, false
		}
		return float64(int8(raw[0])), true
	case 0x03: // sint16
		if len(raw) < 2 {
			return 0, false
		}
		v := int16(arch.Uint16(raw))
		return float64(v), v != math.MaxInt16
	case 0x04, 0x0B: // uint16, uint16z
		if len(raw) < 2 {
			return 0, false
		}
		v := arch.Uint16(raw)
		if base&0x1F == 0x0B {
			return float64(v), v != 0
		}
		return float64(v), v != math.MaxUint16
	case 0x05: // sint32
		if len(raw) < 4 {
			return 0, false
		}
		v := int32(arch.Uint32(raw))
		return float64(v), v != math.MaxInt32
	case 0x06, 0x0C: // uint32, uint32z
		if len(raw) < 4 {
			return 0, false
		}
		v := arch.Uint32(raw)
		if base&0x1F == 0x0C {
			return float64(v), v != 0
		}
		return float64(v), v != math.MaxUint32
	case 0x08: // float32
		if len(raw) < 4 {
			return 0, false
		}
		bits := arch.Uint32(raw)
		v := float64(math.Float32frombits(bits))
		return v, bits != math.MaxUint32 && !math.IsNaN(v)
	case 0x09: // float64
		if len(raw) < 8 {
			return 0, false
		}
		bits := arch.Uint64(raw)
		v := math.Float64frombits(bits)
		return v, bits != math.MaxUint64 && !math.IsNaN(v)
	default:
		return 0, false
	}
}
