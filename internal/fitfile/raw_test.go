// ABOUTME: Tests for the raw session field scanner.
// ABOUTME: Exercises compressed headers, developer fields and CRC checks.
package fitfile

import (
	"encoding/binary"
	"testing"

	"github.com/harperreed/trainload/internal/testsupport"
)

func TestScanSessionFieldsSkipsDeveloperAndCompressed(t *testing.T) {
	var e testsupport.Encoder
	e.Define(0, testsupport.MesgFileID, []testsupport.Field{{Num: 0, Size: 1, Base: testsupport.BaseEnum}})
	e.Data(0, testsupport.U8(4))

	// Records use a compressed timestamp header and carry a developer field.
	e.Define(1, testsupport.MesgRecord, []testsupport.Field{{Num: 3, Size: 1, Base: testsupport.BaseUint8}}, 2)
	e.CompressedData(1, 3, testsupport.U8(150), testsupport.U16(0xBEEF))
	e.CompressedData(1, 4, testsupport.U8(151), testsupport.U16(0xBEEF))

	e.Define(2, testsupport.MesgSession, []testsupport.Field{
		{Num: 5, Size: 1, Base: testsupport.BaseEnum},
		{Num: 192, Size: 1, Base: testsupport.BaseUint8},
		{Num: 193, Size: 1, Base: testsupport.BaseUint8},
		{Num: 194, Size: 2, Base: testsupport.BaseUint16},
	}, 1)
	e.Data(2, testsupport.U8(1), testsupport.U8(65), testsupport.U8(6), testsupport.U16(300), testsupport.U8(9))

	got, err := scanSessionFields(e.Bytes(), []uint8{192, 193})
	if err != nil {
		t.Fatalf("scanSessionFields failed: %v", err)
	}
	if got[192] != 65 || got[193] != 6 {
		t.Errorf("got %v, want 192=65 193=6", got)
	}
	if _, ok := got[194]; ok {
		t.Error("unrequested field returned")
	}
}

func TestScanSessionFieldsInvalidOmitted(t *testing.T) {
	var e testsupport.Encoder
	e.Define(0, testsupport.MesgSession, []testsupport.Field{
		{Num: 192, Size: 1, Base: testsupport.BaseUint8},
		{Num: 193, Size: 1, Base: testsupport.BaseUint8},
	})
	e.Data(0, testsupport.U8(0xFF), testsupport.U8(3))

	got, err := scanSessionFields(e.Bytes(), []uint8{192, 193})
	if err != nil {
		t.Fatalf("scanSessionFields failed: %v", err)
	}
	if _, ok := got[192]; ok {
		t.Error("invalid sentinel should be omitted")
	}
	if got[193] != 3 {
		t.Errorf("193 = %v, want 3", got[193])
	}
}

func TestScanSessionFieldsCRCMismatch(t *testing.T) {
	var e testsupport.Encoder
	e.Define(0, testsupport.MesgSession, []testsupport.Field{{Num: 193, Size: 1, Base: testsupport.BaseUint8}})
	e.Data(0, testsupport.U8(3))
	data := e.Bytes()
	data[len(data)-3] ^= 0xFF

	if _, err := scanSessionFields(data, []uint8{193}); err == nil {
		t.Error("expected crc error")
	}
}

func TestDecodeNumber(t *testing.T) {
	tests := []struct {
		name   string
		raw    []byte
		base   uint8
		want   float64
		wantOK bool
	}{
		{"uint8", []byte{7}, 0x02, 7, true},
		{"uint8 invalid", []byte{0xFF}, 0x02, 0, false},
		{"uint8z zero", []byte{0}, 0x0A, 0, false},
		{"sint8 negative", []byte{0xFE}, 0x01, -2, true},
		{"uint16", testsupport.U16(300), 0x84, 300, true},
		{"uint16 invalid", testsupport.U16(0xFFFF), 0x84, 0, false},
		{"sint16 negative", testsupport.U16(0xFFFE), 0x83, -2, true},
		{"uint32", testsupport.U32(70000), 0x86, 70000, true},
		{"uint32 invalid", testsupport.U32(0xFFFFFFFF), 0x86, 0, false},
		{"string unsupported", []byte("ab"), 0x07, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := decodeNumber(tt.raw, tt.base, binary.LittleEndian)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
