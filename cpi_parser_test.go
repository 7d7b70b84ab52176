package keyb

import (
	"bytes"
	"testing"
)

// buildTestCPI builds a minimal plain (unpacked) CPI buffer with a single
// device/code-page entry for CP437 carrying only an 8x8 font, split
// across two 128-glyph pages so the split can be verified independently.
func buildTestCPI() []byte {
	const (
		entryPos = 36
		hdrPos   = 70
		fontPos  = 76
		dataPos  = fontPos + 6
		total    = dataPos + 8*256
	)
	buf := make([]byte, total)
	copy(buf[0:], cpiMagic)
	putU32(buf, 0x13, entryPos-4) // "start" header field, read then +=4

	putU16(buf, entryPos+4, 1)       // device_type = 1 (screen)
	putU16(buf, entryPos+0xe, 437)   // font_cp
	putU32(buf, entryPos+0x16, hdrPos)

	putU16(buf, hdrPos, 1) // font_type = 1
	putU16(buf, hdrPos+2, 1) // n_fonts = 1

	buf[fontPos] = 0x08 // 8-line font
	for i := 0; i < 128*8; i++ {
		buf[dataPos+i] = 0xaa
	}
	for i := 0; i < 128*8; i++ {
		buf[dataPos+128*8+i] = 0xbb
	}
	return buf
}

func putU16(buf []byte, off int, v uint16) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
}

func putU32(buf []byte, off int, v int) {
	buf[off] = byte(v)
	buf[off+1] = byte(v >> 8)
	buf[off+2] = byte(v >> 16)
	buf[off+3] = byte(v >> 24)
}

func TestParseCPIBody8x8Font(t *testing.T) {
	fd, err := parseCPIBody(buildTestCPI(), 437)
	if err != nil {
		t.Fatalf("parseCPIBody: %v", err)
	}
	if len(fd.Font8First) != 128*8 || fd.Font8First[0] != 0xaa {
		t.Fatalf("Font8First wrong: len=%d first=%#x", len(fd.Font8First), fd.Font8First[0])
	}
	if len(fd.Font8Second) != 128*8 || fd.Font8Second[0] != 0xbb {
		t.Fatalf("Font8Second wrong: len=%d first=%#x", len(fd.Font8Second), fd.Font8Second[0])
	}
	if fd.Font16 != nil || fd.Font14 != nil {
		t.Fatalf("expected no 14/16-line font data")
	}
}

func TestParseCPIBodyNoMatchingCodePage(t *testing.T) {
	if _, err := parseCPIBody(buildTestCPI(), 850); err == nil {
		t.Fatalf("expected an error for a code page absent from the file")
	}
}

func TestClassifyCPIPlain(t *testing.T) {
	_, isUPX, isDRDOS, isPlain := classifyCPI(buildTestCPI())
	if isUPX || isDRDOS || !isPlain {
		t.Fatalf("classifyCPI: upx=%v drdos=%v plain=%v, want plain only", isUPX, isDRDOS, isPlain)
	}
}

func TestClassifyCPIDRDOSRejected(t *testing.T) {
	buf := append([]byte{}, drDOSMagic...)
	_, _, isDRDOS, _ := classifyCPI(buf)
	if !isDRDOS {
		t.Fatalf("expected DR-DOS signature to be detected")
	}
}

func TestClassifyCPIUPXMarker(t *testing.T) {
	buf := make([]byte, 50)
	copy(buf[10:], upxMarker)
	buf[14] = 13 // packer version >= 10
	at, isUPX, _, _ := classifyCPI(buf)
	if !isUPX || at != 10 {
		t.Fatalf("classifyCPI: at=%d isUPX=%v, want 10, true", at, isUPX)
	}
}

func TestClassifyCPIUPXMarkerLowVersionRejected(t *testing.T) {
	buf := make([]byte, 50)
	copy(buf[10:], upxMarker)
	buf[14] = 3 // below the version-10 floor
	_, isUPX, _, isPlain := classifyCPI(buf)
	if isUPX || isPlain {
		t.Fatalf("a sub-10 packer version must not be treated as UPX")
	}
}

func TestLoadCodePageNoneIsNoop(t *testing.T) {
	fd, err := loadCodePage(nil, nil, nil, "none", 437)
	if err != nil || fd != nil {
		t.Fatalf("loadCodePage(none) = %v, %v, want nil, nil", fd, err)
	}
}

func TestLoadCodePageAutoResolvesBucket(t *testing.T) {
	files := memSource{"ega.cpx": buildTestCPI()}
	fd, err := loadCodePage(files, nil, nil, "auto", 437)
	if err != nil {
		t.Fatalf("loadCodePage(auto): %v", err)
	}
	if fd.CodePage != 437 {
		t.Fatalf("CodePage = %d, want 437", fd.CodePage)
	}
}

func TestOpenCodePageFileSwapsExtension(t *testing.T) {
	files := memSource{"french.cpx": buildTestCPI()}
	data, err := openCodePageFile(files, nil, "french.cpi")
	if err != nil {
		t.Fatalf("openCodePageFile: %v", err)
	}
	if !bytes.Equal(data, buildTestCPI()) {
		t.Fatalf("unexpected data from extension-swapped lookup")
	}
}
