package keyb

import "bytes"

var (
	cpiMagic   = []byte{0xff, 0x46, 0x4f, 0x4e, 0x54}
	drDOSMagic = []byte{0x7f, 0x44, 0x52, 0x46, 0x5f}
	upxMarker  = []byte("UPX!")
)

// Decompressor unpacks a UPX-wrapped CPI payload. foundAt is the byte
// offset of the "UPX!" marker within buf. This package never implements
// the UPX NRV2B/NRV2D algorithm itself (spec §6 names it as an external
// collaborator); TrampolineDecompressor is the default implementation,
// grounded on the original's real-mode self-extraction stub.
type Decompressor interface {
	Decompress(buf []byte, foundAt int) ([]byte, error)
}

// classifyCPI identifies how a CPI/CPX buffer is packed, replaying
// read_codepage_file's signature checks: a bare CPI starts with the
// "FONT" magic, a DR-DOS code page file is rejected outright, and
// anything else is scanned for a "UPX!" marker in its first 100 bytes
// with a packer version byte of at least 10 immediately after it.
func classifyCPI(buf []byte) (upxAt int, isUPX, isDRDOS, isPlain bool) {
	if bytes.HasPrefix(buf, drDOSMagic) {
		return 0, false, true, false
	}
	if bytes.HasPrefix(buf, cpiMagic) {
		return 0, false, false, true
	}
	scanLen := len(buf)
	if scanLen > 100 {
		scanLen = 100
	}
	i := bytes.Index(buf[:scanLen], upxMarker)
	if i >= 0 && i+4 < len(buf) && buf[i+4] >= 10 {
		return i, true, false, false
	}
	return 0, false, false, false
}
