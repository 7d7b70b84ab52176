package keyb

import (
	"fmt"
	"strings"
)

// FontData is the glyph payload extracted from a CPI/CPX file for one
// code page: up to three bitmap font sizes, matching the DOS text-mode
// ROM font formats a device CPI entry can carry.
type FontData struct {
	CodePage uint16

	Font16      []byte // 256 glyphs, 16 bytes each
	Font14      []byte // 256 glyphs, 14 bytes each
	Font8First  []byte // glyphs 0..127, 8 bytes each
	Font8Second []byte // glyphs 128..255, 8 bytes each
}

// loadCodePage resolves name (a file name, "auto", or "none") to a CPI/CPX
// buffer and extracts the font bound to codepageID. A "none" name or a
// name matching the already-active code page is a deliberate no-op,
// returning (nil, nil), matching read_codepage_file's early-exit.
func loadCodePage(files, builtin ResourceSource, dec Decompressor, name string, codepageID int) (*FontData, error) {
	if name == "" || name == "none" {
		return nil, nil
	}
	if name == "auto" {
		bucket := cpxFileFor(codepageID)
		if bucket == "" {
			return nil, fmt.Errorf("%w: no CPX bucket declares code page %d", ErrInvalidCPFile, codepageID)
		}
		name = bucket
	}

	data, err := openCodePageFile(files, builtin, name)
	if err != nil {
		return nil, err
	}

	upxAt, isUPX, isDRDOS, isPlain := classifyCPI(data)
	switch {
	case isDRDOS:
		return nil, fmt.Errorf("%w: DR-DOS code page files are not supported", ErrInvalidCPFile)
	case isUPX:
		if dec == nil {
			return nil, fmt.Errorf("%w: %s is UPX-packed but no Decompressor is configured", ErrInvalidCPFile, name)
		}
		decompressed, err := dec.Decompress(data, upxAt)
		if err != nil {
			return nil, err
		}
		data = decompressed
	case isPlain:
		// used as-is
	default:
		return nil, fmt.Errorf("%w: unrecognized signature in %s", ErrInvalidCPFile, name)
	}

	fd, err := parseCPIBody(data, uint16(codepageID))
	if err != nil {
		return nil, err
	}
	fd.CodePage = uint16(codepageID)
	return fd, nil
}

// openCodePageFile tries name against files, then its .cpi/.cpx-swapped
// counterpart, then the built-in blob set. Mirrors read_codepage_file's
// "try the other extension before falling back to the built-in blob"
// behavior.
func openCodePageFile(files, builtin ResourceSource, name string) ([]byte, error) {
	if files != nil {
		if data, err := files.Open(name); err == nil {
			return data, nil
		}
		if alt := swapCPExtension(name); alt != name {
			if data, err := files.Open(alt); err == nil {
				return data, nil
			}
		}
	}
	if builtin != nil {
		if data, err := builtin.Open(name); err == nil {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrFileNotFound, name)
}

func swapCPExtension(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".cpi"):
		return name[:len(name)-4] + ".cpx"
	case strings.HasSuffix(lower, ".cpx"):
		return name[:len(name)-4] + ".cpi"
	default:
		return name
	}
}

const maxCPEntryChainLength = 256

// parseCPIBody walks the linked list of device/codepage entries in an
// (already-decompressed) CPI buffer looking for a device_type==1,
// font_type==1 entry whose font code page matches wantedCP, mirroring
// read_codepage_file's CPI body walk.
func parseCPIBody(buf []byte, wantedCP uint16) (*FontData, error) {
	startU32, ok := readU32(buf, 0x13)
	if !ok {
		return nil, fmt.Errorf("%w: truncated CPI header", ErrInvalidCPFile)
	}
	start := int(startU32)
	if start < 0 || start >= len(buf) {
		return nil, fmt.Errorf("%w: code page entry head out of range", ErrInvalidCPFile)
	}
	start += 4

	for iter := 0; iter < maxCPEntryChainLength; iter++ {
		if start < 0 || start+0x1a > len(buf) {
			return nil, fmt.Errorf("%w: truncated code page entry", ErrInvalidCPFile)
		}
		deviceType, _ := readU16(buf, start+4)
		fontCP, _ := readU16(buf, start+0xe)
		hdrU32, _ := readU32(buf, start+0x16)
		hdr := int(hdrU32)

		if hdr >= 0 && hdr+2 <= len(buf) {
			fontType, _ := readU16(buf, hdr)
			if deviceType == 1 && fontType == 1 && fontCP == wantedCP {
				return extractFonts(buf, hdr)
			}
		}

		nextU32, ok := readU32(buf, start)
		if !ok {
			return nil, ErrInvalidCPFile
		}
		next := int(nextU32) + 2
		if next >= len(buf) {
			return nil, fmt.Errorf("%w: no entry for code page %d", ErrInvalidCPFile, wantedCP)
		}
		start = next
	}
	return nil, fmt.Errorf("%w: code page entry chain too long", ErrInvalidCPFile)
}

// extractFonts reads the font records at hdr (a FontInfoHeader), writing
// each bitmap size into the matching FontData field. Mirrors the
// h==0x10/0x0e/0x08 branches of read_codepage_file's font-install loop.
func extractFonts(buf []byte, hdr int) (*FontData, error) {
	nFonts, ok := readU16(buf, hdr+2)
	if !ok {
		return nil, fmt.Errorf("%w: truncated font info header", ErrInvalidCPFile)
	}
	data := hdr + 6
	fd := &FontData{}
	for f := 0; f < int(nFonts); f++ {
		h, ok := byteAt(buf, data)
		if !ok {
			return nil, fmt.Errorf("%w: truncated font header", ErrInvalidCPFile)
		}
		data += 6
		size := int(h) * 256
		glyphs, ok := sliceAt(buf, data, size)
		if !ok {
			return nil, fmt.Errorf("%w: truncated glyph data", ErrInvalidCPFile)
		}
		switch h {
		case 0x10:
			fd.Font16 = glyphs
		case 0x0e:
			fd.Font14 = glyphs
		case 0x08:
			fd.Font8First = glyphs[:128*8]
			fd.Font8Second = glyphs[128*8:]
		}
		data += size
	}
	if fd.Font16 == nil && fd.Font14 == nil && fd.Font8First == nil {
		return nil, fmt.Errorf("%w: no recognized font size in entry", ErrInvalidCPFile)
	}
	return fd, nil
}

func sliceAt(buf []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off+n > len(buf) {
		return nil, false
	}
	return buf[off : off+n], true
}
