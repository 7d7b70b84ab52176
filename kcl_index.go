package keyb

import (
	"strconv"
	"strings"
)

// kclMagic is the 3-byte signature at the start of a .KCL library file
// ("KCF": keyboard-library file).
var kclMagic = [3]byte{0x4b, 0x43, 0x46}

// hasKCLMagic reports whether buf begins with the KCL signature.
func hasKCLMagic(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == kclMagic[0] && buf[1] == kclMagic[1] && buf[2] == kclMagic[2]
}

// locateInKCL scans a KCL library buffer for a record whose id list
// contains wantedID, case-insensitively. It mirrors DOSBox's
// read_kcl_data: records are a flat linked list reached by record length,
// never by a directory, so lookup is always linear.
//
// Each record is: len:u16, data_len:u8, then data_len bytes of
// (lcnum:u16, comma-terminated ascii id)* entries. A record's trailing
// numeric country-code suffix (id+lcnum, e.g. "br274") is also checked
// against wantedID, unless firstIDOnly stops the scan after the record's
// first entry (used by the multi-pass fallback in openLayoutSource).
//
// Returns the absolute byte offset of the matched record (the position a
// KL payload reader should seek to, as record_offset+2) and true, or
// (0, false) if no record matches or the buffer is truncated/malformed.
func locateInKCL(buf []byte, wantedID string, firstIDOnly bool) (int, bool) {
	if !hasKCLMagic(buf) || len(buf) < 7 {
		return 0, false
	}
	pos := 7 + int(buf[6])
	for {
		if pos < 0 || pos+5 > len(buf) {
			return 0, false
		}
		curPos := pos
		length, ok := readU16(buf, pos)
		if !ok {
			return 0, false
		}
		dataLen := int(buf[pos+2])
		dpos := pos + 5

		i := 0
		for i < dataLen {
			if dpos < 2 || dpos-2+2 > len(buf) {
				break
			}
			lcnum, _ := readU16(buf, dpos-2)
			i += 2

			var code []byte
			for i < dataLen {
				if dpos >= len(buf) {
					break
				}
				c := buf[dpos]
				dpos++
				i++
				if c == ',' {
					break
				}
				code = append(code, c)
			}
			id := string(code)
			if strings.EqualFold(id, wantedID) {
				return curPos, true
			}
			if firstIDOnly {
				break
			}
			if lcnum != 0 && strings.EqualFold(id+strconv.Itoa(int(lcnum)), wantedID) {
				return curPos, true
			}
			dpos += 2
		}

		pos = curPos + 3 + int(length)
	}
}
