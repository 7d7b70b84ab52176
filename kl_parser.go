package keyb

import "fmt"

// kclLibraryFiles is the fixed DOS keyboard-library search order: four
// libraries, searched in this order on every pass.
var kclLibraryFiles = [4]string{"keyboard.sys", "keybrd2.sys", "keybrd3.sys", "keybrd4.sys"}

// locateKLPayload resolves a layout id to a KL payload, replaying
// read_keyboard_file's file-resolution fallback chain:
//
//  1. "<id>.kl" opened directly as a standalone file (magic-checked).
//  2. keyboard.sys, keybrd2.sys, keybrd3.sys, keybrd4.sys, each searched
//     with firstIDOnly=true (only a record's first id counts).
//  3. the same four libraries again, this time with firstIDOnly=false
//     (every id in every record counts, including numeric suffixes).
//  4. steps 2 and 3 repeated against builtin in place of files.
//
// Returns the payload slice positioned so that parseKL's start_pos
// convention applies directly: standalone=true for a bare .KL file (magic
// still present, parseKL skips it), standalone=false for a KCL record
// (magic already stripped, payload[0] is the data_len byte).
func locateKLPayload(files, builtin ResourceSource, id string) (payload []byte, standalone bool, err error) {
	if files != nil {
		if data, openErr := files.Open(id + ".kl"); openErr == nil && len(data) >= 3 &&
			data[0] == 'K' && data[1] == 'L' && data[2] == 'F' {
			return data, true, nil
		}
	}

	for _, src := range []ResourceSource{files, builtin} {
		if src == nil {
			continue
		}
		for _, firstOnly := range [2]bool{true, false} {
			for _, lib := range kclLibraryFiles {
				data, openErr := src.Open(lib)
				if openErr != nil {
					continue
				}
				off, ok := locateInKCL(data, id, firstOnly)
				if !ok || off+2 > len(data) {
					continue
				}
				return data[off+2:], false, nil
			}
		}
	}

	return nil, false, fmt.Errorf("%w: %s", ErrFileNotFound, id)
}

// parseKL parses a KL payload (either a standalone .KL file or a record
// already extracted from a KCL library) into a Layout, selecting the
// submapping whose code page matches requestedCP, or s==specificLayout if
// specificLayout is not -1 (used by the re-parse command codes 120..139).
//
// Mirrors keyboard_layout::read_keyboard_file's parse body exactly,
// including its quirk that a submapping whose submap_cp is the wildcard
// value 0 is still merged into the table but never satisfies
// found_matching_layout on its own — only an exact code-page match does.
func parseKL(buf []byte, standalone bool, requestedCP uint16, specificLayout int) (*Layout, error) {
	lay := newLayout()

	pos := 0
	if standalone {
		if len(buf) < 4 || buf[0] != 'K' || buf[1] != 'L' || buf[2] != 'F' {
			return nil, fmt.Errorf("%w: bad KL magic", ErrInvalidFile)
		}
		pos = 5 // 3-byte magic + 2-byte skip, matching the original's fixed start_pos
	}

	if pos >= len(buf) {
		return nil, fmt.Errorf("%w: truncated KL header", ErrInvalidFile)
	}
	dataLen := int(buf[pos])
	pos++

	i := 0
	for i < dataLen {
		// Each language-code entry is prefixed by a 2-byte country number,
		// same encoding as a KCL record's ids, but read_keyboard_file never
		// uses the number for its own list -- only skips past it.
		i += 2
		var code []byte
		for i < dataLen {
			if pos+i >= len(buf) {
				return nil, fmt.Errorf("%w: truncated language code list", ErrInvalidFile)
			}
			c := buf[pos+i]
			i++
			if c == ',' {
				break
			}
			code = append(code, c)
		}
		lay.languageCodes = append(lay.languageCodes, string(code))
	}
	pos += dataLen // pos now points at the KeybCB block ("P" below)
	base := pos

	submappings, ok := byteAt(buf, base)
	if !ok {
		return nil, fmt.Errorf("%w: truncated KeybCB block", ErrInvalidFile)
	}
	additionalPlanesByte, ok := byteAt(buf, base+1)
	if !ok {
		return nil, fmt.Errorf("%w: truncated KeybCB block", ErrInvalidFile)
	}
	additionalPlanes := int(additionalPlanesByte)
	if additionalPlanes > maxAdditionalPlanes {
		additionalPlanes = maxAdditionalPlanes
	}
	lay.additionalPlanes = additionalPlanes

	planeDescPos := base + 0x14 + int(submappings)*8
	for p := 0; p < additionalPlanes; p++ {
		pbase := planeDescPos + p*8
		req, _ := readU16(buf, pbase)
		forb, _ := readU16(buf, pbase+2)
		reqU, _ := readU16(buf, pbase+4)
		forbU, _ := readU16(buf, pbase+6)
		lay.planes[p] = planePredicate{req, forb, reqU, forbU}
		lay.usedLockModifiers |= uint8(req & 0x70)
	}

	foundMatch := false
	for subMap := 0; subMap < int(submappings) && !foundMatch; subMap++ {
		if subMap != 0 && specificLayout != -1 {
			subMap = specificLayout
		}

		descBase := base + 0x14 + subMap*8
		submapCP, ok := readU16(buf, descBase)
		if !ok {
			break
		}
		if submapCP != 0 && submapCP != requestedCP && specificLayout == -1 {
			continue
		}
		if submapCP == requestedCP {
			foundMatch = true
		}

		// Reset unconditionally per submapping, matching the original's
		// diacritics_entries=0 placed ahead of the table_offset!=0 check:
		// a later submapping with no diacritics table must not inherit an
		// earlier one's entry count.
		lay.diacriticsEntries = 0
		if diacOffset, ok := readU16(buf, descBase+4); ok && diacOffset != 0 {
			dbase := base + int(diacOffset)
			n := 0
			for n < len(lay.diacritics) {
				b, ok := byteAt(buf, dbase+n)
				if !ok || b == 0 {
					break
				}
				lay.diacriticsEntries++
				step, ok := byteAt(buf, dbase+n+1)
				if !ok {
					break
				}
				n += int(step)*2 + 2
			}
			end := n
			if end >= len(lay.diacritics) {
				end = len(lay.diacritics) - 1
			}
			for j := 0; j <= end; j++ {
				b, ok := byteAt(buf, dbase+j)
				if !ok {
					break
				}
				lay.diacritics[j] = b
			}
		}

		tableOffset, ok := readU16(buf, descBase+2)
		if !ok || tableOffset == 0 {
			continue
		}

		readPos := base + int(tableOffset)
		limit := additionalPlanes + 2
		for readPos < len(buf) {
			scan, ok := byteAt(buf, readPos)
			if !ok || scan == 0 {
				break
			}
			flagsLen, ok := byteAt(buf, readPos+1)
			if !ok {
				break
			}
			commandBits, ok := byteAt(buf, readPos+2)
			if !ok {
				break
			}
			scanLength := int(flagsLen&7) + 1
			isPaired := flagsLen&0x80 != 0
			entryBase := readPos + 3

			if int(scan&0x7f) <= MaxScanCode {
				stride := 1
				if isPaired {
					stride = 2
				}
				for addmap := 0; addmap < scanLength && addmap < limit; addmap++ {
					charPtr := entryBase + addmap*stride
					kb, ok := byteAt(buf, charPtr)
					if !ok {
						break
					}
					kchar := uint16(kb)
					if isPaired {
						if hb, ok := byteAt(buf, charPtr+1); ok {
							kchar |= uint16(hb) << 8
						}
					}
					if kchar != 0 {
						sc := int(scan)
						lay.table[lay.idx(sc, addmap)] = kchar
						cmdIdx := lay.idx(sc, commandRow)
						lay.table[cmdIdx] &^= uint16(1) << addmap
						lay.table[cmdIdx] |= (uint16(commandBits) & (uint16(1) << addmap))
					}
				}
				flagIdx := lay.idx(int(scan), flagRow)
				newFlags := lay.table[flagIdx] & 0x7
				if uint16(flagsLen&0x7) > newFlags {
					newFlags = uint16(flagsLen & 0x7)
				}
				newFlags |= (uint16(flagsLen) | lay.table[flagIdx]) & 0xf0
				lay.table[flagIdx] = newFlags
			}

			advance := scanLength
			if isPaired {
				advance *= 2
			}
			readPos = entryBase + advance
		}

		if specificLayout == subMap {
			break
		}
	}

	if !foundMatch {
		lay.reset()
		return nil, ErrLayoutNotFound
	}
	lay.useForeignLayout = true
	return lay, nil
}

func byteAt(buf []byte, off int) (byte, bool) {
	if off < 0 || off >= len(buf) {
		return 0, false
	}
	return buf[off], true
}

// loadLayout locates and parses a layout by id, trying files then builtin
// blobs. specificLayout selects a single submapping directly (command
// codes 120..139's re-parse); pass -1 for the normal codepage-matching
// search.
func loadLayout(files, builtin ResourceSource, id string, requestedCP uint16, specificLayout int) (*Layout, error) {
	payload, standalone, err := locateKLPayload(files, builtin, id)
	if err != nil {
		return nil, err
	}
	lay, err := parseKL(payload, standalone, requestedCP, specificLayout)
	if err != nil {
		return nil, err
	}
	lay.fileName = id
	return lay, nil
}

// extractCodepage discovers which code page a layout id wants without
// fully parsing it: the first submapping with a nonzero submap_cp, or 437
// if none declare one. Mirrors keyboard_layout::extract_codepage, used by
// Session.Switch before the real Load so the code page is ready before
// the keyboard file is parsed for real.
func extractCodepage(files, builtin ResourceSource, id string) uint16 {
	if id == "" || id == "none" {
		return 437
	}
	payload, standalone, err := locateKLPayload(files, builtin, id)
	if err != nil {
		return 437
	}

	pos := 0
	if standalone {
		if len(payload) < 4 || payload[0] != 'K' || payload[1] != 'L' || payload[2] != 'F' {
			return 437
		}
		pos = 5
	}
	if pos >= len(payload) {
		return 437
	}
	dataLen := int(payload[pos])
	pos++
	// skip the language-code list without decoding it
	i := 0
	for i < dataLen {
		i += 2
		for i < dataLen {
			if pos+i >= len(payload) {
				return 437
			}
			c := payload[pos+i]
			i++
			if c == ',' {
				break
			}
		}
	}
	pos += dataLen
	submappings, ok := byteAt(payload, pos)
	if !ok {
		return 437
	}
	for s := 0; s < int(submappings); s++ {
		cp, ok := readU16(payload, pos+0x14+s*8)
		if !ok {
			return 437
		}
		if cp != 0 {
			return cp
		}
	}
	return 437
}
