package keyb

// transparentScanCodes are the pure-modifier scan codes (shift, ctrl, alt,
// caps/num/scroll lock) that never touch a pending dead-key: releasing or
// pressing one of these between the dead key and its literal must not
// cancel the composition in progress.
var transparentScanCodes = map[int]bool{
	0x1d: true, 0x2a: true, 0x36: true, 0x38: true, 0x3a: true, 0x45: true, 0x46: true,
}

// Translate evaluates one scan code against the layout's modifier planes
// and dead-key state, mirroring keyboard_layout::layout_key. flags1/2/3
// are the live modifier-state bytes (shift/ctrl/alt/lock bits, exact
// layout documented in the GLOSSARY); scan is the raw, unmasked scan code
// (matching the original's use of the raw key value, in contrast to the
// KL parser's scan&0x7f masking when installing table records).
//
// handled reports whether the layout claimed this scan code at all (false
// means the caller must fall back to whatever default, non-layout-aware
// handling it has). emit reports whether a buffer word was actually
// produced; word is that 16-bit (scan<<8)|char buffer word when emit is
// true. A scan code can be handled with emit=false: a plane miss that
// breaks the plane-search loop, or an exhausted dead-key, swallow the key
// entirely, on purpose, matching the original exactly.
func (l *Layout) Translate(scan int, flags1, flags2, flags3 uint8) (word uint16, emit bool, handled bool) {
	if scan > MaxScanCode || !l.useForeignLayout {
		return 0, false, false
	}
	handled = true

	flagsRow := l.table[l.idx(scan, flagRow)]
	isKeyPair := flagsRow&0x80 != 0

	if (flags1&l.usedLockModifiers&0x7c) == 0 && (flags3&2) == 0 {
		shiftActive := ((flags1 & 2) >> 1) | (flags1 & 1)
		capsEffect := (flagsRow & 0x40 & uint16(flags1&0x40)) >> 6
		plane := int(shiftActive) ^ int(capsEffect)
		entry := l.table[l.idx(scan, plane)]
		if entry != 0 {
			isCommand := l.table[l.idx(scan, commandRow)]&(uint16(1)<<uint(plane)) != 0
			w, e, ok := l.mapKey(scan, entry, isCommand, isKeyPair)
			if ok {
				return w, e, true
			}
		}
	}

	// The plane scan always runs after the fast path above, whether or not
	// that block's outer condition matched -- it only short-circuits when
	// map_key actually dispatched the key.
	currentFlags := uint16(flags1&0x7f) | (uint16(flags2&3)|uint16(flags3&0xc))<<8
	shiftActive := ((flags1 & 2) >> 1) | (flags1 & 1)
	if shiftActive != 0 {
		currentFlags |= 0x4000
	}
	if flags3&2 != 0 {
		currentFlags |= 0x1000
	}

	for p := 0; p < l.additionalPlanes; p++ {
		pr := l.planes[p]
		match := currentFlags&pr.requiredFlags == pr.requiredFlags &&
			uint16(l.userKeys)&pr.requiredUserFlags == pr.requiredUserFlags &&
			currentFlags&pr.forbiddenFlags == 0 &&
			uint16(l.userKeys)&pr.forbiddenUserFlags == 0
		if !match {
			continue
		}
		plane := p + 2
		entry := l.table[l.idx(scan, plane)]
		if entry == 0 {
			break
		}
		isCommand := l.table[l.idx(scan, commandRow)]&(uint16(1)<<uint(plane)) != 0
		w, e, ok := l.mapKey(scan, entry, isCommand, isKeyPair)
		if ok {
			return w, e, true
		}
	}

	if l.diacriticsCharacter > 0 && !transparentScanCodes[scan] {
		if l.diacriticsCharacter >= l.diacriticsEntries+200 {
			l.diacriticsCharacter = 0
			return 0, false, true
		}
		start := l.diacSubtableStart(l.diacriticsCharacter - 200)
		lead := l.diacByte(start)
		l.diacriticsCharacter = 0
		return (uint16(scan) << 8) | uint16(lead), true, true
	}

	return 0, false, true
}

// mapKey mirrors keyboard_layout::map_key. entry is the table value the
// caller dispatched on; isCommand reports whether the command-bit row
// marks this plane as a command code rather than a literal character.
// handled mirrors map_key's own bool return: false only for a command code
// outside every recognized range (120..140, 160, 180..196, 200..235), in
// which case the caller must keep looking (fast path falls through to the
// plane scan; the plane scan's own loop moves on to the next plane).
func (l *Layout) mapKey(scan int, entry uint16, isCommand bool, isKeyPair bool) (word uint16, emit bool, handled bool) {
	if isCommand {
		c := int(entry & 0xff)
		switch {
		case c >= 200 && c < 235:
			l.diacriticsCharacter = c
			if l.diacriticsCharacter >= l.diacriticsEntries+200 {
				l.diacriticsCharacter = 0
			}
			return 0, false, true
		case c >= 120 && c < 140:
			l.reparse(c - 119)
			return 0, false, true
		case c >= 180 && c < 188:
			l.userKeys &^= 1 << uint(c-180)
			return 0, false, true
		case c >= 188 && c < 196:
			l.userKeys |= 1 << uint(c-188)
			return 0, false, true
		case c == 160:
			// nop command code, consumed with no effect
			return 0, false, true
		}
		return 0, false, false
	}

	if l.diacriticsCharacter > 0 {
		if l.diacriticsCharacter-200 >= l.diacriticsEntries {
			l.diacriticsCharacter = 0
		} else {
			start := l.diacSubtableStart(l.diacriticsCharacter - 200)
			length := int(l.diacByte(start + 1))
			start += 2
			l.diacriticsCharacter = 0
			lit := byte(entry & 0xff)
			for i := 0; i < length; i++ {
				if l.diacByte(start+i*2) == lit {
					return (uint16(scan) << 8) | uint16(l.diacByte(start+i*2+1)), true, true
				}
			}
			// no literal matched: fall back to the sub-table's lead byte,
			// the byte at its very first position.
			return (uint16(scan) << 8) | uint16(l.diacByte(start-2)), true, true
		}
	}

	if isKeyPair {
		return entry, true, true
	}
	return (uint16(scan) << 8) | (entry & 0xff), true, true
}

// reparse re-populates this layout in place from the same source file,
// forcing submapping specificLayout regardless of code page. Mirrors
// map_key's command codes 120..139, which call read_keyboard_file on the
// same (now "this") object rather than constructing a new one.
func (l *Layout) reparse(specificLayout int) {
	if l.filesSrc == nil && l.builtinSrc == nil {
		return
	}
	payload, standalone, err := locateKLPayload(l.filesSrc, l.builtinSrc, l.fileName)
	if err != nil {
		return
	}
	replacement, err := parseKL(payload, standalone, l.codepage, specificLayout)
	if err != nil {
		return
	}
	name, files, builtin, cp := l.fileName, l.filesSrc, l.builtinSrc, l.codepage
	*l = *replacement
	l.fileName, l.filesSrc, l.builtinSrc, l.codepage = name, files, builtin, cp
}
