package keyb

import "testing"

func newTestLayout() *Layout {
	return newLayout()
}

func TestTranslatePassThroughWhenNotForeign(t *testing.T) {
	l := newTestLayout()
	l.table[l.idx(0x1e, 0)] = 0x61
	word, emit, handled := l.Translate(0x1e, 0, 0, 0)
	if handled {
		t.Fatalf("handled = true, want false when useForeignLayout is false")
	}
	if emit || word != 0 {
		t.Fatalf("expected no emission when not handled")
	}
}

func TestTranslatePassThroughAboveMaxScanCode(t *testing.T) {
	l := newTestLayout()
	l.useForeignLayout = true
	_, _, handled := l.Translate(MaxScanCode+1, 0, 0, 0)
	if handled {
		t.Fatalf("handled = true, want false above MaxScanCode")
	}
}

func TestTranslateNormalAndShiftPlanes(t *testing.T) {
	l := newTestLayout()
	l.useForeignLayout = true
	l.table[l.idx(0x1e, 0)] = 0x61 // 'a'
	l.table[l.idx(0x1e, 1)] = 0x41 // 'A'

	word, emit, handled := l.Translate(0x1e, 0, 0, 0)
	if !handled || !emit || word != (0x1e<<8)|0x61 {
		t.Fatalf("normal plane: word=%#x emit=%v handled=%v", word, emit, handled)
	}

	word, emit, handled = l.Translate(0x1e, 0x01, 0, 0) // left shift held
	if !handled || !emit || word != (0x1e<<8)|0x41 {
		t.Fatalf("shift plane: word=%#x emit=%v handled=%v", word, emit, handled)
	}
}

func TestTranslatePlaneMonotonicityBreaksOnFirstMiss(t *testing.T) {
	l := newTestLayout()
	l.useForeignLayout = true
	l.usedLockModifiers = 0x7c // force the slow, plane-predicate path
	l.additionalPlanes = 2
	// plane 0 (table plane 2): predicate always matches, but no table
	// entry -- the search must stop here, never reaching plane 1.
	l.planes[0] = planePredicate{}
	l.table[l.idx(0x20, 2)] = 0
	// plane 1 (table plane 3): would match and has an entry, but must
	// never be reached.
	l.planes[1] = planePredicate{}
	l.table[l.idx(0x20, 3)] = 0x78

	word, emit, handled := l.Translate(0x20, 0x04, 0, 0)
	if !handled {
		t.Fatalf("expected handled=true")
	}
	if emit || word != 0 {
		t.Fatalf("expected the plane miss to swallow the key: word=%#x emit=%v", word, emit)
	}
}

func TestTranslateDeadKeyOrderingAndTransparency(t *testing.T) {
	l := newTestLayout()
	l.useForeignLayout = true

	// diacritics sub-table: lead 'a', one pair ('e' -> 0xE9).
	l.diacritics[0] = 'a'
	l.diacritics[1] = 1
	l.diacritics[2] = 'e'
	l.diacritics[3] = 0xe9
	l.diacriticsEntries = 1

	const deadKeyScan = 0x10
	const literalScan = 0x12
	const unmappedModifierScan = 0x2a // shift, transparent to a pending dead key

	l.table[l.idx(deadKeyScan, 0)] = 200
	l.table[l.idx(deadKeyScan, commandRow)] = 1 // command bit set for plane 0

	l.table[l.idx(literalScan, 0)] = 'e'

	_, emit, handled := l.Translate(deadKeyScan, 0, 0, 0)
	if !handled || emit {
		t.Fatalf("arming a dead key must not emit anything: emit=%v", emit)
	}
	if l.diacriticsCharacter != 200 {
		t.Fatalf("diacriticsCharacter = %d, want 200 after arming", l.diacriticsCharacter)
	}

	// A modifier-only scan code in between must not cancel the pending
	// dead key.
	_, _, _ = l.Translate(unmappedModifierScan, 0, 0, 0)
	if l.diacriticsCharacter != 200 {
		t.Fatalf("pending dead key was cancelled by a transparent scan code")
	}

	word, emit, handled := l.Translate(literalScan, 0, 0, 0)
	if !handled || !emit {
		t.Fatalf("expected the literal to resolve the dead key")
	}
	if want := uint16(literalScan)<<8 | 0xe9; word != want {
		t.Fatalf("word = %#x, want %#x", word, want)
	}
	if l.diacriticsCharacter != 0 {
		t.Fatalf("dead key should be cleared after resolving")
	}
}

func TestMapKeyFallsBackToLeadByteOnNoMatch(t *testing.T) {
	l := newTestLayout()
	l.diacritics[0] = 'a' // lead byte
	l.diacritics[1] = 1
	l.diacritics[2] = 'e'
	l.diacritics[3] = 0xe9
	l.diacriticsEntries = 1
	l.diacriticsCharacter = 200

	word, emit, ok := l.mapKey(0x30, uint16('x'), false, false)
	if !ok || !emit {
		t.Fatalf("expected an emission")
	}
	if want := uint16(0x30)<<8 | uint16('a'); word != want {
		t.Fatalf("word = %#x, want lead byte fallback %#x", word, want)
	}
}

func TestMapKeyExhaustedDeadKeyResetsSilently(t *testing.T) {
	l := newTestLayout()
	l.diacriticsEntries = 1 // only command codes 200 are valid
	word, emit, _ := l.mapKey(0x10, 234, true, false)
	if emit || word != 0 {
		t.Fatalf("an out-of-range dead key command must not emit anything")
	}
	if l.diacriticsCharacter != 0 {
		t.Fatalf("diacriticsCharacter = %d, want 0 after an out-of-range command", l.diacriticsCharacter)
	}
}

func TestMapKeyCommandCodesUserFlags(t *testing.T) {
	l := newTestLayout()
	if _, emit, _ := l.mapKey(0, 188, true, false); emit {
		t.Fatalf("command codes never emit")
	}
	if l.userKeys&1 == 0 {
		t.Fatalf("command code 188 should set user flag bit 0")
	}
	l.mapKey(0, 180, true, false)
	if l.userKeys&1 != 0 {
		t.Fatalf("command code 180 should clear user flag bit 0")
	}
}

func TestTranslateKeyPairEmitsWordVerbatim(t *testing.T) {
	l := newTestLayout()
	l.useForeignLayout = true
	l.table[l.idx(0x1e, flagRow)] = 0x80 // paired flag
	l.table[l.idx(0x1e, 0)] = 0xabcd

	word, emit, handled := l.Translate(0x1e, 0, 0, 0)
	if !handled || !emit || word != 0xabcd {
		t.Fatalf("paired plane: word=%#x emit=%v handled=%v", word, emit, handled)
	}
}

func TestTranslateNeverPanicsOnExhaustedDeadKeyState(t *testing.T) {
	l := newTestLayout()
	l.useForeignLayout = true
	l.diacriticsEntries = 1
	l.diacriticsCharacter = 205 // stale: >= diacriticsEntries+200

	word, emit, handled := l.Translate(0x33, 0, 0, 0)
	if !handled || emit || word != 0 {
		t.Fatalf("a stale dead key must reset silently: word=%#x emit=%v", word, emit)
	}
	if l.diacriticsCharacter != 0 {
		t.Fatalf("diacriticsCharacter should have been reset")
	}
}

// TestTranslatePlaneScanRunsAfterFastPathMiss covers the "no ctrl/alt/lock
// held" case: usedLockModifiers stays at its default and the plane-0/1
// entry for the scan code is 0, so the fast path never dispatches. An
// additional plane gated purely on a user-flag latch (required_flags==0,
// required_userflags!=0) must still be reachable in that case -- the plane
// scan is not exclusive with the fast path, it always runs afterward.
func TestTranslatePlaneScanRunsAfterFastPathMiss(t *testing.T) {
	l := newTestLayout()
	l.useForeignLayout = true
	l.additionalPlanes = 1
	l.planes[0] = planePredicate{requiredUserFlags: 1, forbiddenUserFlags: 0xfffe}
	l.userKeys = 1
	l.table[l.idx(0x30, 2)] = uint16('b')
	// plane 0/1 entries are left at 0, so the fast path finds nothing.

	word, emit, handled := l.Translate(0x30, 0, 0, 0)
	if !handled || !emit {
		t.Fatalf("expected the user-flag-gated plane to dispatch: emit=%v handled=%v", emit, handled)
	}
	if want := uint16(0x30)<<8 | uint16('b'); word != want {
		t.Fatalf("word = %#x, want %#x", word, want)
	}
}

// TestTranslatePlaneScanSkipsNonMatchingPlane covers §4.D step 4's actual
// wording: a plane whose predicate does not match must be skipped, not
// treated as a scan-aborting miss -- only a *matching* plane with a zero
// table entry aborts the scan. Plane 0 here never matches (an
// unsatisfiable forbidden-flags mask), so plane 1 must still be reached.
func TestTranslatePlaneScanSkipsNonMatchingPlane(t *testing.T) {
	l := newTestLayout()
	l.useForeignLayout = true
	l.usedLockModifiers = 0x7c // force the slow, plane-predicate path
	l.additionalPlanes = 2
	l.planes[0] = planePredicate{forbiddenFlags: 0xffff} // never matches
	l.table[l.idx(0x20, 2)] = uint16('x')                // would-be entry, unreachable
	l.planes[1] = planePredicate{}                       // always matches
	l.table[l.idx(0x20, 3)] = uint16('y')

	word, emit, handled := l.Translate(0x20, 0x04, 0, 0)
	if !handled || !emit {
		t.Fatalf("expected plane 1 to dispatch after plane 0 mismatched: emit=%v handled=%v", emit, handled)
	}
	if want := uint16(0x20)<<8 | uint16('y'); word != want {
		t.Fatalf("word = %#x, want %#x", word, want)
	}
}

// TestMapKeyUnmatchedCommandFallsThrough covers map_key's own false
// return: a command code outside every recognized range must let the
// caller keep searching (the fast path falls through to the plane scan)
// rather than silently swallowing the key.
func TestMapKeyUnmatchedCommandFallsThrough(t *testing.T) {
	l := newTestLayout()
	_, emit, handled := l.mapKey(0x10, 99, true, false)
	if emit || handled {
		t.Fatalf("an unrecognized command code must report handled=false: emit=%v handled=%v", emit, handled)
	}
}
