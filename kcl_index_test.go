package keyb

import "testing"

// buildTestKCL builds a minimal KCL library with a single record holding
// two ids: "us" (country number 0) and "br" (country number 274, so
// "br274" should also match it).
func buildTestKCL() []byte {
	return []byte{
		'K', 'C', 'F', 0, 0, 0, 0, // magic + 3 filler + N=0 -> records start at offset 7
		0x0c, 0x00, // len
		0x0a,       // data_len = 10
		0x00, 0x00, // lcnum for "us" (unused, 0)
		'u', 's', ',',
		0x12, 0x01, // lcnum for "br" = 274
		'b', 'r', ',',
	}
}

func TestLocateInKCLExactMatch(t *testing.T) {
	buf := buildTestKCL()
	off, ok := locateInKCL(buf, "us", false)
	if !ok || off != 7 {
		t.Fatalf("locateInKCL(us) = %d, %v, want 7, true", off, ok)
	}
}

func TestLocateInKCLCaseInsensitive(t *testing.T) {
	buf := buildTestKCL()
	if _, ok := locateInKCL(buf, "US", false); !ok {
		t.Fatalf("locateInKCL should be case-insensitive")
	}
}

func TestLocateInKCLNumericSuffix(t *testing.T) {
	buf := buildTestKCL()
	off, ok := locateInKCL(buf, "br274", false)
	if !ok || off != 7 {
		t.Fatalf("locateInKCL(br274) = %d, %v, want 7, true", off, ok)
	}
	if _, ok := locateInKCL(buf, "br", false); !ok {
		t.Fatalf("locateInKCL(br) (plain id, not numeric suffix) should still match")
	}
}

func TestLocateInKCLFirstIDOnlyStopsEarly(t *testing.T) {
	buf := buildTestKCL()
	// "br" is the record's second id; firstIDOnly must stop checking
	// after the first ("us") and never find it.
	if _, ok := locateInKCL(buf, "br", true); ok {
		t.Fatalf("firstIDOnly=true should not have matched the record's second id")
	}
	if _, ok := locateInKCL(buf, "us", true); !ok {
		t.Fatalf("firstIDOnly=true should still match the record's first id")
	}
}

func TestLocateInKCLNotFound(t *testing.T) {
	buf := buildTestKCL()
	if _, ok := locateInKCL(buf, "fr", false); ok {
		t.Fatalf("locateInKCL(fr) should not be found")
	}
}

func TestLocateInKCLRejectsBadMagic(t *testing.T) {
	buf := append([]byte{}, buildTestKCL()...)
	buf[0] = 'X'
	if _, ok := locateInKCL(buf, "us", false); ok {
		t.Fatalf("locateInKCL should reject a bad magic")
	}
}

func TestLocateInKCLTruncatedBuffer(t *testing.T) {
	buf := buildTestKCL()[:9] // header present, but data_len bytes missing
	if _, ok := locateInKCL(buf, "us", false); ok {
		t.Fatalf("locateInKCL must fail safely on truncated input, not panic")
	}
}
