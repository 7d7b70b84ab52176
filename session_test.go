package keyb

import "testing"

// buildTestKLForCodepage returns buildTestKL's fixture with its single
// submapping's code page overwritten, so a Session-level test can load a
// code page other than 437 without the layout side failing to match.
func buildTestKLForCodepage(cp uint16) []byte {
	buf := append([]byte(nil), buildTestKL()...)
	buf[26], buf[27] = byte(cp), byte(cp>>8)
	return buf
}

// buildTestCPIForCodepage returns buildTestCPI's fixture retargeted at a
// different font_cp field.
func buildTestCPIForCodepage(cp uint16) []byte {
	buf := append([]byte(nil), buildTestCPI()...)
	putU16(buf, 36+0xe, cp)
	return buf
}

func TestSessionLoadThreadsExplicitCodepageFile(t *testing.T) {
	files := memSource{
		"de.kl":      buildTestKL(),
		"custom.cpx": buildTestCPI(),
	}
	s := NewSession(files, nil, nil, nil, nil)
	if err := s.Load("de", 437, "custom.cpx"); err != nil {
		t.Fatalf("Load with explicit codepage file: %v", err)
	}
	if s.CodePage() != 437 {
		t.Fatalf("CodePage = %d, want 437", s.CodePage())
	}
	if s.FontData() == nil {
		t.Fatalf("expected font data to have been loaded from the explicit file")
	}
}

func TestSessionLoadDefaultsToAutoWhenCodepageFileEmpty(t *testing.T) {
	files := memSource{
		"de.kl":   buildTestKL(),
		"ega.cpx": buildTestCPI(),
	}
	s := NewSession(files, nil, nil, nil, nil)
	if err := s.Load("de", 437, ""); err != nil {
		t.Fatalf("Load with empty codepage file (auto): %v", err)
	}
	if s.FontData() == nil {
		t.Fatalf("expected auto resolution to find ega.cpx")
	}
}

func TestSessionTeardownReloadsFontsWhenTextModeActive(t *testing.T) {
	files := memSource{
		"de.kl":      buildTestKLForCodepage(850),
		"custom.cpx": buildTestCPIForCodepage(850),
	}
	video := &fakeVideoHost{textMode: true}
	s := NewSession(files, nil, &MemoryFontSink{}, video, nil)
	if err := s.Load("de", 850, "custom.cpx"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.CodePage() != 850 {
		t.Fatalf("CodePage = %d, want 850", s.CodePage())
	}

	if err := s.Teardown(); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if s.CodePage() != 437 {
		t.Fatalf("CodePage after teardown = %d, want 437", s.CodePage())
	}
	if video.reloadCalls == 0 {
		t.Fatalf("expected Teardown to reload ROM fonts")
	}
	if s.QueryName() != "" {
		t.Fatalf("expected the layout to be discarded back to identity")
	}
}

func TestSessionTeardownSkipsReloadOutsideTextMode(t *testing.T) {
	files := memSource{
		"de.kl":      buildTestKLForCodepage(850),
		"custom.cpx": buildTestCPIForCodepage(850),
	}
	video := &fakeVideoHost{textMode: false}
	s := NewSession(files, nil, &MemoryFontSink{}, video, nil)
	if err := s.Load("de", 850, "custom.cpx"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := s.Teardown(); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if s.CodePage() != 850 {
		t.Fatalf("CodePage after teardown = %d, want unchanged 850 outside text mode", s.CodePage())
	}
	if video.reloadCalls != 0 {
		t.Fatalf("expected no reload outside text mode")
	}
}

func TestSessionTeardownNoopAtDefaultCodepage(t *testing.T) {
	video := &fakeVideoHost{textMode: true}
	s := NewSession(nil, nil, nil, video, nil)
	if err := s.Teardown(); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if video.reloadCalls != 0 {
		t.Fatalf("expected no reload when already at codepage 437")
	}
}
