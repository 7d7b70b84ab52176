package keyb

// FontSink is the physical destination the font installer writes glyph
// bitmaps to: the video adapter's character generator RAM. Grounded on
// terminal_io.go's memory-mapped register pattern -- production code
// wires a real adapter, tests wire MemoryFontSink.
type FontSink interface {
	WriteFont16(glyphs []byte) error
	WriteFont14(glyphs []byte) error
	WriteFont8(first, second []byte) error
}

// VideoHost is the external video-adapter collaborator a code-page load
// consults and a teardown restores (§6: "reload ROM fonts; recompute ROM
// checksum", "current video mode query"). Like RealMode (upx_trampoline.go)
// and FontSink itself, nothing in the pack emulates a BIOS ROM checksum or
// a VGA mode byte, so this stays an interface with no in-repo hardware
// implementation -- production code supplies its own, tests use a fake.
type VideoHost interface {
	// TextMode reports whether the adapter is currently displaying a text
	// mode on EGA/VGA-class hardware, the condition §4.E and §4.G both
	// gate a font reload on.
	TextMode() bool
	// ReloadFont reapplies the ROM font tables to the active display.
	ReloadFont()
	// RecomputeROMChecksum refreshes the BIOS ROM checksum after font
	// memory has changed underneath it.
	RecomputeROMChecksum()
}

// InstallFont writes every bitmap size present in fd to sink, skipping
// sizes the code page didn't provide. Mirrors read_codepage_file's
// per-size MEM_BlockWrite calls into ROM font memory. If video is not nil
// and reports a text mode is active, InstallFont also requests the font
// be reapplied and the ROM checksum refreshed, per §4.E's post-install
// step; this package otherwise stops at handing bytes to FontSink and
// never touches a real video register itself.
func InstallFont(sink FontSink, fd *FontData, video VideoHost) error {
	if fd == nil || sink == nil {
		return nil
	}
	changed := false
	if fd.Font16 != nil {
		if err := sink.WriteFont16(fd.Font16); err != nil {
			return err
		}
		changed = true
	}
	if fd.Font14 != nil {
		if err := sink.WriteFont14(fd.Font14); err != nil {
			return err
		}
		changed = true
	}
	if fd.Font8First != nil {
		if err := sink.WriteFont8(fd.Font8First, fd.Font8Second); err != nil {
			return err
		}
		changed = true
	}
	if changed && video != nil && video.TextMode() {
		video.ReloadFont()
		video.RecomputeROMChecksum()
	}
	return nil
}

// MemoryFontSink is a FontSink that keeps the most recently written
// bitmaps in memory. Used by the core's own tests and by cmd/fontpreview,
// neither of which has a real video adapter to write into.
type MemoryFontSink struct {
	Font16      []byte
	Font14      []byte
	Font8First  []byte
	Font8Second []byte
}

func (m *MemoryFontSink) WriteFont16(glyphs []byte) error {
	m.Font16 = append([]byte(nil), glyphs...)
	return nil
}

func (m *MemoryFontSink) WriteFont14(glyphs []byte) error {
	m.Font14 = append([]byte(nil), glyphs...)
	return nil
}

func (m *MemoryFontSink) WriteFont8(first, second []byte) error {
	m.Font8First = append([]byte(nil), first...)
	m.Font8Second = append([]byte(nil), second...)
	return nil
}
