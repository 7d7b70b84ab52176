package keyb

import "fmt"

// RealMode is the external collaborator the UPX trampoline delegates the
// actual far call to: a real (or emulated) x86 real-mode CPU able to run
// the self-extraction stub DOSBox patches into place. This package never
// implements an x86 real-mode CPU (spec §6 names it as an external
// collaborator) -- only the control flow around it.
type RealMode interface {
	// Alloc reserves nParagraphs of real-mode conventional memory and
	// returns the allocated segment.
	Alloc(nParagraphs uint16) (segment uint16, err error)
	// Free releases a segment returned by Alloc.
	Free(segment uint16) error
	// WriteBlock copies data into the addressed memory at seg:off.
	WriteBlock(segment, offset uint16, data []byte) error
	// ReadBlock reads n bytes back from seg:off.
	ReadBlock(segment, offset uint16, n int) ([]byte, error)
	// RunFar performs a far call into seg:off, setting up DS=ES=seg and
	// SS=seg+0x1000/SP=0xfffe before transferring control, and returns
	// once the callee executes a far return.
	RunFar(segment, offset uint16) error
}

const (
	upxScratchParagraphs = 0x1500
	upxLoadOffset        = 0x0100
	upxOutputSize        = 65536
	upxMaxPackedSize     = 0xfe00
)

// TrampolineDecompressor drives a RealMode primitive through the same
// sequence read_codepage_file uses to run a UPX self-extraction stub:
// patch the stub's far-return byte, allocate a scratch segment, copy the
// packed payload in at offset 0x100, far-call into it, and read the
// decompressed image back out.
type TrampolineDecompressor struct {
	CPU RealMode
}

func (t TrampolineDecompressor) Decompress(buf []byte, foundAt int) ([]byte, error) {
	if len(buf) > upxMaxPackedSize {
		return nil, fmt.Errorf("%w: UPX payload too large (%d bytes)", ErrInvalidCPFile, len(buf))
	}
	if foundAt+19 >= len(buf) {
		return nil, fmt.Errorf("%w: UPX marker too close to end of buffer", ErrInvalidCPFile)
	}
	if t.CPU == nil {
		return nil, fmt.Errorf("%w: no RealMode primitive configured", ErrInvalidCPFile)
	}

	patched := make([]byte, len(buf))
	copy(patched, buf)
	patched[foundAt+19] = 0xcb // far ret, in place of the stub's normal continuation

	seg, err := t.CPU.Alloc(upxScratchParagraphs)
	if err != nil {
		return nil, fmt.Errorf("keyb: allocating UPX scratch segment: %w", err)
	}
	defer t.CPU.Free(seg)

	if err := t.CPU.WriteBlock(seg, upxLoadOffset, patched); err != nil {
		return nil, fmt.Errorf("keyb: writing UPX payload: %w", err)
	}
	if err := t.CPU.RunFar(seg, upxLoadOffset); err != nil {
		return nil, fmt.Errorf("keyb: running UPX trampoline: %w", err)
	}
	out, err := t.CPU.ReadBlock(seg, upxLoadOffset, upxOutputSize)
	if err != nil {
		return nil, fmt.Errorf("keyb: reading decompressed UPX image: %w", err)
	}
	return out, nil
}
