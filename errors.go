package keyb

import "errors"

// Error taxonomy for layout and code-page loading (spec §7). translate never
// returns an error: unmapped scan codes, zero table entries and exhausted
// dead-key tables all fall through to pass-through silently.
var (
	// ErrFileNotFound means no .KL file, no KCL library record and no
	// embedded blob contains the requested layout id.
	ErrFileNotFound = errors.New("keyb: layout or codepage file not found")

	// ErrInvalidFile means a magic mismatch, a truncated record, or an
	// offset out of bounds was found in a KL/KCL file.
	ErrInvalidFile = errors.New("keyb: invalid keyboard layout file")

	// ErrLayoutNotFound means the file parsed fine, but no submapping
	// matches the requested code page and no wildcard submapping exists.
	ErrLayoutNotFound = errors.New("keyb: no matching submapping in layout file")

	// ErrInvalidCPFile means a CPI/CPX file failed signature checks,
	// decompression, or contains no entry for the requested code page.
	ErrInvalidCPFile = errors.New("keyb: invalid code page file")
)
