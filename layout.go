package keyb

// MaxScanCode is the highest scan code the layout table indexes directly.
// Matches DOSBox's MAX_SCAN_CODE; scan codes above it never address the
// table and translate falls through to pass-through.
const MaxScanCode = 0x60

// LayoutPages is the number of per-scan-code planes stored in the dense
// table: plane 0 (normal), plane 1 (shift), up to 8 user-defined additional
// planes, a command-bit row and a per-key-flag row.
const LayoutPages = 12

const maxAdditionalPlanes = LayoutPages - 4 // 8

// commandRow and flagRow are the fixed plane indices holding, per scan
// code, the bitmask of which planes carry a command code and the merged
// key-lock/pairing flags respectively.
const (
	commandRow = LayoutPages - 2 // 10
	flagRow    = LayoutPages - 1 // 11
)

// planePredicate gates whether an additional plane applies to the current
// modifier state: the plane is active when every required bit is set and
// no forbidden bit is set, checked against both the live modifier flags and
// the session's user-defined flag byte.
type planePredicate struct {
	requiredFlags     uint16
	forbiddenFlags    uint16
	requiredUserFlags uint16
	forbiddenUserFlags uint16
}

// Layout is a fully parsed keyboard layout: the dense scan-code/plane
// table, the additional-plane predicates that select among planes 2..9,
// and the dead-key (diacritic) composition table. Zero value is the
// identity layout (ParseKL never produces table entries that would not
// pass through the scan code unchanged).
type Layout struct {
	table [(MaxScanCode + 1) * LayoutPages]uint16

	planes            [maxAdditionalPlanes]planePredicate
	additionalPlanes  int
	usedLockModifiers uint8

	diacritics        [2048]byte
	diacriticsEntries int

	// diacriticsCharacter is nonzero while a dead key is pending: it holds
	// the command code (200..234) of the diacritic currently awaiting its
	// next literal key.
	diacriticsCharacter int

	userKeys uint8

	languageCodes []string

	// fileName is the lookup key this layout was loaded under ("none" for
	// the identity layout), mirroring current_keyboard_file_name.
	fileName string

	useForeignLayout bool

	// filesSrc, builtinSrc and codepage are remembered after a successful
	// load so a command code 120..139 can re-parse the same file with a
	// forced submapping, in place, the way read_keyboard_file repopulates
	// `this` rather than constructing a new keyboard_layout.
	filesSrc, builtinSrc ResourceSource
	codepage             uint16
}

func newLayout() *Layout {
	l := &Layout{}
	l.reset()
	return l
}

// reset restores identity behavior: an all-zero table (pure pass-through),
// every additional plane forbidden outright, and no pending dead key.
// Mirrors keyboard_layout::reset().
func (l *Layout) reset() {
	for i := range l.table {
		l.table[i] = 0
	}
	for i := range l.planes {
		l.planes[i] = planePredicate{forbiddenFlags: 0xffff, forbiddenUserFlags: 0xffff}
	}
	l.additionalPlanes = 0
	l.usedLockModifiers = 0x0f
	l.diacriticsEntries = 0
	l.diacriticsCharacter = 0
	l.userKeys = 0
	l.languageCodes = nil
	l.fileName = "none"
	l.useForeignLayout = false
}

func (l *Layout) idx(scan int, plane int) int {
	return scan*LayoutPages + plane
}

// LanguageCodes returns the language codes declared in the loaded layout
// file, in file order. Empty for the identity layout.
func (l *Layout) LanguageCodes() []string {
	return l.languageCodes
}

// MainLanguageCode returns the first declared language code, or "" if the
// layout declares none. Mirrors keyboard_layout::main_language_code().
func (l *Layout) MainLanguageCode() string {
	if len(l.languageCodes) == 0 {
		return ""
	}
	return l.languageCodes[0]
}

// Name returns the lookup key the layout was loaded under, or "none" for
// the identity layout.
func (l *Layout) Name() string {
	return l.fileName
}
