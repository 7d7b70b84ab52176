package keyb

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Session is the handle a host embeds: the active Layout plus the active
// code page's font data, with atomic Load/Switch semantics -- a failed
// Load or Switch never mutates what was active before the call.
type Session struct {
	mu sync.Mutex

	files   ResourceSource
	builtin ResourceSource
	dec     Decompressor
	sink    FontSink
	video   VideoHost
	logger  Logger

	layout   *Layout
	fontData *FontData
	codepage int

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewSession builds a Session with the identity layout active and no
// code page loaded. files is consulted before the built-in blobs for
// every lookup and may be nil. dec and sink may be nil if the caller
// never expects UPX-packed code pages, or never wants fonts installed
// anywhere. video may be nil; without it, InstallFont never reapplies a
// font and Teardown never reloads ROM fonts, matching a host with no
// video-mode collaborator to ask.
func NewSession(files ResourceSource, dec Decompressor, sink FontSink, video VideoHost, logger Logger) *Session {
	if logger == nil {
		logger = NopLogger{}
	}
	return &Session{
		files:    files,
		builtin:  BuiltinBlobs,
		dec:      dec,
		sink:     sink,
		video:    video,
		logger:   logger,
		layout:   newLayout(),
		codepage: 437,
	}
}

// Load unconditionally parses a fresh Layout for layoutID against
// codepageID and, if that succeeds, loads the matching code page's font
// data from codepageFile (a file name, "auto" to resolve the built-in
// bucket for codepageID, or "" as a synonym for "auto"). Neither the
// active layout nor the active code page is touched unless both complete
// -- the atomicity Switch relies on.
func (s *Session) Load(layoutID string, codepageID int, codepageFile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(layoutID, codepageID, codepageFile)
}

func (s *Session) load(layoutID string, codepageID int, codepageFile string) error {
	newLayout, err := loadLayout(s.files, s.builtin, layoutID, uint16(codepageID), -1)
	if err != nil {
		s.logger.Warnf("keyb: loading layout %q: %v", layoutID, err)
		return err
	}
	newLayout.filesSrc = s.files
	newLayout.builtinSrc = s.builtin
	newLayout.codepage = uint16(codepageID)

	if codepageFile == "" {
		codepageFile = "auto"
	}

	var fd *FontData
	if codepageID == s.codepage && s.fontData != nil {
		fd = s.fontData
	} else {
		fd, err = loadCodePage(s.files, s.builtin, s.dec, codepageFile, codepageID)
		if err != nil {
			s.logger.Warnf("keyb: loading code page %d for %q: %v", codepageID, layoutID, err)
			return err
		}
	}

	s.layout = newLayout
	s.codepage = codepageID
	s.fontData = fd
	if s.sink != nil && fd != nil {
		if installErr := InstallFont(s.sink, fd, s.video); installErr != nil {
			s.logger.Warnf("keyb: installing font for code page %d: %v", codepageID, installErr)
		}
	}
	return nil
}

// Switch implements switch_keyboard_layout: for a name not starting with
// "us", it first checks whether name matches a prefix of a language code
// the active layout already declares (toggling foreign-layout mode on
// without reparsing anything); otherwise it extracts the candidate's code
// page, then loads both the layout and that code page together. For a
// "us" name while currently foreign, it toggles back to the US layout.
// triedCP reports the code page Switch attempted, even on failure,
// mirroring switch_keyboard_layout's tried_cp out-parameter.
func (s *Session) Switch(name string) (triedCP int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(name) >= 2 && strings.EqualFold(name[:2], "us") {
		if s.layout.useForeignLayout {
			s.layout.useForeignLayout = false
			s.layout.diacriticsCharacter = 0
		}
		return s.codepage, nil
	}

	for _, lc := range s.layout.languageCodes {
		if matchesLanguageCodePrefix(lc, name) {
			if !s.layout.useForeignLayout {
				s.layout.useForeignLayout = true
				s.layout.diacriticsCharacter = 0
			}
			return s.codepage, nil
		}
	}

	triedCP = int(extractCodepage(s.files, s.builtin, name))
	if err := s.load(name, triedCP, "auto"); err != nil {
		return triedCP, err
	}
	return triedCP, nil
}

func matchesLanguageCodePrefix(code, name string) bool {
	if len(name) == 0 || len(name) > len(code) {
		return false
	}
	return strings.EqualFold(code[:len(name)], name)
}

// Translate evaluates one scan code against the active layout. See
// Layout.Translate for the return values' meaning.
func (s *Session) Translate(scan int, flags1, flags2, flags3 uint8) (word uint16, emit bool, handled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout.Translate(scan, flags1, flags2, flags3)
}

// QueryName returns the active layout's lookup key, or "" if the session
// is in US/identity mode. Mirrors get_layout_name() returning NULL.
func (s *Session) QueryName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.layout.useForeignLayout && s.layout.fileName != "none" {
		return s.layout.fileName
	}
	return ""
}

// MainLanguageCode returns the active layout's first declared language
// code, or "" if none. Mirrors main_language_code().
func (s *Session) MainLanguageCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout.MainLanguageCode()
}

// ToggleForeignLayout flips foreign/US mode without touching which
// layout is loaded, and clears any pending dead key. Mirrors
// switch_foreign_layout().
func (s *Session) ToggleForeignLayout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout.useForeignLayout = !s.layout.useForeignLayout
	s.layout.diacriticsCharacter = 0
}

// CodePage returns the active code page id.
func (s *Session) CodePage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codepage
}

// FontData returns the active code page's extracted font bitmaps, or nil
// if none has been loaded yet.
func (s *Session) FontData() *FontData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fontData
}

// Watch starts an fsnotify watcher on dirs; whenever a file under one of
// them changes, it re-runs Switch with the currently active layout name,
// so editing a custom .KL/.CPI file on disk takes effect without
// restarting the host. Call Teardown to stop it.
func (s *Session) Watch(dirs []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("keyb: starting resource watcher: %w", err)
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return fmt.Errorf("keyb: watching %s: %w", d, err)
		}
	}

	s.mu.Lock()
	s.watcher = w
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	go s.watchLoop(w, stopCh)
	return nil
}

func (s *Session) watchLoop(w *fsnotify.Watcher, stopCh chan struct{}) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.mu.Lock()
			name := s.layout.fileName
			s.mu.Unlock()
			if name == "" || name == "none" {
				continue
			}
			if _, err := s.Switch(name); err != nil {
				s.logger.Warnf("keyb: reloading %q after %s changed: %v", name, ev.Name, err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warnf("keyb: resource watcher error: %v", err)
		case <-stopCh:
			return
		}
	}
}

// Teardown implements §4.G's teardown contract: if the loaded code page
// is not 437 and a text mode is active, it reloads the ROM fonts and
// resets the code page id to 437, then discards the active Layout back
// to identity. It also stops the resource watcher, if one was started
// with Watch. Safe to call on a Session that never called Watch.
func (s *Session) Teardown() error {
	s.mu.Lock()
	if s.codepage != 437 && s.video != nil && s.video.TextMode() {
		s.video.ReloadFont()
		s.codepage = 437
	}
	s.layout = newLayout()
	s.fontData = nil

	w := s.watcher
	stopCh := s.stopCh
	s.watcher = nil
	s.stopCh = nil
	s.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	if w != nil {
		return w.Close()
	}
	return nil
}
