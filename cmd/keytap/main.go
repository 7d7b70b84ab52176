// Command keytap is a demo bridge between real Linux keyboard hardware
// and a keyb.Session: it reads raw scan codes off an evdev device node,
// runs them through Session.Translate, and re-emits the translated
// character as a synthetic key event through uinput. It gives the
// core's external collaborators — the BIOS-buffer enqueue and,
// indirectly, real keyboard input — a real-world consumer outside of
// the test suite; the core itself never touches evdev or uinput.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bendahl/uinput"
	evdev "github.com/holoplot/go-evdev"
	"github.com/retrocore-labs/dioskeyb"
	"golang.org/x/term"
)

// evdevToScan maps a handful of evdev key codes to their BIOS scan codes.
// A production bridge would cover the full keyboard; this demo sticks to
// letters and shift, enough to exercise Translate's modifier-plane logic.
var evdevToScan = map[evdev.EvCode]int{
	evdev.KEY_Q: 0x10, evdev.KEY_W: 0x11, evdev.KEY_E: 0x12, evdev.KEY_R: 0x13,
	evdev.KEY_A: 0x1e, evdev.KEY_S: 0x1f, evdev.KEY_D: 0x20,
	evdev.KEY_LEFTSHIFT: 0x2a, evdev.KEY_RIGHTSHIFT: 0x36,
}

func main() {
	device := flag.String("device", "", "evdev device path, e.g. /dev/input/event3 (required)")
	layout := flag.String("layout", "us", "layout id to load before tapping keys")
	codepage := flag.Int("codepage", 437, "code page id to load alongside the layout")
	flag.Parse()

	if *device == "" {
		fmt.Fprintln(os.Stderr, "keytap: -device is required; see -h")
		os.Exit(1)
	}

	session := keyb.NewSession(nil, nil, nil, nil, nil)
	if *layout != "us" {
		if _, err := session.Switch(*layout); err != nil {
			fmt.Fprintf(os.Stderr, "keytap: loading layout %q: %v\n", *layout, err)
			os.Exit(1)
		}
	}
	_ = *codepage // reserved: a full bridge would Load(layout, codepage) up front

	dev, err := evdev.Open(*device)
	if err != nil {
		fmt.Fprintf(os.Stderr, "keytap: opening %s: %v\n", *device, err)
		os.Exit(1)
	}
	defer dev.Close()

	vkbd, err := uinput.CreateKeyboard("/dev/uinput", []byte("keytap"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "keytap: creating uinput keyboard: %v\n", err)
		os.Exit(1)
	}
	defer vkbd.Close()

	oldState, rawErr := term.MakeRaw(int(os.Stdin.Fd()))
	if rawErr == nil {
		defer term.Restore(int(os.Stdin.Fd()), oldState)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var flags1 uint8
	go func() {
		for {
			ev, err := dev.ReadOne()
			if err != nil {
				return
			}
			if ev.Type != evdev.EV_KEY {
				continue
			}
			scan, ok := evdevToScan[ev.Code]
			if !ok {
				continue
			}
			switch ev.Value {
			case 1: // press
				if scan == 0x2a || scan == 0x36 {
					flags1 |= 0x01
				}
				emitTranslated(session, vkbd, scan, flags1)
			case 0: // release
				if scan == 0x2a || scan == 0x36 {
					flags1 &^= 0x01
				}
			}
		}
	}()

	<-sigCh
}

// emitTranslated runs one scan code through the session and, if it
// produced a character, presses the corresponding uinput key. The sink
// here is a synthetic keyboard instead of an emulated BIOS buffer.
func emitTranslated(session *keyb.Session, vkbd uinput.Keyboard, scan int, flags1 uint8) {
	word, emit, _ := session.Translate(scan, flags1, 0, 0)
	if !emit {
		return
	}
	ch := byte(word & 0xff)
	if key, ok := asciiToUinput[ch]; ok {
		vkbd.KeyPress(key)
	}
}

// asciiToUinput covers the lowercase/uppercase letters this demo's
// evdevToScan table can actually produce.
var asciiToUinput = map[byte]int{
	'a': uinput.KeyA, 'A': uinput.KeyA,
	's': uinput.KeyS, 'S': uinput.KeyS,
	'd': uinput.KeyD, 'D': uinput.KeyD,
	'q': uinput.KeyQ, 'Q': uinput.KeyQ,
	'w': uinput.KeyW, 'W': uinput.KeyW,
	'e': uinput.KeyE, 'E': uinput.KeyE,
	'r': uinput.KeyR, 'R': uinput.KeyR,
}
