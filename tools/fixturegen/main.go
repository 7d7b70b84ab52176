// Command fixturegen synthesizes binary .KL/.KCL/.CPI test fixtures from
// small Lua scripts, using github.com/yuin/gopher-lua -- a dependency the
// teacher's own go.mod requires but no teacher file ever imports. Hand
// laying out dozens of offset/length bytes directly in Go test files (the
// way kl_parser_test.go's buildTestKL does for the handful of cases that
// need it) does not scale past a handful of fixtures; a Lua script lets a
// fixture author describe "magic, then data_len, then a u16 at this
// offset" declaratively instead.
package main

import (
	"flag"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
)

// builder accumulates the byte vector a fixture script is constructing.
// Exposed to Lua as a handful of global functions rather than a
// userdata object, since the scripts this tool runs are short, linear,
// and never need more than "append these bytes" / "patch these bytes".
type builder struct {
	buf []byte
}

func (b *builder) grow(n int) {
	for len(b.buf) < n {
		b.buf = append(b.buf, 0)
	}
}

func (b *builder) putByte(off int, v byte) {
	b.grow(off + 1)
	b.buf[off] = v
}

func (b *builder) putU16(off int, v uint16) {
	b.grow(off + 2)
	b.buf[off] = byte(v)
	b.buf[off+1] = byte(v >> 8)
}

func (b *builder) putU32(off int, v uint32) {
	b.grow(off + 4)
	b.buf[off] = byte(v)
	b.buf[off+1] = byte(v >> 8)
	b.buf[off+2] = byte(v >> 16)
	b.buf[off+3] = byte(v >> 24)
}

func (b *builder) putString(off int, s string) {
	b.grow(off + len(s))
	copy(b.buf[off:], s)
}

// registerBuiltins installs the fixture DSL into L: byte(off, v),
// u16(off, v), u32(off, v), str(off, s), and size(n) to pre-grow the
// buffer (for trailing zero regions a script never writes explicitly).
func registerBuiltins(L *lua.LState, b *builder) {
	reg := func(name string, fn lua.LGFunction) {
		L.SetGlobal(name, L.NewFunction(fn))
	}
	reg("byte", func(L *lua.LState) int {
		b.putByte(L.CheckInt(1), byte(L.CheckInt(2)))
		return 0
	})
	reg("u16", func(L *lua.LState) int {
		b.putU16(L.CheckInt(1), uint16(L.CheckInt(2)))
		return 0
	})
	reg("u32", func(L *lua.LState) int {
		b.putU32(L.CheckInt(1), uint32(L.CheckInt(2)))
		return 0
	})
	reg("str", func(L *lua.LState) int {
		b.putString(L.CheckInt(1), L.CheckString(2))
		return 0
	})
	reg("size", func(L *lua.LState) int {
		b.grow(L.CheckInt(1))
		return 0
	})
}

// generate runs script against a fresh builder and returns the resulting
// byte vector.
func generate(script string) ([]byte, error) {
	L := lua.NewState()
	defer L.Close()

	b := &builder{}
	registerBuiltins(L, b)

	if err := L.DoString(script); err != nil {
		return nil, fmt.Errorf("fixturegen: running script: %w", err)
	}
	return b.buf, nil
}

func main() {
	scriptPath := flag.String("script", "", "Lua fixture-description script (required)")
	outPath := flag.String("out", "", "output file path (required)")
	flag.Parse()

	if *scriptPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "fixturegen: -script and -out are both required; see -h")
		os.Exit(1)
	}

	script, err := os.ReadFile(*scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixturegen: reading %s: %v\n", *scriptPath, err)
		os.Exit(1)
	}

	data, err := generate(string(script))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "fixturegen: writing %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d bytes)\n", *outPath, len(data))
}
