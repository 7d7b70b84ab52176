// Command fontpreview loads a layout's code page and renders the
// installed 8x8/14x8/16x8 glyph bitmaps to a PNG sheet, giving
// font_installer.go's FontSink a visual consumer the way the teacher's
// own video backend is the real consumer of its frame buffer. With
// -window it also opens an interactive ebiten window showing the same
// sheet, mirroring video_backend_ebiten.go's Update/Draw/Layout game loop.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retrocore-labs/dioskeyb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	cellW    = 8
	cellCols = 16
	cellRows = 16
	glyphGap = 2
	legendH  = 16
)

func main() {
	layout := flag.String("layout", "us", "layout id to load")
	codepage := flag.Int("codepage", 437, "code page id whose font to render")
	size := flag.Int("size", 16, "glyph height to render: 8, 14, or 16")
	out := flag.String("out", "fontsheet.png", "output PNG path")
	window := flag.Bool("window", false, "open an interactive ebiten window instead of (or in addition to) writing a PNG")
	flag.Parse()

	sink := &keyb.MemoryFontSink{}
	session := keyb.NewSession(nil, nil, sink, nil, nil)
	if err := session.Load(*layout, *codepage, ""); err != nil {
		fmt.Fprintf(os.Stderr, "fontpreview: loading %s/%d: %v\n", *layout, *codepage, err)
		os.Exit(1)
	}

	glyphs, height, err := selectGlyphs(sink, *size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fontpreview: %v\n", err)
		os.Exit(1)
	}

	sheet := renderSheet(glyphs, height, fmt.Sprintf("%s cp%d %dpx", *layout, *codepage, height))

	if !*window {
		if err := writePNG(*out, sheet); err != nil {
			fmt.Fprintf(os.Stderr, "fontpreview: writing %s: %v\n", *out, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%dx%d)\n", *out, sheet.Bounds().Dx(), sheet.Bounds().Dy())
		return
	}

	g := &previewGame{sheet: sheet}
	ebiten.SetWindowSize(sheet.Bounds().Dx()*2, sheet.Bounds().Dy()*2)
	ebiten.SetWindowTitle("fontpreview")
	if err := ebiten.RunGame(g); err != nil {
		fmt.Fprintf(os.Stderr, "fontpreview: %v\n", err)
		os.Exit(1)
	}
}

// selectGlyphs picks the requested bitmap size out of sink, reconstructing
// a flat 256-glyph slice even for the split 8-line font (first/second
// 128-glyph halves installed by separate FontSink calls, per §4.F).
func selectGlyphs(sink *keyb.MemoryFontSink, size int) ([]byte, int, error) {
	switch size {
	case 16:
		if sink.Font16 == nil {
			return nil, 0, fmt.Errorf("no 16-line font installed")
		}
		return sink.Font16, 16, nil
	case 14:
		if sink.Font14 == nil {
			return nil, 0, fmt.Errorf("no 14-line font installed")
		}
		return sink.Font14, 14, nil
	case 8:
		if sink.Font8First == nil {
			return nil, 0, fmt.Errorf("no 8-line font installed")
		}
		return append(append([]byte{}, sink.Font8First...), sink.Font8Second...), 8, nil
	default:
		return nil, 0, fmt.Errorf("unsupported glyph size %d (want 8, 14, or 16)", size)
	}
}

// renderSheet draws every glyph in a 16x16 grid, one bit per pixel, with
// a basicfont legend across the top -- the one place in this repository
// golang.org/x/image earns its keep outside of the teacher's own status
// bar.
func renderSheet(glyphs []byte, height int, legend string) *image.RGBA {
	cellH := height + glyphGap
	width := cellCols * (cellW + glyphGap)
	rows := len(glyphs) / height
	if rows > cellRows {
		rows = cellRows
	}
	sheetH := legendH + rows*cellH

	img := image.NewRGBA(image.Rect(0, 0, width, sheetH))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.Black}, image.Point{}, draw.Src)

	drawLegend(img, legend, basicfont.Face7x13)

	glyphIdx := 0
	for row := 0; row < rows; row++ {
		for col := 0; col < cellCols; col++ {
			if glyphIdx >= len(glyphs)/height {
				break
			}
			ox := col * (cellW + glyphGap)
			oy := legendH + row*cellH
			drawGlyph(img, glyphs[glyphIdx*height:(glyphIdx+1)*height], ox, oy)
			glyphIdx++
		}
	}
	return img
}

func drawGlyph(img *image.RGBA, rows []byte, ox, oy int) {
	for y, rowByte := range rows {
		for x := 0; x < cellW; x++ {
			if rowByte&(0x80>>uint(x)) != 0 {
				img.Set(ox+x, oy+y, color.White)
			}
		}
	}
}

func drawLegend(img *image.RGBA, legend string, face *basicfont.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{200, 200, 200, 255}),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(2), Y: fixed.I(11)},
	}
	d.DrawString(legend)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

// previewGame is the ebiten.Game implementation, grounded on
// video_backend_ebiten.go's Update/Draw/Layout triad.
type previewGame struct {
	sheet *image.RGBA
	img   *ebiten.Image
}

func (g *previewGame) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	return nil
}

func (g *previewGame) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImageFromImage(g.sheet)
	}
	screen.DrawImage(g.img, nil)
}

func (g *previewGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.sheet.Bounds().Dx(), g.sheet.Bounds().Dy()
}
