package terminal

import (
	"bytes"
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/BourgeoisBear/rasterm"
	"github.com/nfnt/resize"
)

// ImageMode is the image protocol the terminal speaks
type ImageMode int

const (
	ModeNone ImageMode = iota
	ModeKitty
	ModeIterm
	ModeSixel
)

// CoverImageID is the Kitty image id used for book covers so they can be
// removed without touching anything else
const CoverImageID uint32 = 4217

// Approximate pixel size of one terminal cell, used to size covers
const (
	cellWidthPx  = 10
	cellHeightPx = 20
)

func (m ImageMode) String() string {
	switch m {
	case ModeKitty:
		return "Kitty"
	case ModeIterm:
		return "iTerm2"
	case ModeSixel:
		return "Sixel"
	default:
		return "None"
	}
}

// DetectMode checks which image protocol the terminal supports
func DetectMode() ImageMode {
	if rasterm.IsKittyCapable() {
		return ModeKitty
	}
	if rasterm.IsItermCapable() {
		return ModeIterm
	}
	if capable, _ := rasterm.IsSixelCapable(); capable {
		return ModeSixel
	}
	return ModeNone
}

// toPaletted converts an image to the paletted form Sixel needs
func toPaletted(img image.Image) *image.Paletted {
	bounds := img.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.Draw(paletted, bounds, img, bounds.Min, draw.Src)
	return paletted
}

// FitCover scales img down to fit in cols x rows terminal cells, keeping the
// aspect ratio. Images that already fit are returned as is.
func FitCover(img image.Image, cols, rows int) image.Image {
	if cols <= 0 || rows <= 0 {
		return img
	}
	return resize.Thumbnail(uint(cols*cellWidthPx), uint(rows*cellHeightPx), img, resize.Lanczos3)
}

// RenderCover decodes an encoded cover image, fits it to cols x rows cells and
// returns the escape sequence that draws it. ModeNone renders nothing.
func RenderCover(data []byte, mode ImageMode, cols, rows int) (string, error) {
	if mode == ModeNone {
		return "", nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode cover: %w", err)
	}
	return renderImage(FitCover(img, cols, rows), mode)
}

func renderImage(img image.Image, mode ImageMode) (string, error) {
	var buf bytes.Buffer
	var err error

	switch mode {
	case ModeKitty:
		err = rasterm.KittyWriteImage(&buf, img, rasterm.KittyImgOpts{ImageId: CoverImageID})
	case ModeIterm:
		err = rasterm.ItermWriteImage(&buf, img)
	case ModeSixel:
		err = rasterm.SixelWriteImage(&buf, toPaletted(img))
	default:
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ClearImages returns the escape sequence that removes drawn images
func ClearImages(mode ImageMode) string {
	switch mode {
	case ModeKitty:
		// a=d delete, d=A all images
		return "\x1b_Ga=d,d=A\x1b\\"
	case ModeIterm, ModeSixel:
		// inline images live in the text grid
		return "\x1b[2J\x1b[H"
	default:
		return ""
	}
}

// ClearImagesNow writes the clear sequence straight to stdout. Bubbletea only
// repaints changed cells, so image residue has to be removed out of band.
func ClearImagesNow(mode ImageMode) {
	if seq := ClearImages(mode); seq != "" {
		_, _ = os.Stdout.WriteString(seq)
	}
}
