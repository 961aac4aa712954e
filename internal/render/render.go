// Package render wraps the external barcode drawing libraries behind a
// single symbology-dispatching entry point.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/aztec"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/pdf417"
	"github.com/boombuler/barcode/twooffive"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// MimeType is the media type of every image this package produces.
const MimeType = "image/png"

// Render produces PNG bytes for a fully-resolved options record. Failures
// the caller can correct (unknown symbology, payload the symbology rejects,
// malformed option values) come back as *InputError; anything else is an
// internal fault.
func Render(opts Options) ([]byte, error) {
	if opts.Scale < 1 {
		return nil, inputErrf("scale must be at least 1, got %d", opts.Scale)
	}

	bg, err := parseHexColor(opts.Background)
	if err != nil {
		return nil, err
	}

	symbol, linear, err := encodeSymbol(opts)
	if err != nil {
		return nil, err
	}

	img := compose(symbol, opts, bg, linear)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// encodeSymbol dispatches on the symbology identifier. The second return
// tells the caller whether the symbol is linear (stretched to the requested
// height and eligible for a text label) or two-dimensional.
func encodeSymbol(opts Options) (image.Image, bool, error) {
	switch opts.Symbology {
	case "qrcode":
		q, err := qrcode.New(opts.Text, qrcode.Medium)
		if err != nil {
			return nil, false, inputErrf("qrcode: %v", err)
		}
		q.DisableBorder = true
		// Negative size means pixels per module.
		return q.Image(-opts.Scale), false, nil

	case "code128":
		bc, err := code128.Encode(opts.Text)
		return scaleSymbol(bc, err, opts, true)
	case "code39":
		bc, err := code39.Encode(opts.Text, false, true)
		return scaleSymbol(bc, err, opts, true)
	case "code93":
		bc, err := code93.Encode(opts.Text, false, true)
		return scaleSymbol(bc, err, opts, true)
	case "ean8", "ean13":
		bc, err := ean.Encode(opts.Text)
		return scaleSymbol(bc, err, opts, true)
	case "codabar", "rationalizedcodabar":
		bc, err := codabar.Encode(opts.Text)
		return scaleSymbol(bc, err, opts, true)
	case "2of5":
		bc, err := twooffive.Encode(opts.Text, false)
		return scaleSymbol(bc, err, opts, true)
	case "interleaved2of5":
		bc, err := twooffive.Encode(opts.Text, true)
		return scaleSymbol(bc, err, opts, true)

	case "datamatrix":
		bc, err := datamatrix.Encode(opts.Text)
		return scaleSymbol(bc, err, opts, false)
	case "azteccode", "aztec":
		bc, err := aztec.Encode([]byte(opts.Text), aztec.DEFAULT_EC_PERCENT, aztec.DEFAULT_LAYERS)
		return scaleSymbol(bc, err, opts, false)
	case "pdf417":
		bc, err := pdf417.Encode(opts.Text, 2)
		return scaleSymbol(bc, err, opts, false)
	}

	return nil, false, inputErrf("unsupported symbology %q", opts.Symbology)
}

// scaleSymbol stretches an encoded symbol to its pixel size: linear codes
// get module-width x scale wide and the requested height, 2D codes scale
// both axes uniformly.
func scaleSymbol(bc barcode.Barcode, encErr error, opts Options, linear bool) (image.Image, bool, error) {
	if encErr != nil {
		return nil, linear, inputErrf("%s: %v", opts.Symbology, encErr)
	}

	bounds := bc.Bounds()
	width := bounds.Dx() * opts.Scale
	height := bounds.Dy() * opts.Scale
	if linear {
		height = opts.Height * opts.Scale
	}

	scaled, err := barcode.Scale(bc, width, height)
	if err != nil {
		return nil, linear, inputErrf("%s: %v", opts.Symbology, err)
	}
	return scaled, linear, nil
}

// compose draws the symbol onto a padded, background-filled canvas and,
// for linear symbologies with includetext set, a human-readable line below.
func compose(symbol image.Image, opts Options, bg color.Color, linear bool) image.Image {
	sb := symbol.Bounds()

	labelHeight := 0
	withLabel := linear && opts.IncludeText && opts.Text != ""
	if withLabel {
		labelHeight = basicfont.Face7x13.Height + 4
	}

	width := sb.Dx() + 2*opts.PaddingWidth
	height := sb.Dy() + 2*opts.PaddingHeight + labelHeight

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(canvas,
		image.Rect(opts.PaddingWidth, opts.PaddingHeight, opts.PaddingWidth+sb.Dx(), opts.PaddingHeight+sb.Dy()),
		symbol, sb.Min, draw.Over)

	if withLabel {
		drawLabel(canvas, opts, width, opts.PaddingHeight+sb.Dy())
	}

	return canvas
}

func drawLabel(canvas *image.RGBA, opts Options, width, top int) {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, opts.Text).Ceil()

	var x int
	switch opts.TextXAlign {
	case "left":
		x = opts.PaddingWidth
	case "right":
		x = width - opts.PaddingWidth - textWidth
	default: // center
		x = (width - textWidth) / 2
	}
	if x < 0 {
		x = 0
	}

	d := font.Drawer{
		Dst:  canvas,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(x, top+face.Height+2),
	}
	d.DrawString(opts.Text)
}

func parseHexColor(s string) (color.Color, error) {
	if len(s) != 6 {
		return nil, inputErrf("backgroundcolor must be a 6-digit hex value, got %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, inputErrf("backgroundcolor must be a 6-digit hex value, got %q", s)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xFF,
	}, nil
}
