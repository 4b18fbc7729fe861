package report

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/dtnitsch/llm-log-parser/pkg/flatten"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

var (
	bgColor    = color.RGBA{255, 255, 255, 255}
	textColor  = color.RGBA{51, 51, 51, 255}
	keyColor   = color.RGBA{41, 128, 185, 255}
	titleColor = color.RGBA{44, 62, 80, 255}
)

// ImageOptions controls PNG rendering. Without a FontPath the built-in
// bitmap face is used, which has no CJK glyphs.
type ImageOptions struct {
	Width    int
	FontPath string
}

type faces struct {
	title, key, value font.Face
}

func loadFaces(fontPath string) (faces, error) {
	if fontPath == "" {
		f := basicfont.Face7x13
		return faces{f, f, f}, nil
	}
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return faces{}, fmt.Errorf("failed to read font file: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return faces{}, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := func(size float64) font.Face {
		return truetype.NewFace(parsed, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
	}
	return faces{title: face(24), key: face(18), value: face(16)}, nil
}

type line struct {
	text  string
	face  font.Face
	color color.Color
	gap   float64
}

// RenderLeaves draws leaf pairs as a PNG card: title, then each key in blue
// followed by its value wrapped to the image width.
func RenderLeaves(title string, pairs []flatten.Pair, opts ImageOptions) (bytes.Buffer, error) {
	var buf bytes.Buffer
	width := opts.Width
	if width <= 0 {
		width = 900
	}
	fs, err := loadFaces(opts.FontPath)
	if err != nil {
		return buf, err
	}

	const margin = 30.0
	maxText := float64(width) - 2*margin

	measure := gg.NewContext(width, 10)
	var lines []line
	if title != "" {
		lines = append(lines, wrapLines(measure, fs.title, title, maxText, titleColor, 16)...)
	}
	for _, p := range pairs {
		lines = append(lines, wrapLines(measure, fs.key, p.Key, maxText, keyColor, 4)...)
		lines = append(lines, wrapLines(measure, fs.value, p.Value, maxText, textColor, 12)...)
	}

	height := margin
	for _, l := range lines {
		height += lineHeight(l.face) + l.gap
	}
	height += margin

	dc := gg.NewContext(width, int(height))
	dc.SetColor(bgColor)
	dc.Clear()

	y := margin
	for _, l := range lines {
		dc.SetFontFace(l.face)
		dc.SetColor(l.color)
		h := lineHeight(l.face)
		dc.DrawStringAnchored(l.text, margin, y+h/2, 0, 0.5)
		y += h + l.gap
	}

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

// wrapLines breaks text rune by rune so CJK runs without spaces still wrap.
// Only the last line of a block carries the block gap.
func wrapLines(dc *gg.Context, face font.Face, text string, maxWidth float64, c color.Color, gap float64) []line {
	dc.SetFontFace(face)
	var out []line
	for _, para := range strings.Split(text, "\n") {
		var cur []rune
		for _, r := range para {
			next := string(append(cur, r))
			if w, _ := dc.MeasureString(next); w > maxWidth && len(cur) > 0 {
				out = append(out, line{text: string(cur), face: face, color: c})
				cur = []rune{r}
				continue
			}
			cur = append(cur, r)
		}
		out = append(out, line{text: string(cur), face: face, color: c})
	}
	out[len(out)-1].gap = gap
	return out
}

func lineHeight(face font.Face) float64 {
	m := face.Metrics()
	return float64(m.Height.Ceil()) + 4
}
