package histogram

import (
	"encoding"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	apperrors "github.com/Skryldev/gen-image/errors"
)

// Record is implemented by HGO and HGT.
type Record interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Series() [][]uint32
	Title() string
}

// Decode parses a record, picking its type from the size.
func Decode(data []byte) (Record, error) {
	var rec Record
	switch len(data) {
	case HGOSize:
		rec = &HGO{}
	case HGTSize:
		rec = &HGT{}
	default:
		return nil, apperrors.Errorf(apperrors.CategoryInput, "histogram.decode",
			"%w: invalid histogram length %d", apperrors.ErrShortData, len(data))
	}
	if err := rec.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return rec, nil
}

const (
	chartWidth   = 512
	panelHeight  = 160
	panelGap     = 8
	titleHeight  = 24
	chartMargin  = 8
	textBaseline = 17
)

var (
	hgoColors = []color.RGBA{{200, 40, 40, 255}, {40, 160, 40, 255}, {40, 70, 200, 255}}
	hgtColors = []color.RGBA{
		{220, 40, 40, 255}, {210, 190, 30, 255}, {40, 170, 40, 255},
		{30, 180, 190, 255}, {40, 70, 210, 255}, {190, 40, 190, 255},
	}
	background = color.RGBA{255, 255, 255, 255}
	axisColor  = color.RGBA{96, 96, 96, 255}
)

// Render draws one bar chart per series under a title line. Each panel is
// scaled to its own maximum.
func Render(rec Record) *image.RGBA {
	series := rec.Series()
	palette := hgoColors
	if len(series) == HGTAreas {
		palette = hgtColors
	}

	height := titleHeight + len(series)*(panelHeight+panelGap) + chartMargin
	img := image.NewRGBA(image.Rect(0, 0, chartWidth+2*chartMargin, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(chartMargin, textBaseline),
	}
	d.DrawString(rec.Title())

	for i, bins := range series {
		top := titleHeight + i*(panelHeight+panelGap)
		panel := image.Rect(chartMargin, top, chartMargin+chartWidth, top+panelHeight)
		drawPanel(img, panel, bins, palette[i%len(palette)])
	}
	return img
}

func drawPanel(dst draw.Image, r image.Rectangle, bins []uint32, c color.RGBA) {
	var peak uint32
	for _, b := range bins {
		peak = max(peak, b)
	}

	baseline := image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y)
	draw.Draw(dst, baseline, image.NewUniform(axisColor), image.Point{}, draw.Src)
	if peak == 0 || len(bins) == 0 {
		return
	}

	barWidth := r.Dx() / len(bins)
	fill := image.NewUniform(c)
	for i, b := range bins {
		h := int(uint64(b) * uint64(r.Dy()-1) / uint64(peak))
		if h == 0 {
			continue
		}
		bar := image.Rect(r.Min.X+i*barWidth, r.Max.Y-1-h, r.Min.X+(i+1)*barWidth-1, r.Max.Y-1)
		draw.Draw(dst, bar, fill, image.Point{}, draw.Src)
	}
}
