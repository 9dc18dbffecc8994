package encoder

import (
	"bytes"
	"context"
	"image/png"

	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
)

// PNG encodes previews and histogram charts.
type PNG struct {
	Compression png.CompressionLevel
}

func NewPNG() *PNG { return &PNG{Compression: png.DefaultCompression} }

func (p *PNG) CanEncode(c core.Container) bool { return c == core.ContainerPNG }

func (p *PNG) Encode(ctx context.Context, img *core.Image) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, "png.encode", err)
	}
	src, err := ToRGBA(img)
	if err != nil {
		return nil, err
	}

	enc := &png.Encoder{CompressionLevel: p.Compression}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, src); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryFormat, "png.encode", err)
	}
	return buf.Bytes(), nil
}
