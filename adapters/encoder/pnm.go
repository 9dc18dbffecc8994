package encoder

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
)

// PNM writes binary P6 pixmaps. The output can be fed back as an input file.
type PNM struct{}

func NewPNM() *PNM { return &PNM{} }

func (p *PNM) CanEncode(c core.Container) bool { return c == core.ContainerPNM }

func (p *PNM) Encode(ctx context.Context, img *core.Image) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, "pnm.encode", err)
	}
	if img == nil || img.Released() {
		return nil, apperrors.New(apperrors.CategoryFormat, "pnm.encode", apperrors.ErrEmptyInput)
	}
	if !img.Format.IsCanonical() {
		return nil, apperrors.Errorf(apperrors.CategoryFormat, "pnm.encode",
			"%w: %s is not a canonical format", apperrors.ErrUnsupportedFormat, img.Format.Name)
	}

	var buf bytes.Buffer
	buf.Grow(len(img.Data) + 32)
	fmt.Fprintf(&buf, "P6\n%d %d\n255\n", img.Width, img.Height)
	buf.Write(img.Data)
	return buf.Bytes(), nil
}
