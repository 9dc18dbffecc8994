// Package decoder reads input containers into canonical RGB24 images.
package decoder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Skryldev/gen-image/core"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
)

// maxDimension bounds the header integers before they reach the allocator.
const maxDimension = 1 << 20

// PNM decodes binary "P6" portable pixmaps with a maximum sample value of
// 255. Comments are not supported.
type PNM struct{}

func NewPNM() *PNM { return &PNM{} }

func (p *PNM) CanDecode(c core.Container) bool { return c == core.ContainerPNM }

func (p *PNM) Decode(ctx context.Context, r io.Reader) (*core.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryPipeline, "pnm.decode", err)
	}
	br := bufio.NewReader(r)

	var sig [2]byte
	if _, err := io.ReadFull(br, sig[:]); err != nil {
		return nil, short("pnm.signature", err)
	}
	if sig[0] != 'P' || sig[1] != '6' {
		return nil, apperrors.New(apperrors.CategoryInput, "pnm.signature", apperrors.ErrBadSignature)
	}

	width, err := readInteger(br, "width")
	if err != nil {
		return nil, err
	}
	height, err := readInteger(br, "height")
	if err != nil {
		return nil, err
	}
	depth, err := readInteger(br, "depth")
	if err != nil {
		return nil, err
	}
	if depth != 255 {
		return nil, apperrors.Errorf(apperrors.CategoryInput, "pnm.depth",
			"%w %d", apperrors.ErrBadDepth, depth)
	}

	img, err := core.NewImage(format.MustLookup(format.RGB24), width, height)
	if err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(br, img.Data); err != nil {
		_ = img.Release()
		return nil, short("pnm.data", err)
	}
	return img, nil
}

func short(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperrors.New(apperrors.CategoryInput, op, apperrors.ErrShortData)
	}
	return apperrors.Wrap(apperrors.CategoryIO, op, err)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// readInteger skips leading whitespace, reads a decimal integer and consumes
// the single whitespace byte terminating it.
func readInteger(br *bufio.Reader, field string) (int, error) {
	op := "pnm." + field
	c, err := br.ReadByte()
	for err == nil && isSpace(c) {
		c, err = br.ReadByte()
	}
	if err != nil {
		return 0, short(op, err)
	}

	value, digits := 0, 0
	for err == nil && isDigit(c) {
		value = value*10 + int(c-'0')
		if value > maxDimension {
			return 0, apperrors.Errorf(apperrors.CategoryInput, op, "invalid %s: too large", field)
		}
		digits++
		c, err = br.ReadByte()
	}
	if err != nil {
		return 0, short(op, err)
	}
	if digits == 0 || !isSpace(c) {
		return 0, apperrors.New(apperrors.CategoryInput, op, fmt.Errorf("invalid %s", field))
	}
	return value, nil
}
