package core

import (
	"context"
	"io"
	"time"

	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/format"
)

// Container identifies a file container used for ingestion or previews.
type Container string

const (
	ContainerPNM     Container = "pnm"
	ContainerPNG     Container = "png"
	ContainerBMP     Container = "bmp"
	ContainerTIFF    Container = "tiff"
	ContainerUnknown Container = "unknown"
)

// maxImageBytes caps a single pixel buffer allocation.
const maxImageBytes = 1 << 31

// Image owns exactly one pixel buffer laid out as described by Format.
//
// Images are threaded linearly through a pipeline: a stage that changes the
// data produces a new Image and the previous one is released.
type Image struct {
	Format *format.Descriptor // borrowed from the catalog
	Width  int
	Height int
	Data   []byte

	released bool
}

// NewImage allocates a zeroed image of the given format and geometry.
func NewImage(f *format.Descriptor, width, height int) (*Image, error) {
	if f == nil {
		return nil, apperrors.New(apperrors.CategoryFormat, "image.new", apperrors.ErrUnknownFormat)
	}
	if width < 0 || height < 0 {
		return nil, apperrors.Errorf(apperrors.CategoryAlloc, "image.new",
			"%w: %dx%d", apperrors.ErrInvalidDimensions, width, height)
	}
	if int64(width)*int64(height)*4 > maxImageBytes {
		return nil, apperrors.Errorf(apperrors.CategoryAlloc, "image.new",
			"%w: %dx%d %s", apperrors.ErrAllocation, width, height, f.Name)
	}
	return &Image{
		Format: f,
		Width:  width,
		Height: height,
		Data:   make([]byte, f.ImageSize(width, height)),
	}, nil
}

// Size returns the byte size of the pixel buffer.
func (img *Image) Size() int { return len(img.Data) }

// Stride returns the row length in bytes of a canonical 3-byte image.
func (img *Image) Stride() int { return img.Width * 3 }

// Like allocates a new image with the same format and geometry.
func (img *Image) Like() (*Image, error) {
	return NewImage(img.Format, img.Width, img.Height)
}

// Clone returns a deep copy of img.
func (img *Image) Clone() (*Image, error) {
	out, err := img.Like()
	if err != nil {
		return nil, err
	}
	copy(out.Data, img.Data)
	return out, nil
}

// Release drops the pixel buffer. Releasing twice is reported so ownership
// bugs surface instead of hiding.
func (img *Image) Release() error {
	if img.released {
		return apperrors.New(apperrors.CategoryPipeline, "image.release", apperrors.ErrReleased)
	}
	img.released = true
	img.Data = nil
	return nil
}

// Released reports whether Release has been called.
func (img *Image) Released() bool { return img.released }

// ProcessingResult is returned to the caller after the full pipeline completes.
type ProcessingResult struct {
	Image *Image

	// Observability.
	ProcessingTime time.Duration
	StepTimings    map[string]time.Duration
}

// Source abstracts where raw bytes come from.
type Source struct {
	Reader    io.Reader
	Container Container // optional hint; sniffed when empty
	Name      string    // optional logical name / filename
	Size      int64     // -1 if unknown
}

// Step is the fundamental pipeline building block. A step either returns its
// input unchanged or a newly allocated Image; it never mutates its input.
type Step interface {
	Name() string
	Execute(ctx context.Context, img *Image) (*Image, error)
}

// Hook is an optional observer invoked around pipeline steps.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, img *Image)
	AfterStep(ctx context.Context, stepName string, img *Image, d time.Duration, err error)
}

// StorageKey uniquely identifies a stored file.
type StorageKey struct {
	Bucket string
	Path   string
}
