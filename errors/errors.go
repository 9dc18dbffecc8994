package errors

import (
	"errors"
	"fmt"
)

// Category classifies error types for targeted handling and reporting.
type Category string

const (
	CategoryIO       Category = "io"
	CategoryInput    Category = "input"
	CategoryFormat   Category = "format"
	CategoryAlloc    Category = "alloc"
	CategoryConfig   Category = "config"
	CategoryPipeline Category = "pipeline"
)

// ProcessingError is the structured error type used throughout the module.
type ProcessingError struct {
	Category Category
	Op       string // operation name
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// New creates a ProcessingError.
func New(category Category, op string, err error) *ProcessingError {
	return &ProcessingError{Category: category, Op: op, Err: err}
}

// Wrap wraps an existing error with context. Errors that already carry a
// category keep it.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return err
	}
	return New(category, op, err)
}

// Errorf creates a ProcessingError wrapping a formatted error. Use %w to keep
// a sentinel reachable through errors.Is.
func Errorf(category Category, op string, format string, args ...any) *ProcessingError {
	return New(category, op, fmt.Errorf(format, args...))
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Category == cat
	}
	return false
}

// CategoryOf returns the category of err, or the empty string.
func CategoryOf(err error) Category {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ""
}

// Is and As forward to the standard library so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// Sentinel errors for common failure modes.
var (
	ErrUnknownFormat     = errors.New("unknown pixel format")
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	ErrFamilyMismatch    = errors.New("unsupported format combination")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrCropBounds        = errors.New("crop rectangle exceeds image bounds")
	ErrEmptyInput        = errors.New("empty input")
	ErrBadSignature      = errors.New("invalid signature")
	ErrBadDepth          = errors.New("unsupported depth")
	ErrShortData         = errors.New("file too short")
	ErrTableSize         = errors.New("invalid table size")
	ErrAllocation        = errors.New("not enough memory for image data")
	ErrReleased          = errors.New("image already released")
)
