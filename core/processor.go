package core

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/Skryldev/gen-image/config"
	apperrors "github.com/Skryldev/gen-image/errors"
	"github.com/Skryldev/gen-image/utils"
)

// Processor is the central orchestrator. It runs one pipeline at a time per
// call; steps execute synchronously and to completion in order.
type Processor struct {
	cfg      config.Config
	registry Registry
	hooks    []Hook
	logger   Logger
	metrics  MetricsCollector

	// Atomic counters for lightweight internal metrics.
	processedCount int64
	errorCount     int64
}

// New creates a Processor with the given config.
func New(cfg config.Config, reg Registry) *Processor {
	return &Processor{
		cfg:      cfg,
		registry: reg,
	}
}

// SetLogger attaches a structured logger.
func (p *Processor) SetLogger(l Logger) { p.logger = l }

// SetMetrics attaches a metrics collector.
func (p *Processor) SetMetrics(m MetricsCollector) { p.metrics = m }

// AddHook registers a pipeline hook.
func (p *Processor) AddHook(h Hook) { p.hooks = append(p.hooks, h) }

// Registry returns the underlying registry so callers can register
// encoders/decoders after construction.
func (p *Processor) Registry() Registry { return p.registry }

// sniffLen covers the longest container signature DetectFormat checks.
const sniffLen = 4

// Decode streams src into the decoder for its container, sniffing the
// container from the first bytes when src does not name one.
func (p *Processor) Decode(ctx context.Context, src Source) (*Image, error) {
	var r io.Reader = &utils.ContextReader{Ctx: ctx, R: src.Reader}
	if p.cfg.MaxImageBytes > 0 {
		r = &utils.LimitedReader{R: r, Max: p.cfg.MaxImageBytes}
	}
	br := bufio.NewReader(r)

	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, apperrors.Wrap(apperrors.CategoryIO, "decode.read", err)
	}
	if len(head) == 0 {
		return nil, apperrors.New(apperrors.CategoryInput, "decode", apperrors.ErrEmptyInput)
	}

	container := src.Container
	if container == "" {
		container = Container(utils.DetectFormat(head))
	}
	dec, ok := p.registry.DecoderFor(container)
	if !ok {
		return nil, apperrors.Errorf(apperrors.CategoryInput, "decode",
			"%w: %s container", apperrors.ErrUnsupportedFormat, container)
	}
	return dec.Decode(ctx, br)
}

// Process threads img through steps and returns the final image.
//
// Process takes ownership of img. Whenever a step returns a new image the
// previous one is released; on failure the image currently owned is released
// before returning, so every image is released exactly once.
func (p *Processor) Process(ctx context.Context, img *Image, steps ...Step) (*ProcessingResult, error) {
	if img == nil {
		return nil, apperrors.New(apperrors.CategoryPipeline, "process", apperrors.ErrEmptyInput)
	}

	start := time.Now()
	timings := make(map[string]time.Duration, len(steps))
	current := img

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, p.fail(current, apperrors.Wrap(apperrors.CategoryPipeline, step.Name(), err))
		}

		p.notifyBefore(ctx, step.Name(), current)
		t := time.Now()
		next, stepErr := step.Execute(ctx, current)
		elapsed := time.Since(t)
		timings[step.Name()] += elapsed
		p.notifyAfter(ctx, step.Name(), next, elapsed, stepErr)

		if stepErr != nil {
			if next != nil && next != current {
				_ = next.Release()
			}
			return nil, p.fail(current, stepErr)
		}
		if next == nil {
			return nil, p.fail(current, apperrors.New(apperrors.CategoryPipeline, step.Name(),
				fmt.Errorf("step returned no image")))
		}
		if next != current {
			if p.metrics != nil {
				p.metrics.RecordMemory(int64(next.Size()))
			}
			if err := current.Release(); err != nil {
				_ = next.Release()
				return nil, p.fail(nil, err)
			}
			current = next
		}
	}

	atomic.AddInt64(&p.processedCount, 1)
	if p.metrics != nil {
		p.metrics.RecordThroughput(int64(current.Size()))
	}

	total := time.Since(start)
	if p.logger != nil {
		p.logger.Debug("pipeline.done",
			"steps", len(steps),
			"format", current.Format.Name,
			"width", current.Width,
			"height", current.Height,
			"duration_ms", total.Milliseconds(),
		)
	}
	return &ProcessingResult{
		Image:          current,
		ProcessingTime: total,
		StepTimings:    timings,
	}, nil
}

func (p *Processor) fail(owned *Image, err error) error {
	atomic.AddInt64(&p.errorCount, 1)
	if owned != nil && !owned.Released() {
		_ = owned.Release()
	}
	return err
}

func (p *Processor) notifyBefore(ctx context.Context, name string, img *Image) {
	for _, h := range p.hooks {
		h.BeforeStep(ctx, name, img)
	}
}

func (p *Processor) notifyAfter(ctx context.Context, name string, img *Image, d time.Duration, err error) {
	for _, h := range p.hooks {
		h.AfterStep(ctx, name, img, d, err)
	}
}

// ProcessedCount returns the total number of successfully processed images.
func (p *Processor) ProcessedCount() int64 { return atomic.LoadInt64(&p.processedCount) }

// ErrorCount returns the total number of processing errors.
func (p *Processor) ErrorCount() int64 { return atomic.LoadInt64(&p.errorCount) }
