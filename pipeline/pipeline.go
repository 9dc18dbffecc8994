// Package pipeline builds the ordered list of transform steps for a run and
// executes it with hooks.
package pipeline

import (
	"context"

	"github.com/Skryldev/gen-image/config"
	"github.com/Skryldev/gen-image/core"
)

// Pipeline is an ordered sequence of Steps plus the hooks observing them.
type Pipeline struct {
	steps []core.Step
	hooks []core.Hook
}

// New returns an empty Pipeline.
func New() *Pipeline { return &Pipeline{} }

// Use appends a step to the pipeline.  Returns the same Pipeline for chaining.
func (p *Pipeline) Use(s ...core.Step) *Pipeline {
	p.steps = append(p.steps, s...)
	return p
}

// AddHook registers an observer.
func (p *Pipeline) AddHook(h core.Hook) *Pipeline {
	p.hooks = append(p.hooks, h)
	return p
}

// Steps returns the steps in execution order.
func (p *Pipeline) Steps() []core.Step {
	out := make([]core.Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Names lists the step names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run threads img through the steps. It takes ownership of img: every
// intermediate image is released and, on failure, so is the one in flight.
func (p *Pipeline) Run(ctx context.Context, img *core.Image) (*core.ProcessingResult, error) {
	proc := core.New(config.Default(), core.NewRegistry())
	for _, h := range p.hooks {
		proc.AddHook(h)
	}
	return proc.Process(ctx, img, p.steps...)
}

// Clone returns a shallow copy of the pipeline so templates can be reused
// safely across goroutines.
func (p *Pipeline) Clone() *Pipeline {
	cp := &Pipeline{
		steps: make([]core.Step, len(p.steps)),
		hooks: make([]core.Hook, len(p.hooks)),
	}
	copy(cp.steps, p.steps)
	copy(cp.hooks, p.hooks)
	return cp
}
