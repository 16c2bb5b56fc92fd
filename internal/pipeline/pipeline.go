// Package pipeline holds the ordered, toggleable post-processing stage list and its parameters.
// The stage order is fixed when the pipeline is configured; afterwards only enabled flags and
// parameter values change, and only through SetParameter, SetEnabled or Apply.
//
// A Pipeline is not safe for concurrent use. Producers on other goroutines send Events to the
// render thread, which applies them between frames.
package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnknownStage     = errors.New("unknown stage")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrOutOfRange       = errors.New("value out of range")
)

// EnabledParam is the pseudo-parameter name that addresses a stage's enabled flag in an Event.
const EnabledParam = "enabled"

// StageSpec declares one stage for Configure. ID defaults to the kind name; Params may
// override any subset of the kind's defaults; a nil Enabled uses the default rule.
type StageSpec struct {
	ID      string             `yaml:"id,omitempty" json:"id,omitempty"`
	Kind    Kind               `yaml:"kind" json:"kind"`
	Params  map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	Enabled *bool              `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

// Event is one control-surface mutation: set Param of Stage to Value.
// Param == EnabledParam toggles the stage with Value 0 or 1.
type Event struct {
	Stage string  `json:"stage"`
	Param string  `json:"param"`
	Value float64 `json:"value"`
}

// Pipeline is an ordered list of stages.
type Pipeline struct {
	stages  []Stage
	index   map[string]int
	enabled []Stage // reused by Enabled
}

// Compositor is the rendering side: it draws frame through stages, in order.
type Compositor[F any] interface {
	Composite(frame F, stages []Stage) F
}

// Composite hands c the currently enabled stages in pipeline order, with their values as of now.
func Composite[F any](p *Pipeline, c Compositor[F], frame F) F {
	return c.Composite(frame, p.Enabled())
}

// Configure builds a pipeline from specs. Unless a spec says otherwise, render and
// antiAliasing start enabled, depthOfField starts enabled only as the terminal stage,
// and every other stage starts disabled. Exactly one render stage is required.
func Configure(specs []StageSpec) (*Pipeline, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: pipeline has no stages", ErrInvalidArgument)
	}
	p := &Pipeline{
		stages: make([]Stage, 0, len(specs)),
		index:  make(map[string]int, len(specs)),
	}
	for i, spec := range specs {
		if !spec.Kind.valid() {
			return nil, fmt.Errorf("%w: stage %d has unknown kind %d", ErrInvalidArgument, i, int(spec.Kind))
		}
		id := spec.ID
		if id == "" {
			id = spec.Kind.String()
		}
		if _, dup := p.index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate stage id %q", ErrInvalidArgument, id)
		}
		s := newStage(id, spec.Kind)
		s.enabled = defaultEnabled(spec.Kind, i == len(specs)-1)
		if spec.Enabled != nil {
			if spec.Kind == Render && !*spec.Enabled {
				return nil, fmt.Errorf("%w: stage %q is always on", ErrInvalidArgument, id)
			}
			s.enabled = *spec.Enabled
		}
		for name, v := range spec.Params {
			ps, slot, ok := LookupParam(spec.Kind, name)
			if !ok {
				return nil, fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParameter, id, name)
			}
			if err := ps.Validate(v); err != nil {
				return nil, fmt.Errorf("stage %q: %w", id, err)
			}
			s.values[slot] = v
		}
		p.index[id] = len(p.stages)
		p.stages = append(p.stages, s)
	}
	renders := 0
	for _, s := range p.stages {
		if s.kind == Render {
			renders++
		}
	}
	if renders != 1 {
		return nil, fmt.Errorf("%w: pipeline needs exactly one render stage, has %d", ErrInvalidArgument, renders)
	}
	return p, nil
}

func defaultEnabled(k Kind, terminal bool) bool {
	switch k {
	case Render, AntiAliasing:
		return true
	case DepthOfField:
		return terminal
	default:
		return false
	}
}

// DefaultSpecs is the demo stage order. Every stage uses its default values and enabled rule.
func DefaultSpecs() []StageSpec {
	order := []Kind{
		Render,
		Pixelation,
		HueSaturation,
		Bloom,
		BrightnessContrast,
		Vignette,
		FilmNoise,
		ChromaticAberration,
		AntiAliasing,
		DepthOfField,
	}
	specs := make([]StageSpec, len(order))
	for i, k := range order {
		specs[i] = StageSpec{Kind: k}
	}
	return specs
}

func (p *Pipeline) lookup(id string) (*Stage, error) {
	i, ok := p.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, id)
	}
	return &p.stages[i], nil
}

// SetParameter validates and writes one parameter. On error nothing changes.
func (p *Pipeline) SetParameter(stage, name string, value float64) error {
	s, err := p.lookup(stage)
	if err != nil {
		return err
	}
	ps, slot, ok := LookupParam(s.kind, name)
	if !ok {
		return fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParameter, stage, name)
	}
	if err := ps.Validate(value); err != nil {
		return fmt.Errorf("stage %q: %w", stage, err)
	}
	s.values[slot] = value
	return nil
}

// SetEnabled includes or skips a stage at composite time. Parameters are left as they are.
func (p *Pipeline) SetEnabled(stage string, on bool) error {
	s, err := p.lookup(stage)
	if err != nil {
		return err
	}
	if s.kind == Render && !on {
		return fmt.Errorf("%w: stage %q is always on", ErrInvalidArgument, stage)
	}
	s.enabled = on
	return nil
}

// Apply performs one Event. It is the single mutation entry point for control surfaces.
func (p *Pipeline) Apply(ev Event) error {
	if ev.Param != EnabledParam {
		return p.SetParameter(ev.Stage, ev.Param, ev.Value)
	}
	if ev.Value != 0 && ev.Value != 1 {
		return fmt.Errorf("%w: enabled=%v is not 0 or 1", ErrOutOfRange, ev.Value)
	}
	return p.SetEnabled(ev.Stage, ev.Value == 1)
}

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Stages returns a copy of every stage in order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Stage returns a copy of the stage with the given id.
func (p *Pipeline) Stage(id string) (Stage, bool) {
	i, ok := p.index[id]
	if !ok {
		return Stage{}, false
	}
	return p.stages[i], true
}

// Param returns one parameter value.
func (p *Pipeline) Param(stage, name string) (float64, error) {
	s, err := p.lookup(stage)
	if err != nil {
		return 0, err
	}
	v, ok := s.Value(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no parameter %q", ErrUnknownParameter, stage, name)
	}
	return v, nil
}

// Enabled returns the enabled stages in order. The returned slice is reused by the
// next call, so callers must not keep it across frames.
func (p *Pipeline) Enabled() []Stage {
	p.enabled = p.enabled[:0]
	for _, s := range p.stages {
		if s.enabled {
			p.enabled = append(p.enabled, s)
		}
	}
	return p.enabled
}

// Specs describes the current state as StageSpecs; Configure(p.Specs()) rebuilds an equal pipeline.
func (p *Pipeline) Specs() []StageSpec {
	out := make([]StageSpec, len(p.stages))
	for i, s := range p.stages {
		on := s.enabled
		out[i] = StageSpec{ID: s.id, Kind: s.kind, Enabled: &on}
		if len(Params(s.kind)) > 0 {
			out[i].Params = s.Values()
		}
		if s.id == s.kind.String() {
			out[i].ID = ""
		}
	}
	return out
}
