package pipeline

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func enabledIDs(p *Pipeline) []string {
	var ids []string
	for _, s := range p.Enabled() {
		ids = append(ids, s.ID())
	}
	return ids
}

func TestConfigureDefaults(t *testing.T) {
	p, err := Configure(DefaultSpecs())
	require.NoError(t, err)
	require.Equal(t, 10, p.Len())

	assert.Equal(t, []string{"render", "antiAliasing", "depthOfField"}, enabledIDs(p))

	v, err := p.Param("bloom", "strength")
	require.NoError(t, err)
	assert.Equal(t, 0.6, v)

	v, err = p.Param("pixelation", "pixelSize")
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}

func TestDepthOfFieldDefaultsOffWhenNotTerminal(t *testing.T) {
	p, err := Configure([]StageSpec{{Kind: Render}, {Kind: DepthOfField}, {Kind: Vignette}})
	require.NoError(t, err)
	assert.Equal(t, []string{"render"}, enabledIDs(p))
}

func TestConfigureRejects(t *testing.T) {
	off := false
	cases := []struct {
		name  string
		specs []StageSpec
		want  error
	}{
		{"empty", nil, ErrInvalidArgument},
		{"duplicate id", []StageSpec{{Kind: Render}, {Kind: Bloom}, {Kind: Bloom}}, ErrInvalidArgument},
		{"unknown kind", []StageSpec{{Kind: Kind(99)}}, ErrInvalidArgument},
		{"render disabled", []StageSpec{{Kind: Render, Enabled: &off}}, ErrInvalidArgument},
		{"no render", []StageSpec{{Kind: Vignette}, {Kind: AntiAliasing}}, ErrInvalidArgument},
		{"two renders", []StageSpec{{Kind: Render}, {ID: "r2", Kind: Render}}, ErrInvalidArgument},
		{"unknown param", []StageSpec{{Kind: Render}, {Kind: Bloom, Params: map[string]float64{"glow": 1}}}, ErrUnknownParameter},
		{"out of range", []StageSpec{{Kind: Render}, {Kind: Bloom, Params: map[string]float64{"strength": 4}}}, ErrOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Configure(tc.specs)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCustomIDsAllowRepeatedKinds(t *testing.T) {
	on := true
	p, err := Configure([]StageSpec{
		{Kind: Render},
		{ID: "dofNear", Kind: DepthOfField, Enabled: &on, Params: map[string]float64{"focus": 5}},
		{Kind: Pixelation},
		{ID: "dofFar", Kind: DepthOfField},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"render", "dofNear", "dofFar"}, enabledIDs(p))

	near, ok := p.Stage("dofNear")
	require.True(t, ok)
	assert.Equal(t, float32(5), near.DepthOfField().Focus)
	far, _ := p.Stage("dofFar")
	assert.Equal(t, float32(1), far.DepthOfField().Focus)
}

func TestToggleKeepsParameters(t *testing.T) {
	p, err := Configure(DefaultSpecs())
	require.NoError(t, err)

	require.NoError(t, p.SetParameter("bloom", "strength", 1.5))
	require.NoError(t, p.SetEnabled("bloom", true))
	require.NoError(t, p.SetEnabled("bloom", false))
	require.NoError(t, p.SetEnabled("bloom", true))

	s, _ := p.Stage("bloom")
	assert.True(t, s.Enabled())
	assert.Equal(t, float32(1.5), s.Bloom().Strength)
}

func TestSetParameterFailureLeavesStateUnchanged(t *testing.T) {
	p, err := Configure(DefaultSpecs())
	require.NoError(t, err)
	before := p.Stages()

	assert.ErrorIs(t, p.SetParameter("bloom", "glow", 1), ErrUnknownParameter)
	assert.ErrorIs(t, p.SetParameter("lensFlare", "strength", 1), ErrUnknownStage)
	assert.ErrorIs(t, p.SetParameter("bloom", "strength", -0.1), ErrOutOfRange)
	assert.ErrorIs(t, p.SetParameter("bloom", "strength", math.NaN()), ErrOutOfRange)
	assert.ErrorIs(t, p.SetParameter("pixelation", "pixelSize", 6.5), ErrOutOfRange)
	assert.ErrorIs(t, p.SetParameter("pixelation", "pixelSize", 0), ErrOutOfRange)
	assert.ErrorIs(t, p.SetParameter("filmNoise", "grayscale", 0.5), ErrOutOfRange)
	assert.ErrorIs(t, p.SetEnabled("render", false), ErrInvalidArgument)
	assert.ErrorIs(t, p.SetEnabled("nope", true), ErrUnknownStage)

	assert.Equal(t, before, p.Stages())
}

func TestBoundaryValuesAccepted(t *testing.T) {
	p, err := Configure(DefaultSpecs())
	require.NoError(t, err)
	for _, k := range Kinds() {
		for _, ps := range Params(k) {
			require.NoError(t, p.SetParameter(k.String(), ps.Name, ps.Min), "%s.%s min", k, ps.Name)
			require.NoError(t, p.SetParameter(k.String(), ps.Name, ps.Max), "%s.%s max", k, ps.Name)
		}
	}
	s, _ := p.Stage("pixelation")
	assert.Equal(t, 64, s.Pixelation().PixelSize)
	s, _ = p.Stage("filmNoise")
	assert.True(t, s.FilmNoise().Grayscale)
}

func TestApply(t *testing.T) {
	p, err := Configure(DefaultSpecs())
	require.NoError(t, err)

	require.NoError(t, p.Apply(Event{Stage: "vignette", Param: EnabledParam, Value: 1}))
	require.NoError(t, p.Apply(Event{Stage: "vignette", Param: "darkness", Value: 3}))
	assert.ErrorIs(t, p.Apply(Event{Stage: "vignette", Param: EnabledParam, Value: 2}), ErrOutOfRange)

	s, _ := p.Stage("vignette")
	assert.True(t, s.Enabled())
	assert.Equal(t, float32(3), s.Vignette().Darkness)
}

type recordingCompositor struct {
	calls [][]string
}

func (r *recordingCompositor) Composite(frame int, stages []Stage) int {
	var ids []string
	for _, s := range stages {
		ids = append(ids, s.ID())
		frame++
	}
	r.calls = append(r.calls, ids)
	return frame
}

func TestCompositeOnlyEnabledInOrder(t *testing.T) {
	p, err := Configure(DefaultSpecs())
	require.NoError(t, err)
	require.NoError(t, p.SetEnabled("vignette", true))
	require.NoError(t, p.SetEnabled("pixelation", true))

	rc := &recordingCompositor{}
	out := Composite[int](p, rc, 0)
	assert.Equal(t, 5, out)
	assert.Equal(t, []string{"render", "pixelation", "vignette", "antiAliasing", "depthOfField"}, rc.calls[0])

	require.NoError(t, p.SetEnabled("pixelation", false))
	Composite[int](p, rc, 0)
	assert.Equal(t, []string{"render", "vignette", "antiAliasing", "depthOfField"}, rc.calls[1])
}

func TestSpecsRoundTrip(t *testing.T) {
	p, err := Configure(DefaultSpecs())
	require.NoError(t, err)
	require.NoError(t, p.SetEnabled("bloom", true))
	require.NoError(t, p.SetParameter("hueSaturation", "hue", 2.5))

	data, err := yaml.Marshal(p.Specs())
	require.NoError(t, err)
	var specs []StageSpec
	require.NoError(t, yaml.Unmarshal(data, &specs))

	q, err := Configure(specs)
	require.NoError(t, err)
	assert.Equal(t, p.Stages(), q.Stages())
}

func TestEventJSON(t *testing.T) {
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(`{"stage":"bloom","param":"radius","value":0.25}`), &ev))
	assert.Equal(t, Event{Stage: "bloom", Param: "radius", Value: 0.25}, ev)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("HUESATURATION")
	require.NoError(t, err)
	assert.Equal(t, HueSaturation, k)
	_, err = ParseKind("lensFlare")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, "Brightness & Contrast", BrightnessContrast.Title())
}

func TestSnap(t *testing.T) {
	ps, _, ok := LookupParam(Pixelation, "pixelSize")
	require.True(t, ok)
	assert.Equal(t, 7.0, ps.Snap(6.6))
	assert.Equal(t, 64.0, ps.Snap(1000))
	assert.NoError(t, ps.Validate(ps.FromFraction(0.37)))

	ps, _, _ = LookupParam(Bloom, "radius")
	assert.InDelta(t, 0.42, ps.Snap(0.4213), 1e-9)
	assert.InDelta(t, 0.5, ps.Fraction(0.5), 1e-9)
}

func TestUsesDepth(t *testing.T) {
	p, err := Configure(DefaultSpecs())
	require.NoError(t, err)
	assert.True(t, UsesDepth(p.Enabled()), "terminal depth of field")

	require.NoError(t, p.SetEnabled("depthOfField", false))
	assert.False(t, UsesDepth(p.Enabled()))

	require.NoError(t, p.SetEnabled("pixelation", true))
	assert.True(t, UsesDepth(p.Enabled()), "default depth edges")
	require.NoError(t, p.SetParameter("pixelation", "depthEdgeStrength", 0))
	assert.False(t, UsesDepth(p.Enabled()))
}
