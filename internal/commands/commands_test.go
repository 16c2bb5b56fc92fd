package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxdemo/internal/pipeline"
)

type console struct {
	p      *pipeline.Pipeline
	out    []string
	saved  []string
	fps    bool
	panel  bool
	reg    *Registry
	events []pipeline.Event
}

func newConsole(t *testing.T) *console {
	t.Helper()
	p, err := pipeline.Configure(pipeline.DefaultSpecs())
	require.NoError(t, err)
	c := &console{p: p, reg: NewRegistry()}
	RegisterEffects(c.reg, Env{
		Pipeline: func() *pipeline.Pipeline { return c.p },
		Send: func(ev pipeline.Event) error {
			c.events = append(c.events, ev)
			return c.p.Apply(ev)
		},
		Save: func(path string) error {
			c.saved = append(c.saved, path)
			return nil
		},
		Print:    func(line string) { c.out = append(c.out, line) },
		SetFPS:   func(show bool) { c.fps = show },
		SetPanel: func(show bool) { c.panel = show },
	})
	return c
}

func (c *console) run(line string) error {
	args, ok := Parse(line)
	if !ok {
		return errors.New("blank")
	}
	return c.reg.Execute(args)
}

func TestParse(t *testing.T) {
	args, ok := Parse("  /set bloom strength 1.5 ")
	require.True(t, ok)
	assert.Equal(t, []string{"set", "bloom", "strength", "1.5"}, args)

	_, ok = Parse("   ")
	assert.False(t, ok)
}

func TestExecuteUnknownAndMissing(t *testing.T) {
	r := NewRegistry()
	assert.EqualError(t, r.Execute(nil), "missing command")
	assert.EqualError(t, r.Execute([]string{"nope"}), "unknown command: nope")
}

func TestSetAndToggle(t *testing.T) {
	c := newConsole(t)
	require.NoError(t, c.run("set bloom strength 1.5"))
	v, err := c.p.Param("bloom", "strength")
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	require.NoError(t, c.run("set bloom enabled on"))
	s, _ := c.p.Stage("bloom")
	assert.True(t, s.Enabled())

	require.NoError(t, c.run("toggle bloom"))
	s, _ = c.p.Stage("bloom")
	assert.False(t, s.Enabled())
	assert.Equal(t, pipeline.Event{Stage: "bloom", Param: "enabled", Value: 0}, c.events[len(c.events)-1])
}

func TestSetErrors(t *testing.T) {
	c := newConsole(t)
	assert.EqualError(t, c.run("set bloom"), "usage: set <stage> <param|enabled> <value>")
	assert.ErrorIs(t, c.run("set bloom strength lots"), pipeline.ErrInvalidArgument)
	assert.ErrorIs(t, c.run("set bloom strength 99"), pipeline.ErrOutOfRange)
	assert.ErrorIs(t, c.run("set lensFlare strength 1"), pipeline.ErrUnknownStage)
	assert.ErrorIs(t, c.run("toggle lensFlare"), pipeline.ErrUnknownStage)
}

func TestResetRestoresDefaults(t *testing.T) {
	c := newConsole(t)
	require.NoError(t, c.run("set vignette darkness 7"))
	require.NoError(t, c.run("reset vignette"))
	v, _ := c.p.Param("vignette", "darkness")
	assert.Equal(t, 1.0, v)
}

func TestListAndParams(t *testing.T) {
	c := newConsole(t)
	require.NoError(t, c.run("list"))
	require.Len(t, c.out, c.p.Len())
	assert.True(t, strings.HasPrefix(c.out[0], "render"))
	assert.NotContains(t, c.out[1], "pixelSize=")

	c.out = nil
	require.NoError(t, c.run("list -params"))
	assert.Contains(t, c.out[1], "pixelSize=6")

	// Flags reset between runs.
	c.out = nil
	require.NoError(t, c.run("list"))
	assert.NotContains(t, c.out[1], "pixelSize=")

	c.out = nil
	require.NoError(t, c.run("params chromaticAberration"))
	require.Len(t, c.out, 2)
	assert.Equal(t, "amount float = 0.005 [0..0.01] step 0.0001 (Offset)", c.out[0])
}

func TestSaveFpsPanel(t *testing.T) {
	c := newConsole(t)
	require.NoError(t, c.run("save"))
	require.NoError(t, c.run("save -path out.yaml"))
	require.NoError(t, c.run("save"))
	assert.Equal(t, []string{"", "out.yaml", ""}, c.saved)

	require.NoError(t, c.run("fps on"))
	require.NoError(t, c.run("panel off"))
	assert.True(t, c.fps)
	assert.False(t, c.panel)
	assert.Error(t, c.run("fps"))
}

func TestHelp(t *testing.T) {
	c := newConsole(t)
	require.NoError(t, c.run("help set"))
	assert.Equal(t, []string{"set <stage> <param|enabled> <value>"}, c.out)
	c.out = nil
	require.NoError(t, c.run("help"))
	assert.Len(t, c.out, len(c.reg.Names()))
}
