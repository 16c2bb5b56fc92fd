package commands

import (
	"fmt"
	"strconv"
	"strings"

	"fxdemo/internal/pipeline"
)

// Env is what the effect commands act on. Every func runs on the render thread.
type Env struct {
	Pipeline func() *pipeline.Pipeline // read-only; mutate through Send
	Send     func(pipeline.Event) error
	Save     func(path string) error // "" means the loaded config path
	Print    func(line string)
	SetFPS   func(show bool)
	SetPanel func(show bool)
}

// RegisterEffects adds the pipeline commands: help, list, params, set, toggle, reset, save,
// fps and panel.
func RegisterEffects(r *Registry, env Env) {
	r.Register("help", "help [command]", nil, func(args []string) error {
		if len(args) == 1 {
			if u := r.Usage(args[0]); u != "" {
				env.Print(u)
				return nil
			}
			return fmt.Errorf("unknown command: %s", args[0])
		}
		for _, n := range r.Names() {
			env.Print(r.Usage(n))
		}
		return nil
	})

	listFS := NewFlagSet("list")
	withParams := listFS.Bool("params", false, "print parameter values")
	r.Register("list", "list [-params]", listFS, func(args []string) error {
		for _, s := range env.Pipeline().Stages() {
			env.Print(describe(s, *withParams))
		}
		return nil
	})

	r.Register("params", "params <stage>", nil, func(args []string) error {
		if len(args) != 1 {
			return ErrUsage
		}
		s, ok := env.Pipeline().Stage(args[0])
		if !ok {
			return fmt.Errorf("%w: %q", pipeline.ErrUnknownStage, args[0])
		}
		specs := pipeline.Params(s.Kind())
		if len(specs) == 0 {
			env.Print(s.ID() + " has no parameters")
		}
		for _, ps := range specs {
			v, _ := s.Value(ps.Name)
			env.Print(fmt.Sprintf("%s %s = %s [%s..%s] step %s (%s)", ps.Name, ps.Type, num(v), num(ps.Min), num(ps.Max), num(ps.Step), ps.Label))
		}
		return nil
	})

	r.Register("set", "set <stage> <param|enabled> <value>", nil, func(args []string) error {
		if len(args) != 3 {
			return ErrUsage
		}
		v, err := ParseValue(args[2])
		if err != nil {
			return err
		}
		return env.Send(pipeline.Event{Stage: args[0], Param: args[1], Value: v})
	})

	r.Register("toggle", "toggle <stage>", nil, func(args []string) error {
		if len(args) != 1 {
			return ErrUsage
		}
		s, ok := env.Pipeline().Stage(args[0])
		if !ok {
			return fmt.Errorf("%w: %q", pipeline.ErrUnknownStage, args[0])
		}
		v := 1.0
		if s.Enabled() {
			v = 0
		}
		return env.Send(pipeline.Event{Stage: s.ID(), Param: pipeline.EnabledParam, Value: v})
	})

	r.Register("reset", "reset <stage>", nil, func(args []string) error {
		if len(args) != 1 {
			return ErrUsage
		}
		s, ok := env.Pipeline().Stage(args[0])
		if !ok {
			return fmt.Errorf("%w: %q", pipeline.ErrUnknownStage, args[0])
		}
		for _, ps := range pipeline.Params(s.Kind()) {
			if err := env.Send(pipeline.Event{Stage: s.ID(), Param: ps.Name, Value: ps.Default}); err != nil {
				return err
			}
		}
		return nil
	})

	saveFS := NewFlagSet("save")
	path := saveFS.String("path", "", "write to this file instead of the loaded config")
	r.Register("save", "save [-path file]", saveFS, func(args []string) error {
		if err := env.Save(*path); err != nil {
			return err
		}
		env.Print("config saved")
		return nil
	})

	r.Register("fps", "fps <on|off>", nil, onOff(env.SetFPS))
	r.Register("panel", "panel <on|off>", nil, onOff(env.SetPanel))
}

func onOff(set func(bool)) func([]string) error {
	return func(args []string) error {
		if len(args) != 1 {
			return ErrUsage
		}
		v, err := ParseValue(args[0])
		if err != nil {
			return err
		}
		set(v != 0)
		return nil
	}
}

// ParseValue reads a number, or on/off/true/false as 1/0.
func ParseValue(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes":
		return 1, nil
	case "off", "false", "no":
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: value %q", pipeline.ErrInvalidArgument, s)
	}
	return v, nil
}

func describe(s pipeline.Stage, withParams bool) string {
	state := "off"
	if s.Enabled() {
		state = "on"
	}
	line := fmt.Sprintf("%-20s %-3s %s", s.ID(), state, s.Kind().Title())
	if !withParams {
		return line
	}
	var parts []string
	for _, ps := range pipeline.Params(s.Kind()) {
		v, _ := s.Value(ps.Name)
		parts = append(parts, ps.Name+"="+num(v))
	}
	if len(parts) > 0 {
		line += "  " + strings.Join(parts, " ")
	}
	return line
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
