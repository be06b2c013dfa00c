package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactive/internal/errors"
)

// Scenario is one parsed scenario file.
type Scenario struct {
	Name     string              `yaml:"name" json:"name"`
	State    map[string]any      `yaml:"state" json:"state,omitempty"`
	Watches  []WatchSpec         `yaml:"watches" json:"watches,omitempty"`
	Computed map[string][]string `yaml:"computed" json:"computed,omitempty"`
	Steps    []Step              `yaml:"steps" json:"steps,omitempty"`

	// File is the path the scenario was loaded from, if any.
	File string `yaml:"-" json:"file,omitempty"`
}

// WatchSpec declares a watch reading Read paths on every run.
type WatchSpec struct {
	Name string   `yaml:"name" json:"name"`
	Read []string `yaml:"read" json:"read"`

	Line int `yaml:"-" json:"-"`
}

// UnmarshalYAML records the position of the watch in its file.
func (w *WatchSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain WatchSpec
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*w = WatchSpec(p)
	w.Line = node.Line
	return nil
}

// Step is one scenario action. Exactly one field is set.
type Step struct {
	Set    *Assign `yaml:"set,omitempty" json:"set,omitempty"`
	Delete string  `yaml:"delete,omitempty" json:"delete,omitempty"`
	Push   *Assign `yaml:"push,omitempty" json:"push,omitempty"`
	Shift  string  `yaml:"shift,omitempty" json:"shift,omitempty"`
	Batch  []Step  `yaml:"batch,omitempty" json:"batch,omitempty"`
	Expect *Expect `yaml:"expect,omitempty" json:"expect,omitempty"`

	Line   int `yaml:"-" json:"-"`
	Column int `yaml:"-" json:"-"`
}

// UnmarshalYAML records the position of the step in its file.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	type plain Step
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	s.Line, s.Column = node.Line, node.Column
	return nil
}

// Assign is the operand of set and push steps.
type Assign struct {
	Path  string `yaml:"path" json:"path"`
	Value any    `yaml:"value" json:"value"`
}

// Expect checks a watch or a computed key. For a watch, Runs and Last are
// optional but at least one must be given.
type Expect struct {
	Watch string `yaml:"watch,omitempty" json:"watch,omitempty"`
	Runs  *int   `yaml:"runs,omitempty" json:"runs,omitempty"`
	Last  []any  `yaml:"last,omitempty" json:"last,omitempty"`

	Computed string `yaml:"computed,omitempty" json:"computed,omitempty"`
	Value    any    `yaml:"value,omitempty" json:"value,omitempty"`
}

// Action returns the name of the step's action, or "" when the step sets
// none or several.
func (s Step) Action() string {
	var actions []string
	if s.Set != nil {
		actions = append(actions, "set")
	}
	if s.Delete != "" {
		actions = append(actions, "delete")
	}
	if s.Push != nil {
		actions = append(actions, "push")
	}
	if s.Shift != "" {
		actions = append(actions, "shift")
	}
	if s.Batch != nil {
		actions = append(actions, "batch")
	}
	if s.Expect != nil {
		actions = append(actions, "expect")
	}
	if len(actions) != 1 {
		return ""
	}
	return actions[0]
}

// String describes the step for traces and logs.
func (s Step) String() string {
	switch s.Action() {
	case "set":
		return fmt.Sprintf("set %s = %v", s.Set.Path, s.Set.Value)
	case "delete":
		return "delete " + s.Delete
	case "push":
		return fmt.Sprintf("push %s %v", s.Push.Path, s.Push.Value)
	case "shift":
		return "shift " + s.Shift
	case "batch":
		return fmt.Sprintf("batch of %d", len(s.Batch))
	case "expect":
		if s.Expect.Computed != "" {
			return "expect computed " + s.Expect.Computed
		}
		return "expect watch " + s.Expect.Watch
	}
	return "invalid step"
}

// Load reads and validates the scenario at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("R201").WithLocation(path, 0, 0).Wrap(err)
	}

	s, err := Parse(data)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			line, col := 0, 0
			if e.Location != nil {
				line, col = e.Location.Line, e.Location.Column
			}
			e.WithLocation(path, line, col)
		}
		return nil, err
	}

	s.File = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		e := errors.New("R202").Wrap(err)
		if te, ok := err.(*yaml.TypeError); ok && len(te.Errors) > 0 {
			e.WithDetail(strings.Join(te.Errors, "; "))
		}
		return nil, e
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every watch, computed key and step is runnable.
func (s *Scenario) Validate() error {
	watches := make(map[string]struct{}, len(s.Watches))
	for _, w := range s.Watches {
		if w.Name == "" {
			return invalid(w.Line, 0, "watch without a name")
		}
		if _, dup := watches[w.Name]; dup {
			return invalid(w.Line, 0, "duplicate watch %q", w.Name)
		}
		if len(w.Read) == 0 {
			return invalid(w.Line, 0, "watch %q reads nothing", w.Name)
		}
		watches[w.Name] = struct{}{}
	}

	for _, key := range sortedKeys(s.Computed) {
		if len(s.Computed[key]) == 0 {
			return invalid(0, 0, "computed %q sums no paths", key)
		}
	}

	return s.validateSteps(s.Steps, watches)
}

func (s *Scenario) validateSteps(steps []Step, watches map[string]struct{}) error {
	for _, step := range steps {
		switch step.Action() {
		case "":
			return invalid(step.Line, step.Column, "step must have exactly one of set, delete, push, shift, batch or expect").
				WithSuggestion("Split combined actions into separate steps")
		case "set":
			if step.Set.Path == "" {
				return invalid(step.Line, step.Column, "set without a path")
			}
		case "push":
			if step.Push.Path == "" {
				return invalid(step.Line, step.Column, "push without a path")
			}
		case "batch":
			if err := s.validateSteps(step.Batch, watches); err != nil {
				return err
			}
		case "expect":
			if err := s.validateExpect(step, watches); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Scenario) validateExpect(step Step, watches map[string]struct{}) error {
	e := step.Expect
	switch {
	case e.Watch != "" && e.Computed != "":
		return invalid(step.Line, step.Column, "expect names both a watch and a computed key")
	case e.Watch != "":
		if _, ok := watches[e.Watch]; !ok {
			return invalid(step.Line, step.Column, "expect refers to unknown watch %q", e.Watch)
		}
		if e.Runs == nil && e.Last == nil {
			return invalid(step.Line, step.Column, "expect on watch %q checks nothing", e.Watch).
				WithSuggestion("Add runs, last or both")
		}
	case e.Computed != "":
		if _, ok := s.Computed[e.Computed]; !ok {
			return invalid(step.Line, step.Column, "expect refers to unknown computed key %q", e.Computed)
		}
	default:
		return invalid(step.Line, step.Column, "expect needs a watch or a computed key")
	}
	return nil
}

func invalid(line, col int, format string, args ...any) *errors.Error {
	e := errors.New("R203").WithDetailf(format, args...)
	if line > 0 {
		e.Location = &errors.Location{Line: line, Column: col}
	}
	return e
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
