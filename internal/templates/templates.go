package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// ScenarioDir is the directory holding the scenarios (default: "scenarios").
	ScenarioDir string

	// Port is the inspector port (default: config.DefaultPort).
	Port int
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files maps relative paths to file contents. Paths are templates too.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"full":    fullTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("R404").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: " + strings.Join(List(), ", "))
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create writes the template into dir and returns the written paths,
// relative to dir and sorted. It refuses a directory that already holds
// a config file.
func (t *Template) Create(dir string, cfg Config) ([]string, error) {
	if cfg.ScenarioDir == "" {
		cfg.ScenarioDir = config.DefaultScenarioDir
	}
	if cfg.Port == 0 {
		cfg.Port = config.DefaultPort
	}
	if cfg.ProjectName == "" {
		cfg.ProjectName = filepath.Base(dir)
	}

	if config.Exists(dir) {
		return nil, errors.New("R405").
			WithDetailf("%s already exists in %s", config.ConfigFileName, dir).
			WithSuggestion("Run reactive run in that directory instead")
	}

	rendered := make(map[string][]byte, len(t.Files))
	for relPath, content := range t.Files {
		path, err := execute(relPath, relPath, cfg)
		if err != nil {
			return nil, err
		}
		body, err := execute(relPath, content, cfg)
		if err != nil {
			return nil, err
		}
		rendered[string(path)] = body
	}

	written := make([]string, 0, len(rendered))
	for relPath, body := range rendered {
		fullPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(fullPath, body, 0644); err != nil {
			return nil, err
		}
		written = append(written, relPath)
	}

	sort.Strings(written)
	return written, nil
}

func execute(name, text string, cfg Config) ([]byte, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "invalid template %s: %v", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "template execute error %s: %v", name, err)
	}
	return buf.Bytes(), nil
}

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "reactive.json and a single counter scenario",
		Files: map[string]string{
			"reactive.json": `{
  "scenarios": ["{{.ScenarioDir}}"]
}
`,
			"{{.ScenarioDir}}/counter.yaml": counterScenario,
		},
	}
}

func fullTemplate() *Template {
	return &Template{
		Name:        "full",
		Description: "Every config section plus scenarios for nested state, lists, batches and computed keys",
		Files: map[string]string{
			"reactive.json": `{
  "scenarios": ["{{.ScenarioDir}}"],
  "log": {
    "level": "info",
    "format": "text"
  },
  "inspector": {
    "host": "localhost",
    "port": {{.Port}}
  },
  "metrics": {
    "enabled": true,
    "namespace": "reactive"
  }
}
`,
			"{{.ScenarioDir}}/counter.yaml": counterScenario,
			"{{.ScenarioDir}}/nested.yaml": `name: {{.ProjectName}} nested state
state:
  count: 0
  nested:
    count: 0
    other: 0
watches:
  - name: inner
    read: [nested.count]
steps:
  # Siblings of a read key do not re-run the watch.
  - set: {path: nested.other, value: 1}
  - expect: {watch: inner, runs: 1, last: [0]}
  - set: {path: nested.count, value: 1}
  - expect: {watch: inner, runs: 2, last: [1]}
`,
			"{{.ScenarioDir}}/lists.yaml": `name: {{.ProjectName}} lists
state:
  items: [1, 2]
watches:
  - name: size
    read: [items.length]
steps:
  - push: {path: items, value: 3}
  - expect: {watch: size, runs: 2, last: [3]}
  - shift: items
  - expect: {watch: size, runs: 3, last: [2]}
`,
			"{{.ScenarioDir}}/batch.yaml": `name: {{.ProjectName}} batches
state:
  a: 0
  b: 0
watches:
  - name: both
    read: [a, b]
steps:
  # One run per batch, however many keys change inside it.
  - batch:
      - set: {path: a, value: 1}
      - set: {path: b, value: 2}
  - expect: {watch: both, runs: 2, last: [1, 2]}
`,
			"{{.ScenarioDir}}/computed.yaml": `name: {{.ProjectName}} computed
state:
  price: 2
  quantity: 3
computed:
  total: [price, quantity]
steps:
  - expect: {computed: total, value: 5}
  - set: {path: quantity, value: 4}
  - expect: {computed: total, value: 6}
`,
		},
	}
}

const counterScenario = `name: {{.ProjectName}} counter
state:
  count: 0
watches:
  - name: counter
    read: [count]
steps:
  - set: {path: count, value: 1}
  - expect: {watch: counter, runs: 2, last: [1]}
`
