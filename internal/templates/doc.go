// Package templates provides project scaffolding templates.
//
// A template is a set of files written into a directory by
// "reactive init": a reactive.json and one or more scenarios that pass
// out of the box.
//
// # Available Templates
//
//   - minimal: reactive.json and a single counter scenario
//   - full: every config section plus scenarios covering nested state,
//     lists, batches and computed keys
//
// # Usage
//
//	tmpl, err := templates.Get("full")
//	if err != nil {
//	    return err
//	}
//	files, err := tmpl.Create(dir, templates.Config{ProjectName: "demo"})
//
// # Template Variables
//
//	{{.ProjectName}}  - Name of the project
//	{{.ScenarioDir}}  - Directory holding the scenarios
//	{{.Port}}         - Inspector port
package templates
