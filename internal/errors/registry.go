package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (R100-R199)
	// ============================================

	"R101": {
		Category: CategoryConfig,
		Message:  "Cannot read config file",
		Detail:   "reactive.json exists but could not be opened.",
	},
	"R102": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "reactive.json is not valid JSON or has fields of the wrong type.",
	},
	"R103": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is outside its allowed range.",
	},
	"R104": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No reactive.json was found in the directory or any parent directory.",
	},

	// ============================================
	// Scenario Errors (R200-R299)
	// ============================================

	"R201": {
		Category: CategoryScenario,
		Message:  "Cannot read scenario file",
		Detail:   "The scenario file could not be opened.",
	},
	"R202": {
		Category: CategoryScenario,
		Message:  "Invalid scenario YAML",
		Detail:   "The scenario file is not valid YAML.",
	},
	"R203": {
		Category: CategoryScenario,
		Message:  "Invalid scenario",
		Detail:   "The scenario is well-formed YAML but does not describe a runnable scenario.",
	},
	"R204": {
		Category: CategoryScenario,
		Message:  "Path not found",
		Detail:   "A step refers to a path that does not lead to a container.",
	},
	"R205": {
		Category: CategoryScenario,
		Message:  "Expectation failed",
		Detail:   "The observed state differs from what the scenario expects.",
	},
	"R206": {
		Category: CategoryScenario,
		Message:  "Watch panicked",
		Detail:   "A watch function panicked while the scenario ran.",
	},

	// ============================================
	// Inspector Errors (R300-R399)
	// ============================================

	"R301": {
		Category: CategoryInspector,
		Message:  "Inspector failed to listen",
		Detail:   "The inspector could not bind its address. Another process may be using the port.",
	},
	"R302": {
		Category: CategoryInspector,
		Message:  "Scenario run failed",
		Detail:   "The inspector could not re-run the scenarios.",
	},

	// ============================================
	// CLI Errors (R400-R499)
	// ============================================

	"R401": {
		Category: CategoryCLI,
		Message:  "No scenarios found",
		Detail:   "No files were given and the configured scenario patterns matched nothing.",
	},
	"R402": {
		Category: CategoryCLI,
		Message:  "Scenarios failed",
		Detail:   "One or more scenario expectations failed.",
	},
	"R403": {
		Category: CategoryCLI,
		Message:  "File watcher failed",
		Detail:   "Scenario files could not be watched for changes.",
	},
	"R404": {
		Category: CategoryCLI,
		Message:  "Template not found",
		Detail:   "No project template has that name.",
	},
	"R405": {
		Category: CategoryCLI,
		Message:  "Project already initialized",
		Detail:   "The directory already contains reactive.json.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
