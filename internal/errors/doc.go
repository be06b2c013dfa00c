// Package errors provides coded, actionable errors for the reactive CLI and
// its supporting layers.
//
// The engine in pkg/reactive never returns these: user failures there are
// panics. Everything around it (configuration, scenario files, the inspector
// and the CLI) reports failures as *Error values so that the terminal output
// can show where the problem is and how to fix it.
//
// # Error Codes
//
// Codes are grouped by layer:
//   - R1xx: configuration (reactive.json)
//   - R2xx: scenario files and failed expectations
//   - R3xx: inspector server
//   - R4xx: command line
//
// # Usage
//
//	err := errors.New("R203").
//	    WithLocation("scenarios/nested.yaml", 7, 5).
//	    WithSuggestion("Each step needs exactly one of set, delete, push, shift, batch or expect")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R203: Invalid scenario
//	//
//	//   scenarios/nested.yaml:7:5
//	//
//	//      5 │ steps:
//	//      6 │   - set: {path: count, value: 1}
//	//   →  7 │   - frobnicate: count
//	//        │     ^
//	//
//	//   Hint: Each step needs exactly one of set, delete, push, shift, batch or expect
package errors
