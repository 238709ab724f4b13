// Package errors provides structured, actionable errors for the signalstate
// CLI and its configuration loader.
//
// Each error has a unique code that maps to a short message and a longer
// explanation. Config errors can carry the file position that caused them,
// with the surrounding lines, and every error can carry a hint, an example
// and the underlying cause.
//
// # Error Categories
//
//   - config: signalstate.json / signalstate.yaml problems (E100-E119)
//   - runtime: problems detected while a graph runs (E120-E139)
//   - cli: command-line usage and server errors (E200-E219)
//
// # Usage
//
//	err := errors.New("E106").
//	    WithLocation("signalstate.yaml", 3, 12).
//	    WithSuggestion(`Use "warn" or "panic"`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E106: Invalid integrity mode
//	//
//	//   signalstate.yaml:3:12
//	//
//	//       1 │ scheduler: frame
//	//       2 │ frameInterval: 16ms
//	//   →   3 │ integrity: sometimes
//	//         │            ^
//	//       4 │ log:
//	//       5 │   level: info
//	//
//	//   The integrity mode must be "warn" or "panic".
//	//
//	//   Hint: Use "warn" or "panic"
//
// The CLI renders errors with Fprint in one of three styles, chosen by
// --error-format: the text layout above, a compact single line, or JSON.
// Errors without a code are reported as E202.
//
// Errors compare by code with errors.Is:
//
//	errors.Is(err, errors.New("E106")) // true
package errors
