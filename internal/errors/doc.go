// Package errors provides the coded errors used across the tooltip packages.
//
// Every error has a code (e.g., "T002") registered with a category, a short
// message, and usually a detail and a hint:
//
//   - precondition: programmer errors such as a nil anchor; these panic
//     or fail Attach
//   - measurement: transient layout states, skipped until the next event
//   - degraded: the controller fell back to a safer behavior
//   - protocol: malformed bridge traffic
//   - config: invalid tooltip.json values
//
// # Usage
//
//	err := errors.New("T002").WithDetailf("anchor %s was removed", id)
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR T002: Anchor is not in the document
//	//
//	//   anchor save-button was removed
//	//
//	//   Hint: Close the tooltip before removing its anchor from the page.
package errors
