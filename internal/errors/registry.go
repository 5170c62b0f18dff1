package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Preconditions (T001-T009)
	// ============================================

	"T001": {
		Category:   CategoryPrecondition,
		Message:    "Anchor element is nil",
		Detail:     "A tooltip needs an anchor element to attach to.",
		Suggestion: "Pass the element the tooltip should point at.",
	},
	"T002": {
		Category:   CategoryPrecondition,
		Message:    "Anchor is not in the document",
		Detail:     "The tooltip was shown or recalculated while its anchor was detached from the document, so there is nothing to measure against.",
		Suggestion: "Close the tooltip before removing its anchor from the page.",
	},
	"T003": {
		Category:   CategoryPrecondition,
		Message:    "Host is nil",
		Detail:     "A tooltip needs a host to create, insert and remove its elements.",
	},

	// ============================================
	// Measurement (T010-T019)
	// ============================================

	"T010": {
		Category: CategoryMeasurement,
		Message:  "Tooltip not measured",
		Detail:   "The tip or its arrow has a zero size because layout has not run yet. The recalculation is skipped and the next scroll, resize or measure event retries it.",
	},

	// ============================================
	// Degraded operation (T020-T029)
	// ============================================

	"T020": {
		Category: CategoryDegraded,
		Message:  "Container did not resolve",
		Detail:   "The configured container returned no element, is detached, or does not overlap the viewport. The viewport is used as the clipping region instead.",
	},

	// ============================================
	// Bridge protocol (T030-T039)
	// ============================================

	"T030": {
		Category: CategoryProtocol,
		Message:  "Malformed message",
		Detail:   "The client sent a message that could not be decoded.",
	},
	"T031": {
		Category:   CategoryProtocol,
		Message:    "Unknown element id",
		Detail:     "The client referenced an element id the session does not know about.",
		Suggestion: "Send a mount message for the element before referencing it.",
	},

	// ============================================
	// Configuration (T040-T049)
	// ============================================

	"T040": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns every registered code in order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
