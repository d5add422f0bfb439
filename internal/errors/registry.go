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
	// DOM Errors (T001-T009)
	// ============================================

	"T001": {
		Category: CategoryDOM,
		Message:  "Toast container unavailable",
		Detail:   "No .toast-container exists and the document has no <body> to attach a new one to.",
	},
	"T002": {
		Category: CategoryDOM,
		Message:  "Document has no location",
		Detail:   "The page was loaded without a URL, so query parameters cannot be read.",
	},
	"T003": {
		Category: CategoryDOM,
		Message:  "Markup parse failed",
		Detail:   "The page template or inner HTML could not be parsed.",
	},

	// ============================================
	// Runtime Errors (T010-T019)
	// ============================================

	"T010": {
		Category: CategoryRuntime,
		Message:  "Session not found",
		Detail:   "The session ID is invalid or the session has expired.",
	},
	"T011": {
		Category: CategoryRuntime,
		Message:  "Session closed",
		Detail:   "The session was closed before the operation could run.",
	},
	"T012": {
		Category: CategoryRuntime,
		Message:  "Event loop closed",
		Detail:   "The task was posted after the page's event loop stopped.",
	},
	"T013": {
		Category: CategoryRuntime,
		Message:  "Session limit reached",
		Detail:   "The server holds the maximum number of live sessions.",
	},

	// ============================================
	// Transport Errors (T050-T059)
	// ============================================

	"T050": {
		Category: CategoryTransport,
		Message:  "WebSocket upgrade failed",
		Detail:   "The live connection could not be established.",
	},
	"T051": {
		Category: CategoryTransport,
		Message:  "Invalid notify request",
		Detail:   "The request body must be JSON with a non-empty \"message\".",
	},

	// ============================================
	// Config Errors (T100-T119)
	// ============================================

	"T100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No toastd.json was found in the given directory.",
	},
	"T101": {
		Category: CategoryConfig,
		Message:  "Config parse failed",
		Detail:   "toastd.json or the environment overrides could not be parsed.",
	},
	"T102": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "Port must be between 0 and 65535.",
	},
	"T103": {
		Category: CategoryConfig,
		Message:  "Invalid toast lifetime",
		Detail:   "The toast lifetime must be a positive duration such as \"3s\".",
	},
	"T104": {
		Category: CategoryConfig,
		Message:  "Page template unreadable",
		Detail:   "The configured page template could not be read.",
	},
	"T105": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
		Detail:   "A duration field could not be parsed.",
	},

	// ============================================
	// CLI Errors (T200-T299)
	// ============================================

	"T200": {
		Category: CategoryCLI,
		Message:  "Config file already exists",
		Detail:   "toastd.json is already present in the target directory.",
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

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
