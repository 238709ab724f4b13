package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "The config file passed with --config does not exist or cannot be read.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid signalstate.json",
		Detail:   "The config file is not valid JSON.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid signalstate.yaml",
		Detail:   "The config file is not valid YAML.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Unsupported config format",
		Detail:   "Config files must end in .json, .yaml or .yml.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid scheduler",
		Detail:   "The scheduler must be \"frame\" (flush once per frame interval) or \"immediate\" (flush inside every dispatch).",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid frame interval",
		Detail:   "The frame interval must be a positive duration such as \"16ms\".",
	},
	"E106": {
		Category: CategoryConfig,
		Message:  "Invalid integrity mode",
		Detail:   "The integrity mode must be \"warn\" or \"panic\".",
	},
	"E107": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "The log level must be one of debug, info, warn or error.",
	},
	"E108": {
		Category: CategoryConfig,
		Message:  "Invalid log format",
		Detail:   "The log format must be \"text\", \"json\" or \"tint\".",
	},
	"E109": {
		Category: CategoryConfig,
		Message:  "Invalid inspector address",
		Detail:   "The inspector address must be host:port, for example \"127.0.0.1:6060\".",
	},

	// ============================================
	// Runtime Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryRuntime,
		Message:  "State value mutated in place",
		Detail:   "A value held by a cell or cached by a view was modified after it was stored. State must be replaced through Dispatch or Update, never mutated.",
	},

	// ============================================
	// CLI Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryCLI,
		Message:  "Unknown demo scenario",
		Detail:   "The requested scenario does not exist.",
	},
	"E201": {
		Category: CategoryCLI,
		Message:  "Inspector server failed",
		Detail:   "The inspector HTTP server stopped with an error.",
	},
	"E202": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command stopped with an error that carries no code of its own.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
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
