package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reconciler diagnostics (W001-W019)
	// ============================================

	"W001": {
		Category: CategoryReconcile,
		Message:  "Duplicate cache key in render pass",
		Detail:   "Two elements in the same component produced the same cache key during one render pass. The later element gets a fresh node and the key is rebound to it. Give list items distinct key props.",
	},
	"W002": {
		Category: CategoryReconcile,
		Message:  "Attribute value could not be serialised",
		Detail:   "An object or array prop could not be converted to JSON (for example a cycle or a func value). The attribute was left unset.",
	},
	"W003": {
		Category: CategoryReconcile,
		Message:  "Attribute value exceeds size limit",
		Detail:   "A serialised attribute value is larger than the configured limit. It was written anyway; pass large data as a property of a custom element instead.",
	},
	"W004": {
		Category: CategoryReconcile,
		Message:  "Element cache fault",
		Detail:   "Looking up or updating a cached element failed. The element was created without caching for this render.",
	},
	"W005": {
		Category: CategoryReconcile,
		Message:  "Unsupported style value",
		Detail:   "The style prop only accepts a CSS text string.",
	},
	"W006": {
		Category: CategoryReconcile,
		Message:  "Property assignment failed",
		Detail:   "The element exposes the property but rejected the value. The value was written as an attribute instead.",
	},
	"W007": {
		Category: CategoryReconcile,
		Message:  "Child nesting too deep",
		Detail:   "Children nested deeper than the flatten limit were dropped.",
	},
	"W008": {
		Category: CategoryReconcile,
		Message:  "Raw HTML could not be parsed",
		Detail:   "A Raw child failed to parse and was skipped.",
	},
	"W009": {
		Category: CategoryReconcile,
		Message:  "Cached element tag changed",
		Detail:   "A cache key was reused for an element with a different tag. The element was recreated.",
	},

	// ============================================
	// Render errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryRender,
		Message:  "Render function panicked",
		Detail:   "The component's render function panicked. An error block was rendered in its place.",
	},
	"E021": {
		Category: CategoryScheduler,
		Message:  "Render pass skipped: component disconnected",
	},

	// ============================================
	// Config errors (E040-E059)
	// ============================================

	"E040": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file contains an invalid value.",
	},
	"E041": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No weft.json was found in the directory or any parent.",
	},
	"E042": {
		Category: CategoryConfig,
		Message:  "Configuration file is not valid JSON",
	},

	// ============================================
	// Snapshot errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategorySnapshot,
		Message:  "Snapshot not found",
	},
	"E061": {
		Category: CategorySnapshot,
		Message:  "Snapshot store operation failed",
	},
	"E062": {
		Category: CategorySnapshot,
		Message:  "Invalid snapshot name",
		Detail:   "Snapshot names may contain letters, digits, dots, dashes and underscores.",
	},
	"E063": {
		Category: CategorySnapshot,
		Message:  "Render differs from stored snapshot",
	},

	// ============================================
	// CLI errors (E080-E099)
	// ============================================

	"E080": {
		Category: CategoryCLI,
		Message:  "Unknown demo",
	},
	"E081": {
		Category: CategoryCLI,
		Message:  "Dev server failed",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Codes returns all registered codes.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
