// Package tracecheck runs deterministic assertions over a captured
// agent session, independent of any trigger expectation.
//
// Checks are declared in YAML, dispatched through an explicitly
// constructed registry, and implemented by one handler per check type.
// Handlers validate their own parameters: a malformed definition is a
// failing check result, never a harness crash.
package tracecheck

// Definition declares one deterministic assertion over a trace.
// Only the fields relevant to the declared type are consulted; the
// handler for that type validates they are present.
type Definition struct {
	ID   string `yaml:"id"`
	Type string `yaml:"type"`

	// command-presence
	Pattern string `yaml:"pattern,omitempty"`

	// file-creation
	Path string `yaml:"path,omitempty"`

	// event-sequence
	Sequence []string `yaml:"sequence,omitempty"`

	// loop-detection; nil means the default of 3
	MaxRetries *int `yaml:"max_retries,omitempty"`

	// efficiency
	MaxCommands *int `yaml:"max_commands,omitempty"`
}

// DefaultMaxRetries is the loop-detection threshold when a definition
// does not set one.
const DefaultMaxRetries = 3

// Result is the immutable outcome of one check execution.
type Result struct {
	CheckID   string                 `json:"check_id"`
	CheckType string                 `json:"check_type"`
	Passed    bool                   `json:"passed"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

func pass(def Definition, message string) Result {
	return Result{CheckID: def.ID, CheckType: def.Type, Passed: true, Message: message}
}

func fail(def Definition, message string) Result {
	return Result{CheckID: def.ID, CheckType: def.Type, Passed: false, Message: message}
}

func failWithDetails(def Definition, message string, details map[string]interface{}) Result {
	return Result{CheckID: def.ID, CheckType: def.Type, Passed: false, Message: message, Details: details}
}

// missingField builds the failing result for a definition that lacks a
// required parameter, naming the missing field.
func missingField(def Definition, field string) Result {
	return fail(def, "check definition is missing required field '"+field+"'")
}
