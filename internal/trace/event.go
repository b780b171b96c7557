// Package trace defines the canonical event model shared by all runtime
// adapters and the query layer used by trigger tests and trace checks.
//
// Every supported runtime emits its own native record shape. Adapters
// normalize those records into Event values; everything downstream
// (trigger evaluation, trace checks, reporting) operates only on the
// canonical form and never inspects runtime-specific fields.
package trace

// EventKind identifies what kind of occurrence an Event records.
type EventKind string

// Canonical event kinds. The set is closed for the checks implemented
// here; adapters pass unrecognized native kinds through untouched so a
// trace dump stays faithful to what the runtime emitted.
const (
	SessionStarted   EventKind = "session-started"
	SessionCompleted EventKind = "session-completed"
	ItemStarted      EventKind = "item-started"
	ItemCompleted    EventKind = "item-completed"
	TurnStarted      EventKind = "turn-started"
	TurnCompleted    EventKind = "turn-completed"
)

// Item kinds for item-started/item-completed events.
const (
	ItemCommandExecution = "command-execution"
	ItemSkillInvocation  = "skill-invocation"
	ItemFileWrite        = "file-write"
	ItemFileRead         = "file-read"
	ItemToolResult       = "tool-result"
)

// Event is one normalized occurrence inside an agent execution session.
//
// Ordering within a session is authoritative from arrival order, not
// from the Timestamp field: timestamps may be missing or unreliable
// across runtimes.
type Event struct {
	Kind      EventKind              `json:"kind"`
	ItemKind  string                 `json:"item_kind,omitempty"`
	Command   string                 `json:"command,omitempty"`
	Output    string                 `json:"output,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
	// Raw is the original untransformed record, kept for humans
	// debugging a failure. Check logic never consults it.
	Raw map[string]interface{} `json:"raw,omitempty"`
}

// Session is the full ordered event log of one agent execution, plus
// the exit status of the underlying process and the working directory
// it ran in. A Session is created once per test execution and never
// mutated after capture completes.
type Session struct {
	Events   []Event
	ExitCode int
	WorkDir  string

	// TimedOut is set when the run hit its wall-clock limit and the
	// process was forcibly terminated. The events captured up to that
	// point are still present (best-effort partial trace).
	TimedOut bool

	// DroppedRecords counts native records that could not be mapped to
	// the canonical form. Normalization never aborts on a bad record;
	// it drops it, counts it, and keeps going.
	DroppedRecords int
}
