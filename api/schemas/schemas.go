// File: api/schemas/schemas.go
package schemas

import (
	"encoding/json"
	"strings"
	"time"
)

// Operation enumerates the bridge's request modes.
type Operation string

const (
	// OpAction issues a single natural-language instruction and returns the
	// session's raw/parsed response.
	OpAction Operation = "action"
	// OpExtract issues an instruction with a structured-output schema attached
	// (caller-supplied or auto-generated) and returns schema-validated data.
	OpExtract Operation = "extract"
	// OpActionExtract performs an action instruction, then a second extraction
	// instruction against the resulting page state. Only the extraction result
	// is returned.
	OpActionExtract Operation = "action_extract"
	// OpPerformActions executes a newline-separated block of commands
	// independently, recording per-command success without aborting the batch.
	OpPerformActions Operation = "perform_actions"
	// OpExtractData optionally runs navigation commands, then extracts data
	// against a caller-supplied schema and captures a verification screenshot.
	OpExtractData Operation = "extract_data"
)

// DefaultStartingURL is used when a prompt-mode request names no target page.
const DefaultStartingURL = "about:blank"

// Request is the single JSON document the bridge accepts on stdin (or via
// --params). Both entities are constructed, used and discarded within one
// process invocation; there is no cross-invocation state.
type Request struct {
	Operation Operation `json:"operation" validate:"required,oneof=action extract action_extract perform_actions extract_data"`

	// Prompt carries the instruction text for the single-operation modes.
	Prompt string `json:"prompt,omitempty"`
	// Commands is the newline-separated instruction block for perform_actions.
	Commands string `json:"commands,omitempty"`
	// NavigationCommands optionally precede extraction in extract_data.
	NavigationCommands string `json:"navigation_commands,omitempty"`

	// URL and StartingURL are aliases for the target page. StartingURL wins
	// when both are set.
	URL         string `json:"url,omitempty"`
	StartingURL string `json:"starting_url,omitempty"`

	// Schema is an optional shape descriptor constraining extracted output.
	// Leaves name primitive types ("string", "number", "boolean").
	Schema json.RawMessage `json:"schema,omitempty"`

	// Headless defaults to true when absent.
	Headless *bool `json:"headless,omitempty"`
	// TimeoutSeconds bounds the automation phase. Defaults to 300.
	TimeoutSeconds int `json:"timeout,omitempty" validate:"gte=0"`
	// APIKey is the Nova Act credential. It may instead arrive via the
	// NOVA_ACT_API_KEY environment variable.
	APIKey string `json:"api_key,omitempty"`

	// CaptureScreenshots defaults to true when absent.
	CaptureScreenshots *bool `json:"capture_screenshots,omitempty"`
	// DetailedLogging defaults to true and controls the execution_logs field.
	DetailedLogging   *bool `json:"detailed_logging,omitempty"`
	IncludeStackTrace bool  `json:"include_stack_trace,omitempty"`
}

// TargetURL resolves the request's target page. starting_url takes precedence
// over url; prompt modes fall back to about:blank.
func (r *Request) TargetURL() string {
	if r.StartingURL != "" {
		return r.StartingURL
	}
	if r.URL != "" {
		return r.URL
	}
	return DefaultStartingURL
}

// IsHeadless reports the effective headless flag (default true).
func (r *Request) IsHeadless() bool {
	return r.Headless == nil || *r.Headless
}

// WantsScreenshots reports the effective capture_screenshots flag (default true).
func (r *Request) WantsScreenshots() bool {
	return r.CaptureScreenshots == nil || *r.CaptureScreenshots
}

// WantsExecutionLogs reports the effective detailed_logging flag (default true).
func (r *Request) WantsExecutionLogs() bool {
	return r.DetailedLogging == nil || *r.DetailedLogging
}

// Timeout returns the effective automation timeout.
func (r *Request) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// CommandList splits the Commands block into trimmed, non-empty entries,
// preserving order.
func (r *Request) CommandList() []string {
	return splitCommands(r.Commands)
}

// NavigationList splits NavigationCommands the same way.
func (r *Request) NavigationList() []string {
	return splitCommands(r.NavigationCommands)
}

func splitCommands(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		if cmd := strings.TrimSpace(line); cmd != "" {
			out = append(out, cmd)
		}
	}
	return out
}

// ExecutedCommand records the outcome of one command in a perform_actions
// batch. A failing command never aborts the remaining ones.
type ExecutedCommand struct {
	Command string `json:"command"`
	Success bool   `json:"success"`
	Result  string `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Screenshot is one captured full-page image with its metadata. Data carries
// a base64 PNG data URI.
type Screenshot struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Data        string    `json:"data"`
	PageTitle   string    `json:"page_title,omitempty"`
	URL         string    `json:"url,omitempty"`
}

// Result is the single JSON document the bridge emits on stdout. Exactly one
// Result is written per invocation, on every path, so callers can always
// parse the output.
type Result struct {
	Success   bool      `json:"success"`
	Operation Operation `json:"operation,omitempty"`
	Prompt    string    `json:"prompt,omitempty"`
	URL       string    `json:"url,omitempty"`

	// Single-operation payload (action / extract / action_extract).
	Response       string          `json:"response,omitempty"`
	ParsedResponse json.RawMessage `json:"parsed_response,omitempty"`
	MatchesSchema  *bool           `json:"matches_schema,omitempty"`
	ValidJSON      *bool           `json:"valid_json,omitempty"`

	// extract_data payload.
	ExtractedData json.RawMessage `json:"extracted_data,omitempty"`
	DataType      string          `json:"data_type,omitempty"`
	SchemaUsed    json.RawMessage `json:"schema_used,omitempty"`

	// perform_actions payload.
	ExecutedCommands []ExecutedCommand `json:"executed_commands,omitempty"`
	Message          string            `json:"message,omitempty"`

	Screenshots   []Screenshot `json:"screenshots,omitempty"`
	ExecutionLogs []string     `json:"execution_logs,omitempty"`

	ExecutionTimeSeconds float64   `json:"execution_time_seconds"`
	Timestamp            time.Time `json:"timestamp"`

	// Failure fields.
	Error      string `json:"error,omitempty"`
	ErrorType  string `json:"error_type,omitempty"`
	StackTrace string `json:"stack_trace,omitempty"`
}
