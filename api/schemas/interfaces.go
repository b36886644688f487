// File: api/schemas/interfaces.go
package schemas

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// -- Automation Session Interface --

// OpenOptions carries everything needed to open one automation session. The
// credential travels explicitly here rather than through process-global
// environment state.
type OpenOptions struct {
	StartingURL string
	Headless    bool
	APIKey      string
	// Timeout is passed through to the automation service; the bridge does
	// not enforce it independently beyond its outer request deadline.
	Timeout time.Duration
}

// ActResult is the explicit, versioned result contract the automation
// collaborator commits to returning. The bridge consumes only these named
// fields; there is no reflective field discovery and no stringify fallback.
type ActResult struct {
	// Response is the session's raw textual answer to the instruction.
	Response string `json:"response"`
	// ParsedResponse holds the schema-constrained structured payload, when a
	// schema was attached and the service produced valid JSON.
	ParsedResponse json.RawMessage `json:"parsed_response,omitempty"`
	// MatchesSchema reports the service's own validation verdict.
	MatchesSchema bool `json:"matches_schema"`
	// ValidJSON reports whether ParsedResponse is well-formed JSON.
	ValidJSON bool `json:"valid_json"`
	// Metadata carries auxiliary service-side details (step counts, model
	// identifiers). Opaque to the bridge.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AutomationSession is a scoped handle on one external browser-driving
// session. It accepts natural-language instructions and must be closed
// unconditionally once opened so the underlying browser is not leaked.
type AutomationSession interface {
	// ID returns the service-assigned session identifier.
	ID() string
	// Act issues one instruction. A non-nil schema requests structured output
	// constrained to that shape.
	Act(ctx context.Context, instruction string, schema json.RawMessage) (*ActResult, error)
	// Close releases the session and its browser resources.
	Close(ctx context.Context) error
}

// SessionFactory opens automation sessions. Exactly one session is opened per
// bridge invocation.
type SessionFactory interface {
	Open(ctx context.Context, opts OpenOptions) (AutomationSession, error)
}

// -- Screenshot Interface --

// Capture is the product of one full-page screenshot.
type Capture struct {
	// PNG holds the raw image bytes.
	PNG []byte
	// Title is the page title at capture time.
	Title string
	// FinalURL is the page URL after any redirects.
	FinalURL string
}

// Capturer takes full-page screenshots of a URL with a locally driven
// headless browser. Capture failures are non-fatal to the bridge; they are
// logged and the invocation proceeds.
type Capturer interface {
	Capture(ctx context.Context, url string) (*Capture, error)
}

// -- Shared Error Types --

// SerializationError signals that the automation service's payload could not
// be decoded into the ActResult contract. The bridge fails fast on it rather
// than silently stringifying the payload.
type SerializationError struct {
	Reason string
	Err    error
}

func (e *SerializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("serialization contract violated: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("serialization contract violated: %s", e.Reason)
}

func (e *SerializationError) Unwrap() error { return e.Err }
