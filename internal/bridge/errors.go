// File: internal/bridge/errors.go
package bridge

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/xkilldash9x/nova-bridge/api/schemas"
)

// Configuration errors are reported immediately, before any automation
// session is opened.
var (
	// ErrMissingCredential means no API key was found in the request or the
	// NOVA_ACT_API_KEY environment variable.
	ErrMissingCredential = errors.New("api_key is required (set it in the request or via NOVA_ACT_API_KEY)")
	// ErrMissingInstruction means the operation's instruction field (prompt or
	// commands) is empty.
	ErrMissingInstruction = errors.New("no instruction provided")
	// ErrMissingStartingURL is raised by extract_data, which cannot default to
	// about:blank.
	ErrMissingStartingURL = errors.New("starting_url is required for data extraction")
	// ErrMissingSchema is raised by extract_data, whose schema is caller-supplied.
	ErrMissingSchema = errors.New("data schema is required for data extraction")
	// ErrUnknownOperation covers operation names outside the enum.
	ErrUnknownOperation = errors.New("unknown operation")
)

// errorType maps an error to the coarse taxonomy reported in the result's
// error_type field: configuration errors never touched a session,
// serialization errors are contract violations by the collaborator, and
// everything else is a session error.
func errorType(err error) string {
	var serr *schemas.SerializationError
	if errors.As(err, &serr) {
		return "SerializationError"
	}
	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		return "ConfigurationError"
	}
	for _, sentinel := range []error{
		ErrMissingCredential,
		ErrMissingInstruction,
		ErrMissingStartingURL,
		ErrMissingSchema,
		ErrUnknownOperation,
	} {
		if errors.Is(err, sentinel) {
			return "ConfigurationError"
		}
	}
	return "SessionError"
}
