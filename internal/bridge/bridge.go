// File: internal/bridge/bridge.go
package bridge

import (
	"context"
	"encoding/base64"
	encodingjson "encoding/json"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/nova-bridge/api/schemas"
	"github.com/xkilldash9x/nova-bridge/internal/config"
)

// extractionInstruction is the fixed follow-up instruction used when an
// action is chained with an extraction (action_extract) and for extract_data.
const extractionInstruction = "Extract data from this page"

// sessionCloseGrace bounds the deferred session close after the automation
// phase has ended (possibly by timeout).
const sessionCloseGrace = 10 * time.Second

// Bridge translates one JSON request into automation calls against an
// external session and assembles exactly one JSON result. It is a linear
// request-to-response transform with internal branching on the operation.
type Bridge struct {
	cfg      *config.Config
	logger   *zap.Logger
	factory  schemas.SessionFactory
	capturer schemas.Capturer
	validate *validator.Validate
	limiter  *rate.Limiter

	// Seams for tests.
	now       func() time.Time
	lookupEnv func(string) string
}

// New wires a Bridge. capturer may be nil, in which case screenshot requests
// are logged and skipped.
func New(cfg *config.Config, logger *zap.Logger, factory schemas.SessionFactory, capturer schemas.Capturer) *Bridge {
	var limiter *rate.Limiter
	if cfg.Runner.CommandsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Runner.CommandsPerSecond), 1)
	}
	return &Bridge{
		cfg:       cfg,
		logger:    logger.Named("bridge"),
		factory:   factory,
		capturer:  capturer,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		limiter:   limiter,
		now:       time.Now,
		lookupEnv: os.Getenv,
	}
}

// Handle processes one request end to end. It never returns nil and never
// panics outward; every path yields a well-formed result document.
func (b *Bridge) Handle(ctx context.Context, req *schemas.Request) *schemas.Result {
	start := b.now()
	rec := newRecorder(b.now)
	rec.Log("Starting Nova Act execution")
	rec.Logf("Configuration: operation=%s, url=%s, headless=%t, schema_provided=%t",
		req.Operation, req.TargetURL(), req.IsHeadless(), len(req.Schema) > 0)

	res, err := b.run(ctx, req, rec)
	if err != nil {
		rec.Logf("Error occurred: %v", err)
		res = b.failureResult(req, err)
	}

	res.Operation = req.Operation
	res.Prompt = req.Prompt
	res.URL = req.TargetURL()

	end := b.now()
	res.ExecutionTimeSeconds = end.Sub(start).Seconds()
	res.Timestamp = end
	if res.Success {
		rec.Logf("Execution completed successfully in %.2f seconds", res.ExecutionTimeSeconds)
	}
	if req.WantsExecutionLogs() {
		res.ExecutionLogs = rec.Entries()
	}
	return res
}

func (b *Bridge) failureResult(req *schemas.Request, err error) *schemas.Result {
	res := &schemas.Result{
		Success:   false,
		Error:     err.Error(),
		ErrorType: errorType(err),
	}
	if req.IncludeStackTrace {
		res.StackTrace = string(debug.Stack())
	}
	b.logger.Error("Request failed", zap.String("operation", string(req.Operation)), zap.Error(err))
	return res
}

func (b *Bridge) run(ctx context.Context, req *schemas.Request, rec *recorder) (*schemas.Result, error) {
	if err := b.validateRequest(req); err != nil {
		return nil, err
	}

	apiKey, err := b.resolveAPIKey(req)
	if err != nil {
		return nil, err
	}
	rec.Log("API key configured")

	// The request timeout bounds the entire automation phase.
	ctx, cancel := context.WithTimeout(ctx, req.Timeout())
	defer cancel()

	switch req.Operation {
	case schemas.OpAction:
		return b.runSingle(ctx, req, apiKey, nil, rec)
	case schemas.OpExtract:
		return b.runSingle(ctx, req, apiKey, b.extractionSchema(req, rec), rec)
	case schemas.OpActionExtract:
		return b.runSingle(ctx, req, apiKey, b.extractionSchema(req, rec), rec)
	case schemas.OpPerformActions:
		return b.runBatch(ctx, req, apiKey, rec)
	case schemas.OpExtractData:
		return b.runExtractData(ctx, req, apiKey, rec)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, req.Operation)
	}
}

// validateRequest applies struct-level validation plus the per-operation
// instruction invariants. All violations are configuration errors: no session
// is opened for them.
func (b *Bridge) validateRequest(req *schemas.Request) error {
	if err := b.validate.Struct(req); err != nil {
		return err
	}
	switch req.Operation {
	case schemas.OpAction, schemas.OpExtract, schemas.OpActionExtract:
		if req.Prompt == "" {
			return fmt.Errorf("%w: prompt must be non-empty for operation %q", ErrMissingInstruction, req.Operation)
		}
	case schemas.OpPerformActions:
		if len(req.CommandList()) == 0 {
			return fmt.Errorf("%w: no commands provided", ErrMissingInstruction)
		}
	case schemas.OpExtractData:
		if req.StartingURL == "" && req.URL == "" {
			return ErrMissingStartingURL
		}
		if len(req.Schema) == 0 {
			return ErrMissingSchema
		}
	}
	return nil
}

// resolveAPIKey returns the credential from the request body or the
// environment. The key is handed to the session factory explicitly; the
// bridge never mutates process environment state.
func (b *Bridge) resolveAPIKey(req *schemas.Request) (string, error) {
	if req.APIKey != "" {
		return req.APIKey, nil
	}
	if key := b.lookupEnv("NOVA_ACT_API_KEY"); key != "" {
		return key, nil
	}
	return "", ErrMissingCredential
}

// extractionSchema returns the caller's schema, or auto-generates one from
// prompt/URL keywords.
func (b *Bridge) extractionSchema(req *schemas.Request, rec *recorder) encodingjson.RawMessage {
	if len(req.Schema) > 0 {
		return req.Schema
	}
	rec.Log("No schema provided, auto-generating based on prompt and URL")
	schema := GenerateSchema(req.Prompt, req.TargetURL())
	rec.Logf("Auto-generated schema: %s", compactJSON(schema))
	return schema
}

// openSession opens the single automation session for this invocation and
// returns it along with a closer that must be deferred immediately. The
// closer runs on a fresh deadline so the browser is released even when the
// automation context has already expired.
func (b *Bridge) openSession(ctx context.Context, req *schemas.Request, apiKey string, rec *recorder) (schemas.AutomationSession, func(), error) {
	rec.Log("Initializing Nova Act browser session")
	session, err := b.factory.Open(ctx, schemas.OpenOptions{
		StartingURL: req.TargetURL(),
		Headless:    req.IsHeadless(),
		APIKey:      apiKey,
		Timeout:     req.Timeout(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open automation session: %w", err)
	}
	rec.Log("Browser session started successfully")

	closer := func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionCloseGrace)
		defer cancel()
		if cerr := session.Close(closeCtx); cerr != nil {
			b.logger.Warn("Failed to close automation session", zap.String("session_id", session.ID()), zap.Error(cerr))
		}
	}
	return session, closer, nil
}

// runSingle covers action, extract and action_extract. A nil schema means a
// pure action; action_extract issues the prompt first and then the fixed
// extraction instruction, returning only the extraction result.
func (b *Bridge) runSingle(ctx context.Context, req *schemas.Request, apiKey string, schema encodingjson.RawMessage, rec *recorder) (*schemas.Result, error) {
	res := &schemas.Result{Success: true}

	wantShots := req.WantsScreenshots() && promptRequestsScreenshot(req.Prompt)
	if wantShots {
		b.captureInto(ctx, res, req.TargetURL(), "Initial page load", rec)
	}

	session, closeSession, err := b.openSession(ctx, req, apiKey, rec)
	if err != nil {
		return nil, err
	}
	defer closeSession()

	var act *schemas.ActResult
	switch req.Operation {
	case schemas.OpActionExtract:
		rec.Logf("Executing browser action: %s", req.Prompt)
		if _, err := session.Act(ctx, req.Prompt, nil); err != nil {
			return nil, fmt.Errorf("browser action failed: %w", err)
		}
		rec.Log("Browser action completed")

		rec.Log("Executing data extraction after action")
		act, err = session.Act(ctx, extractionInstruction, schema)
		if err != nil {
			return nil, fmt.Errorf("data extraction failed: %w", err)
		}
		rec.Log("Data extraction completed")
	case schemas.OpExtract:
		rec.Logf("Executing data extraction: %s", req.Prompt)
		act, err = session.Act(ctx, req.Prompt, schema)
		if err != nil {
			return nil, fmt.Errorf("data extraction failed: %w", err)
		}
		rec.Log("Data extraction completed")
	default:
		rec.Logf("Executing browser action: %s", req.Prompt)
		act, err = session.Act(ctx, req.Prompt, nil)
		if err != nil {
			return nil, fmt.Errorf("browser action failed: %w", err)
		}
		rec.Log("Browser action completed")
	}

	res.Response = act.Response
	res.ParsedResponse = act.ParsedResponse
	validJSON := act.ValidJSON
	res.ValidJSON = &validJSON

	matches := act.MatchesSchema
	if len(schema) > 0 && len(act.ParsedResponse) > 0 {
		// The service's verdict is cross-checked locally against the shape.
		ok, detail, verr := ValidateAgainstShape(schema, act.ParsedResponse)
		if verr != nil {
			rec.Logf("Local schema validation unavailable: %v", verr)
		} else {
			if !ok {
				rec.Logf("Parsed response does not match schema: %s", detail)
			}
			matches = matches && ok
		}
	}
	res.MatchesSchema = &matches

	if wantShots {
		b.captureInto(ctx, res, req.TargetURL(), "After execution", rec)
	}
	return res, nil
}

// runBatch executes a perform_actions command sequence. Individual command
// failures are recorded and never abort the remaining commands; the batch as
// a whole succeeds once the session was opened.
func (b *Bridge) runBatch(ctx context.Context, req *schemas.Request, apiKey string, rec *recorder) (*schemas.Result, error) {
	commands := req.CommandList()

	session, closeSession, err := b.openSession(ctx, req, apiKey, rec)
	if err != nil {
		return nil, err
	}
	defer closeSession()

	executed := make([]schemas.ExecutedCommand, 0, len(commands))
	succeeded := 0
	for i, command := range commands {
		if b.limiter != nil {
			if err := b.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("command pacing interrupted: %w", err)
			}
		}
		rec.Logf("[%d/%d] Executing: %q", i+1, len(commands), command)

		act, cmdErr := session.Act(ctx, command, nil)
		if cmdErr != nil {
			rec.Logf("Command failed: %q - %v", command, cmdErr)
			b.logger.Warn("Batch command failed", zap.String("command", command), zap.Error(cmdErr))
			executed = append(executed, schemas.ExecutedCommand{
				Command: command,
				Success: false,
				Error:   cmdErr.Error(),
			})
			continue
		}
		resultText := act.Response
		if resultText == "" {
			resultText = "Command executed successfully"
		}
		executed = append(executed, schemas.ExecutedCommand{
			Command: command,
			Success: true,
			Result:  resultText,
		})
		succeeded++
	}

	res := &schemas.Result{
		Success:          true,
		ExecutedCommands: executed,
		Message:          fmt.Sprintf("Successfully executed %d out of %d commands", succeeded, len(commands)),
	}

	// One verification screenshot at the end, regardless of per-command
	// outcomes. Failure to capture never fails the batch.
	if req.WantsScreenshots() {
		b.captureInto(ctx, res, req.TargetURL(), "Verification after command batch", rec)
	}
	return res, nil
}

// runExtractData navigates (optionally), extracts against the caller's
// schema, and captures a verification screenshot. Navigation failures abort:
// extracting from the wrong page state would silently return wrong data.
func (b *Bridge) runExtractData(ctx context.Context, req *schemas.Request, apiKey string, rec *recorder) (*schemas.Result, error) {
	session, closeSession, err := b.openSession(ctx, req, apiKey, rec)
	if err != nil {
		return nil, err
	}
	defer closeSession()

	for _, nav := range req.NavigationList() {
		rec.Logf("Navigation: %s", nav)
		if _, err := session.Act(ctx, nav, nil); err != nil {
			return nil, fmt.Errorf("navigation command %q failed: %w", nav, err)
		}
	}

	rec.Log("Extracting data")
	act, err := session.Act(ctx, extractionInstruction, req.Schema)
	if err != nil {
		return nil, fmt.Errorf("data extraction failed: %w", err)
	}

	res := &schemas.Result{
		Success:    true,
		SchemaUsed: req.Schema,
	}
	if len(act.ParsedResponse) > 0 {
		res.ExtractedData = act.ParsedResponse
		res.DataType = "structured"
		if ok, detail, verr := ValidateAgainstShape(req.Schema, act.ParsedResponse); verr == nil && !ok {
			rec.Logf("Extracted data does not match schema: %s", detail)
		}
	} else if act.Response != "" {
		encoded, merr := json.Marshal(act.Response)
		if merr != nil {
			return nil, &schemas.SerializationError{Reason: "response text not encodable", Err: merr}
		}
		res.ExtractedData = encoded
		res.DataType = "response"
	}

	if req.WantsScreenshots() {
		b.captureInto(ctx, res, req.TargetURL(), "Verification after extraction", rec)
	}
	return res, nil
}

// captureInto takes one full-page screenshot and appends it to the result.
// All failures are logged and swallowed: screenshots are best-effort.
func (b *Bridge) captureInto(ctx context.Context, res *schemas.Result, url, description string, rec *recorder) {
	if b.capturer == nil {
		rec.Log("Screenshot capturer not available")
		return
	}
	rec.Logf("Attempting screenshot capture: %s", description)

	capture, err := b.capturer.Capture(ctx, url)
	if err != nil {
		rec.Logf("Screenshot capture failed: %v", err)
		b.logger.Warn("Screenshot capture failed", zap.String("url", url), zap.Error(err))
		return
	}

	res.Screenshots = append(res.Screenshots, schemas.Screenshot{
		ID:          uuid.NewString(),
		Type:        "full_page",
		Description: description,
		Timestamp:   b.now(),
		Data:        "data:image/png;base64," + base64.StdEncoding.EncodeToString(capture.PNG),
		PageTitle:   capture.Title,
		URL:         capture.FinalURL,
	})
	rec.Logf("Screenshot captured successfully: %d bytes", len(capture.PNG))
}

// compactJSON renders a JSON value on one line for log entries.
func compactJSON(raw encodingjson.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return string(raw)
	}
	return string(out)
}
