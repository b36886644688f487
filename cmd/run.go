// File: cmd/run.go
package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/nova-bridge/api/schemas"
	"github.com/xkilldash9x/nova-bridge/internal/bridge"
	"github.com/xkilldash9x/nova-bridge/internal/config"
	"github.com/xkilldash9x/nova-bridge/internal/novaact"
	"github.com/xkilldash9x/nova-bridge/internal/observability"
	"github.com/xkilldash9x/nova-bridge/internal/screenshot"
)

// newBridge wires the production collaborators. Declared as a variable so
// tests can substitute mocked sessions without touching the command plumbing.
var newBridge = func(cfg *config.Config, logger *zap.Logger, req *schemas.Request) *bridge.Bridge {
	factory := novaact.NewFactory(cfg.Nova, logger)
	capturer := screenshot.NewChrome(cfg.Browser, req.IsHeadless(), logger)
	return bridge.New(cfg, logger, factory, capturer)
}

// newRunCmd creates the `run` command: read one JSON request, drive the
// automation session, print one JSON result, exit 0/1.
func newRunCmd() *cobra.Command {
	var (
		params    string
		operation string
		apiKey    string
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a single bridge request and print the JSON result",
		Long: `Reads a JSON request document from stdin (or --params), drives the Nova Act
automation service accordingly, and writes exactly one JSON result document to
stdout. The process exits 0 on success and 1 on any failure; every path still
emits parseable JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			cfg := appConfig
			if cfg == nil {
				cfg = config.Default()
			}

			payload := []byte(params)
			if params == "" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return writeFailure(cmd.OutOrStdout(), fmt.Errorf("failed to read request from stdin: %w", err))
				}
				payload = raw
			}

			var req schemas.Request
			if err := json.Unmarshal(payload, &req); err != nil {
				return writeFailure(cmd.OutOrStdout(), fmt.Errorf("invalid JSON payload: %w", err))
			}

			// Argument-driven overrides for callers that keep the operation and
			// credential out of the payload.
			if operation != "" {
				req.Operation = schemas.Operation(operation)
			}
			if apiKey != "" {
				req.APIKey = apiKey
			}

			logger.Info("Processing bridge request",
				zap.String("operation", string(req.Operation)),
				zap.String("url", req.TargetURL()),
				zap.Bool("headless", req.IsHeadless()),
			)

			b := newBridge(cfg, logger, &req)
			res := b.Handle(cmd.Context(), &req)

			if err := writeResult(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Success {
				return errors.New(res.Error)
			}
			return nil
		},
	}

	runCmd.Flags().StringVarP(&params, "params", "p", "", "inline JSON request (reads stdin when unset)")
	runCmd.Flags().StringVar(&operation, "operation", "", "override the request's operation field")
	runCmd.Flags().StringVar(&apiKey, "api-key", "", "override the request's api_key field")

	return runCmd
}

// writeResult encodes the result document to stdout.
func writeResult(w io.Writer, res *schemas.Result) error {
	encoded, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(encoded)); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// writeFailure emits a minimal failure document for errors that happen before
// a request ever reaches the bridge, then propagates the error so the process
// exits 1. Callers can always parse stdout.
func writeFailure(w io.Writer, cause error) error {
	res := &schemas.Result{
		Success:   false,
		Error:     cause.Error(),
		ErrorType: "ConfigurationError",
		Timestamp: time.Now(),
	}
	if werr := writeResult(w, res); werr != nil {
		return werr
	}
	return cause
}
