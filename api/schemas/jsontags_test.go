// File: api/schemas/jsontags_test.go
package schemas_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/nova-bridge/api/schemas"
)

// TestStructJSONTags uses reflection to verify that the `json` tags on struct
// fields are correct. The request and result documents are the bridge's wire
// contract with its callers, so tag drift is a breaking change.
func TestStructJSONTags(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		structRef    interface{}
		expectedTags map[string]string
	}{
		{
			name:      "Request",
			structRef: schemas.Request{},
			expectedTags: map[string]string{
				"Operation":          "operation",
				"Prompt":             "prompt,omitempty",
				"Commands":           "commands,omitempty",
				"NavigationCommands": "navigation_commands,omitempty",
				"URL":                "url,omitempty",
				"StartingURL":        "starting_url,omitempty",
				"Schema":             "schema,omitempty",
				"Headless":           "headless,omitempty",
				"TimeoutSeconds":     "timeout,omitempty",
				"APIKey":             "api_key,omitempty",
				"CaptureScreenshots": "capture_screenshots,omitempty",
				"DetailedLogging":    "detailed_logging,omitempty",
				"IncludeStackTrace":  "include_stack_trace,omitempty",
			},
		},
		{
			name:      "Result",
			structRef: schemas.Result{},
			expectedTags: map[string]string{
				"Success":              "success",
				"Operation":            "operation,omitempty",
				"Prompt":               "prompt,omitempty",
				"URL":                  "url,omitempty",
				"Response":             "response,omitempty",
				"ParsedResponse":       "parsed_response,omitempty",
				"MatchesSchema":        "matches_schema,omitempty",
				"ValidJSON":            "valid_json,omitempty",
				"ExtractedData":        "extracted_data,omitempty",
				"DataType":             "data_type,omitempty",
				"SchemaUsed":           "schema_used,omitempty",
				"ExecutedCommands":     "executed_commands,omitempty",
				"Message":              "message,omitempty",
				"Screenshots":          "screenshots,omitempty",
				"ExecutionLogs":        "execution_logs,omitempty",
				"ExecutionTimeSeconds": "execution_time_seconds",
				"Timestamp":            "timestamp",
				"Error":                "error,omitempty",
				"ErrorType":            "error_type,omitempty",
				"StackTrace":           "stack_trace,omitempty",
			},
		},
		{
			name:      "ExecutedCommand",
			structRef: schemas.ExecutedCommand{},
			expectedTags: map[string]string{
				"Command": "command",
				"Success": "success",
				"Result":  "result,omitempty",
				"Error":   "error,omitempty",
			},
		},
		{
			name:      "Screenshot",
			structRef: schemas.Screenshot{},
			expectedTags: map[string]string{
				"ID":          "id",
				"Type":        "type",
				"Description": "description",
				"Timestamp":   "timestamp",
				"Data":        "data",
				"PageTitle":   "page_title,omitempty",
				"URL":         "url,omitempty",
			},
		},
	}

	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			structType := reflect.TypeOf(tt.structRef)
			for fieldName, expectedTag := range tt.expectedTags {
				field, ok := structType.FieldByName(fieldName)
				if assert.True(t, ok, "field %s should exist on %s", fieldName, tt.name) {
					assert.Equal(t, expectedTag, field.Tag.Get("json"),
						"json tag mismatch on %s.%s", tt.name, fieldName)
				}
			}
			assert.Equal(t, len(tt.expectedTags), structType.NumField(),
				"every field of %s must be covered here", tt.name)
		})
	}
}
