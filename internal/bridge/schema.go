// File: internal/bridge/schema.go
package bridge

import (
	encodingjson "encoding/json"
	"fmt"
	"sort"
	"strings"

	json "github.com/json-iterator/go"
	"github.com/xeipuuv/gojsonschema"
)

// Extraction shape descriptors. A shape mirrors the desired output: objects
// and arrays with primitive type names ("string", "number", "boolean") at the
// leaves. Callers may supply their own; these are the auto-generated defaults.
var (
	amazonProductShape = encodingjson.RawMessage(`{
  "products": [
    {
      "title": "string",
      "price": "string",
      "rating": "number",
      "reviews_count": "string",
      "availability": "string",
      "image_url": "string"
    }
  ]
}`)

	productShape = encodingjson.RawMessage(`{
  "products": [
    {
      "name": "string",
      "price": "string",
      "description": "string"
    }
  ]
}`)

	searchResultShape = encodingjson.RawMessage(`{
  "results": [
    {
      "title": "string",
      "url": "string",
      "description": "string"
    }
  ]
}`)

	articleShape = encodingjson.RawMessage(`{
  "articles": [
    {
      "headline": "string",
      "summary": "string",
      "author": "string",
      "date": "string",
      "url": "string"
    }
  ]
}`)

	formShape = encodingjson.RawMessage(`{
  "form_data": {
    "fields": [
      {
        "name": "string",
        "type": "string",
        "value": "string",
        "required": "boolean"
      }
    ]
  }
}`)

	postShape = encodingjson.RawMessage(`{
  "posts": [
    {
      "content": "string",
      "author": "string",
      "timestamp": "string",
      "likes": "number",
      "comments": "number"
    }
  ]
}`)

	genericShape = encodingjson.RawMessage(`{
  "data": [
    {
      "text": "string",
      "value": "string"
    }
  ]
}`)
)

// Keyword sets for schema inference. Matching is first-hit in declaration
// order; when several sets match, the earlier one wins. This is a best-effort
// default, not an exhaustive classifier.
var (
	productKeywords = []string{"product", "price", "buy", "shop", "cart"}
	searchKeywords  = []string{"search", "results", "find", "list"}
	articleKeywords = []string{"news", "article", "headline", "story"}
	formKeywords    = []string{"form", "input", "field", "submit"}
	postKeywords    = []string{"post", "tweet", "comment", "like", "share"}
)

// GenerateSchema infers an extraction shape from the prompt text and target
// URL. It always returns a usable shape; the generic key/value list is the
// fallback.
func GenerateSchema(prompt, url string) encodingjson.RawMessage {
	promptLower := strings.ToLower(prompt)
	urlLower := strings.ToLower(url)

	switch {
	case containsAny(promptLower, productKeywords):
		if strings.Contains(urlLower, "amazon") {
			return amazonProductShape
		}
		return productShape
	case containsAny(promptLower, searchKeywords):
		return searchResultShape
	case containsAny(promptLower, articleKeywords):
		return articleShape
	case containsAny(promptLower, formKeywords):
		return formShape
	case containsAny(promptLower, postKeywords):
		return postShape
	default:
		return genericShape
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// screenshotKeywords mark prompts that ask for a captured image alongside the
// automation result.
var screenshotKeywords = []string{
	"screenshot", "capture", "take a picture", "snap", "image",
	"screenshot of", "capture the", "take image",
}

// promptRequestsScreenshot reports whether the prompt asks for screenshots.
func promptRequestsScreenshot(prompt string) bool {
	return containsAny(strings.ToLower(prompt), screenshotKeywords)
}

// ValidateAgainstShape checks a structured payload against a shape
// descriptor. The shape is compiled to a JSON Schema and evaluated with
// gojsonschema. Returns the verdict plus the validator's first complaint for
// logging.
func ValidateAgainstShape(shape, doc encodingjson.RawMessage) (bool, string, error) {
	schemaMap, err := CompileShape(shape)
	if err != nil {
		return false, "", err
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schemaMap),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return false, "", fmt.Errorf("schema validation failed to run: %w", err)
	}
	if result.Valid() {
		return true, "", nil
	}
	detail := ""
	if errs := result.Errors(); len(errs) > 0 {
		detail = errs[0].String()
	}
	return false, detail, nil
}

// CompileShape converts a shape descriptor into a draft JSON Schema document.
func CompileShape(shape encodingjson.RawMessage) (map[string]any, error) {
	var tree any
	if err := json.Unmarshal(shape, &tree); err != nil {
		return nil, fmt.Errorf("invalid shape descriptor: %w", err)
	}
	compiled, err := compileNode(tree)
	if err != nil {
		return nil, err
	}
	root, ok := compiled.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("shape descriptor root must be an object")
	}
	return root, nil
}

func compileNode(node any) (any, error) {
	switch v := node.(type) {
	case string:
		switch v {
		case "string", "number", "boolean", "integer":
			return map[string]any{"type": v}, nil
		default:
			// Unknown leaf names degrade to string.
			return map[string]any{"type": "string"}, nil
		}
	case map[string]any:
		properties := make(map[string]any, len(v))
		required := make([]string, 0, len(v))
		for key, child := range v {
			compiled, err := compileNode(child)
			if err != nil {
				return nil, err
			}
			properties[key] = compiled
			required = append(required, key)
		}
		sort.Strings(required)
		out := map[string]any{
			"type":       "object",
			"properties": properties,
		}
		if len(required) > 0 {
			out["required"] = required
		}
		return out, nil
	case []any:
		items := map[string]any{}
		if len(v) > 0 {
			compiled, err := compileNode(v[0])
			if err != nil {
				return nil, err
			}
			if m, ok := compiled.(map[string]any); ok {
				items = m
			}
		}
		return map[string]any{"type": "array", "items": items}, nil
	default:
		return nil, fmt.Errorf("unsupported shape node of type %T", node)
	}
}
