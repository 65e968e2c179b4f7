package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"prsentinel/internal/platform/config"
)

const errorSchemaRef = "#/components/schemas/ErrorResponse"

// serveDocJSON serves the swagger doc lifted to OAS 3.0 with the shared error
// responses filled in on every operation
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		normalize(spec, "/", config.New().Prefix("API_").MayString("DOCS_TITLE_SUFFIX", ""))

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

func normalize(spec map[string]any, server, titleSuffix string) {
	// swagger ui cannot render 3.1, and swag emits 2.0
	delete(spec, "swagger")
	if v, _ := spec["openapi"].(string); !strings.HasPrefix(v, "3.0") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": server}}
	}
	if info, ok := spec["info"].(map[string]any); ok && titleSuffix != "" {
		title, _ := info["title"].(string)
		info["title"] = strings.TrimSpace(title + " " + titleSuffix)
	}

	child(child(spec, "components"), "schemas")["ErrorResponse"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer"},
			"error":       map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}

	defaults := map[string]any{
		"400": errorResponse("Bad Request", 400, "features is required"),
		"500": errorResponse("Internal Server Error", 500, "panic recovered"),
	}
	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		ops, _ := p.(map[string]any)
		for _, op := range ops {
			node, ok := op.(map[string]any)
			if !ok {
				continue
			}
			resps := child(node, "responses")
			for code, r := range defaults {
				if _, exists := resps[code]; !exists {
					resps[code] = r
				}
			}
		}
	}
}

func errorResponse(desc string, status int, msg string) map[string]any {
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": errorSchemaRef},
				"example": map[string]any{
					"status_code": status,
					"status":      http.StatusText(status),
					"error":       msg,
				},
			},
		},
	}
}

// child returns m[key] as a map, creating it when missing
func child(m map[string]any, key string) map[string]any {
	c, ok := m[key].(map[string]any)
	if !ok {
		c = map[string]any{}
		m[key] = c
	}
	return c
}
