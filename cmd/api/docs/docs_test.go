package docs

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwaggerDocument(t *testing.T) {
	var doc struct {
		BasePath    string                                `json:"basePath"`
		Paths       map[string]map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	assert.Equal(t, "/api", doc.BasePath)
	for route, method := range map[string]string{
		"/auth/login":            "post",
		"/sessions/{id}":         "delete",
		"/quiz/generate":         "post",
		"/ai/generate-questions": "post",
	} {
		assert.Contains(t, doc.Paths, route)
		assert.Contains(t, doc.Paths[route], method, route)
	}
	assert.Contains(t, doc.Definitions, "dto.ErrorResponse")
	assert.Contains(t, doc.Definitions, "dto.SuccessResponse")
}
