package docs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOpenAPIDescribesBasketRoutes(t *testing.T) {
	var doc struct {
		OpenAPI string                    `yaml:"openapi"`
		Paths   map[string]map[string]any `yaml:"paths"`
	}
	require.NoError(t, yaml.Unmarshal(OpenAPI, &doc))
	require.Equal(t, "3.0.3", doc.OpenAPI)

	want := map[string][]string{
		"/basket":                   {"get", "delete"},
		"/basket/items":             {"post"},
		"/basket/items/bulk":        {"post"},
		"/basket/items/{productId}": {"delete"},
		"/basket/total/without-vat": {"get"},
		"/basket/total/with-vat":    {"get"},
		"/basket/discount-code":     {"post"},
		"/basket/shipping":          {"post"},
	}
	for path, methods := range want {
		require.Contains(t, doc.Paths, path)
		for _, m := range methods {
			require.Contains(t, doc.Paths[path], m, "%s %s", m, path)
		}
	}
}

func TestHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler(rr, httptest.NewRequest(http.MethodGet, "/swagger/openapi.yaml", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/yaml", rr.Header().Get("Content-Type"))
	require.Equal(t, OpenAPI, rr.Body.Bytes())
}

func TestTotalResponseIsMoney(t *testing.T) {
	var doc struct {
		Components struct {
			Responses map[string]struct {
				Content map[string]struct {
					Schema map[string]any `yaml:"schema"`
				} `yaml:"content"`
			} `yaml:"responses"`
		} `yaml:"components"`
	}
	require.NoError(t, yaml.Unmarshal(OpenAPI, &doc))
	total, ok := doc.Components.Responses["Total"]
	require.True(t, ok)
	require.Equal(t, "#/components/schemas/Money", total.Content["application/json"].Schema["$ref"])
}
