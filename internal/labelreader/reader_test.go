package labelreader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSON("Aqui está:\n```json\n{\"a\":1}\n```\nfim"))
	assert.Equal(t, `{"a":1}`, ExtractJSON("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":{"b":2}}`, ExtractJSON(`resultado: {"a":{"b":2}} ok`))
	assert.Equal(t, "sem json", ExtractJSON("sem json"))
}

func TestParseReading_KeepsRawUnitFields(t *testing.T) {
	r := ParseReading(`{"resident_name":"Maria Silva","block":"B01","apartment":"","unit":"A-101","carrier":"Correios"}`)
	require.NotNil(t, r.Suggestion)
	assert.Equal(t, "B01", r.Suggestion.Block.String())
	assert.Equal(t, "", r.Suggestion.Apartment.String())
	assert.Equal(t, "A-101", r.Suggestion.Unit.String())
	assert.Equal(t, "Correios", r.Suggestion.Carrier.String())
}

func TestParseReading_NumericFieldsAndRegions(t *testing.T) {
	r := ParseReading(`{"apartment":53,"block":"a","weight_kg":"0,5","sensitive_regions":[{"label":"cpf","x":10,"y":20,"width":300,"height":40}]}`)
	require.NotNil(t, r.Suggestion)
	assert.Equal(t, "53", r.Suggestion.Apartment.String())
	assert.Equal(t, "a", r.Suggestion.Block.String())
	assert.InDelta(t, 0.5, r.Suggestion.WeightKg.Float(), 1e-9)
	require.Len(t, r.Suggestion.SensitiveRegions, 1)
	assert.Equal(t, "cpf", r.Suggestion.SensitiveRegions[0].Label)
}

func TestParseReading_MalformedRegionsKeepSuggestion(t *testing.T) {
	r := ParseReading(`{"resident_name":"Maria Santos","apartment":"101","sensitive_regions":[` +
		`{"label":"cpf","x":"100","y":20,"width":"300","height":40},` +
		`"lixo",` +
		`{"label":"phone","x":{"a":1},"y":1,"width":2,"height":3}]}`)
	require.NotNil(t, r.Suggestion)
	assert.Equal(t, "Maria Santos", r.Suggestion.ResidentName.String())
	assert.Equal(t, "101", r.Suggestion.Apartment.String())

	require.Len(t, r.Suggestion.SensitiveRegions, 2)
	assert.Equal(t, "cpf", r.Suggestion.SensitiveRegions[0].Label)
	assert.Equal(t, 100.0, r.Suggestion.SensitiveRegions[0].X)
	assert.Equal(t, 300.0, r.Suggestion.SensitiveRegions[0].Width)
	assert.Equal(t, 0.0, r.Suggestion.SensitiveRegions[1].X)

	r = ParseReading(`{"resident_name":"Maria Santos","sensitive_regions":"nenhuma"}`)
	require.NotNil(t, r.Suggestion)
	assert.Empty(t, r.Suggestion.SensitiveRegions)
}

func TestParseReading_Unparseable(t *testing.T) {
	r := ParseReading("não consegui ler a etiqueta")
	assert.Nil(t, r.Suggestion)
	assert.Equal(t, "não consegui ler a etiqueta", r.RawText)
}

func gatewayServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.Len(t, req.Messages, 2)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"nope"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
}

func TestGatewayReader_OK(t *testing.T) {
	srv := gatewayServer(t, http.StatusOK, "```json\n{\"resident_name\":\"João\",\"unit\":\"A-53\"}\n```")
	defer srv.Close()

	r, err := NewGatewayReader(srv.URL, "test-key", "").ReadLabel(context.Background(), []byte{0xff, 0xd8})
	require.NoError(t, err)
	require.NotNil(t, r.Suggestion)
	assert.Equal(t, "A-53", r.Suggestion.Unit.String())
	assert.Equal(t, "João", r.Suggestion.ResidentName.String())
	assert.True(t, strings.Contains(r.RawText, "João"))
}

func TestGatewayReader_Errors(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusPaymentRequired, ErrCreditsExhausted},
	}
	for _, tc := range cases {
		srv := gatewayServer(t, tc.status, "")
		_, err := NewGatewayReader(srv.URL, "test-key", "").ReadLabel(context.Background(), []byte("x"))
		assert.ErrorIs(t, err, tc.want)
		srv.Close()
	}

	srv := gatewayServer(t, http.StatusInternalServerError, "")
	defer srv.Close()
	_, err := NewGatewayReader(srv.URL, "test-key", "").ReadLabel(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestGatewayReader_UnparseableIsNotAnError(t *testing.T) {
	srv := gatewayServer(t, http.StatusOK, "imagem borrada")
	defer srv.Close()

	r, err := NewGatewayReader(srv.URL, "test-key", "").ReadLabel(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Nil(t, r.Suggestion)
	assert.Equal(t, "imagem borrada", r.RawText)
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	r, err := New(context.Background(), Config{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &GatewayReader{}, r)

	_, err = New(context.Background(), Config{APIKey: "k", Provider: "openai"})
	assert.Error(t, err)

	assert.Equal(t, "gemini-2.5-flash", geminiModelName("google/gemini-2.5-flash"))
}
