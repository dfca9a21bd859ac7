package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisislens/analyzer/internal/logging"
	"github.com/crisislens/analyzer/internal/stage"
)

func translatorServer(t *testing.T, translated string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			json.NewEncoder(w).Encode(map[string]string{"model_version": "nmt-1"})
		case "/translate":
			var req translateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "en", req.Target)
			json.NewEncoder(w).Encode(translateResponse{TranslatedText: translated})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestClient_Translate(t *testing.T) {
	server := translatorServer(t, "Heavy rain has caused flooding in Mumbai")
	defer server.Close()

	c := NewClient(server.URL, 0, logging.NewNop())
	require.NoError(t, c.Probe(context.Background()))

	out, err := c.Analyze(context.Background(), stage.Input{
		RawText:        "भारी बारिश के कारण मुंबई में बाढ़ आ गई है",
		SourceLanguage: "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Heavy rain has caused flooding in Mumbai", out.Translated)
	assert.False(t, out.Degraded)
	assert.InDelta(t, 1.0, out.Confidence, 1e-9)
}

func TestClient_EmptyTranslationIsError(t *testing.T) {
	server := translatorServer(t, "   ")
	defer server.Close()

	c := NewClient(server.URL, 0, logging.NewNop())
	_, err := c.Analyze(context.Background(), stage.Input{RawText: "बाढ़", SourceLanguage: "hi"})
	assert.Error(t, err)
}

func TestClient_ProbeFailsWithoutSidecar(t *testing.T) {
	c := NewClient("", 0, logging.NewNop())
	err := c.Probe(context.Background())
	assert.ErrorIs(t, err, stage.ErrUnavailable)
}

func TestClient_DownSidecarWrapsErrUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	c := NewClient(server.URL, 0, logging.NewNop())
	_, err := c.Analyze(context.Background(), stage.Input{RawText: "x", SourceLanguage: "hi"})
	assert.ErrorIs(t, err, stage.ErrUnavailable)
}

func TestIdentity(t *testing.T) {
	out := Identity("already english")
	assert.Equal(t, "already english", out.Translated)
	assert.Equal(t, ImplementationIdentity, out.ImplementationID)
	assert.False(t, out.Degraded)
}
