package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGemini answers every generateContent call with text.
func fakeGemini(t *testing.T, status int, text string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}
		if r.Header.Get("x-goog-api-key") != "k" || !strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent") {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !strings.Contains(req.Contents[0].Parts[0].Text, "intellectual-property") {
			http.Error(w, "bad prompt", http.StatusBadRequest)
			return
		}
		if status != http.StatusOK {
			http.Error(w, "boom", status)
			return
		}
		fmt.Fprintf(w, `{"candidates":[{"content":{"parts":[{"text":%q}]}}]}`, text)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGemini(url string) *Gemini {
	return NewGemini(Config{APIKey: "k", Model: "test-model", Endpoint: url, Timeout: 2 * time.Second, RPS: 100}, zerolog.Nop())
}

func TestClassify_NormalizesAnswer(t *testing.T) {
	for raw, want := range map[string]string{
		"family":                 "family",
		"  Criminal\n":           "criminal",
		"Intellectual-Property.": "intellectual-property",
		"maritime":               Default,
		"":                       Default,
	} {
		srv := fakeGemini(t, http.StatusOK, raw, nil)
		assert.Equal(t, want, newTestGemini(srv.URL).Classify(context.Background(), "my landlord kept my deposit"), raw)
	}
}

func TestClassify_FallsBackOnHTTPError(t *testing.T) {
	srv := fakeGemini(t, http.StatusInternalServerError, "", nil)
	assert.Equal(t, Default, newTestGemini(srv.URL).Classify(context.Background(), "x"))
}

func TestClassify_FallsBackOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	g := NewGemini(Config{APIKey: "k", Model: "m", Endpoint: srv.URL, Timeout: 50 * time.Millisecond}, zerolog.Nop())
	start := time.Now()
	assert.Equal(t, Default, g.Classify(context.Background(), "x"))
	assert.Less(t, time.Since(start), time.Second)
}

func TestClassify_NoAPIKeyMakesNoCall(t *testing.T) {
	var calls int32
	srv := fakeGemini(t, http.StatusOK, "tax", &calls)
	g := NewGemini(Config{Model: "test-model", Endpoint: srv.URL}, zerolog.Nop())
	assert.Equal(t, Default, g.Classify(context.Background(), "x"))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestClassify_CancelledContext(t *testing.T) {
	srv := fakeGemini(t, http.StatusOK, "tax", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, Default, newTestGemini(srv.URL).Classify(ctx, "x"))
}

func TestNormalize_AlwaysKnown(t *testing.T) {
	for _, c := range Categories {
		require.Equal(t, c, Normalize(strings.ToUpper(c)))
	}
}
