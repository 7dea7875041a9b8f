// Package classifier assigns a legal category to a free-text case description
// using Gemini. Classification is best-effort: every failure yields Default.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Default is returned whenever a real answer is unavailable.
const Default = "civil"

// Categories is the closed set of labels Classify may return.
var Categories = []string{
	"civil",
	"criminal",
	"corporate",
	"family",
	"property",
	"intellectual-property",
	"employment",
	"immigration",
	"tax",
	"personal-injury",
}

var known = func() map[string]bool {
	m := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		m[c] = true
	}
	return m
}()

const promptTemplate = `
You are a legal expert tasked with classifying legal cases based on their descriptions.
Given the following case description, classify it into the most appropriate legal category.
Choose exactly one category from this list: %s

Case description: %s

Respond with only the category name, no additional explanation.
`

// Config holds what the Gemini client needs. An empty APIKey disables remote calls.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string        // e.g. https://generativelanguage.googleapis.com
	Timeout  time.Duration // per call, including the rate-limit wait
	RPS      float64       // outbound calls per second
}

/*
Gemini wraps the generateContent REST call:

	POST {endpoint}/v1beta/models/{model}:generateContent
	Header: x-goog-api-key
*/
type Gemini struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

func NewGemini(cfg Config, log zerolog.Logger) *Gemini {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 5
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &Gemini{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), 1),
		log:     log,
	}
}

// Normalize maps a raw model answer to a known category, or Default.
func Normalize(raw string) string {
	c := strings.ToLower(strings.TrimSpace(raw))
	c = strings.Trim(c, ".\"'`*")
	if known[c] {
		return c
	}
	return Default
}

// Classify never fails.
func (g *Gemini) Classify(ctx context.Context, description string) string {
	if g.cfg.APIKey == "" {
		return Default
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		g.log.Warn().Err(err).Msg("classifier: rate limit wait failed")
		return Default
	}

	raw, err := g.generate(ctx, fmt.Sprintf(promptTemplate, strings.Join(Categories, ", "), description))
	if err != nil {
		g.log.Warn().Err(err).Msg("classifier: falling back to default category")
		return Default
	}

	category := Normalize(raw)
	if category == Default && strings.ToLower(strings.TrimSpace(raw)) != Default {
		g.log.Warn().Str("answer", raw).Msg("classifier: unrecognized category")
	}
	return category
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.Endpoint, g.cfg.Model)

	body, _ := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	res, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", fmt.Errorf("gemini error: %s | %s", res.Status, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
