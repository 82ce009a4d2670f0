// Package search queries the DuckDuckGo Instant Answer API.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

// ErrDecode indicates the API responded but the payload was not usable.
var ErrDecode = errors.New("search response decode failed")

type Config struct {
	BaseURL        string `envconfig:"SEARCH_BASE_URL" default:"https://api.duckduckgo.com"`
	TimeoutSeconds int    `envconfig:"SEARCH_TIMEOUT_SECONDS" default:"10"`
	UserAgent      string `envconfig:"SEARCH_USER_AGENT" default:"MobiusVibeAssistant/1.0"`
}

// RelatedTopic is one snippet from the instant answer's related topics.
type RelatedTopic struct {
	Text string `json:"Text"`
}

// InstantAnswer is the subset of the Instant Answer payload the assistant
// consumes. All fields are optional on the wire.
type InstantAnswer struct {
	AbstractText     string         `json:"AbstractText"`
	AbstractSource   string         `json:"AbstractSource"`
	AbstractURL      string         `json:"AbstractURL"`
	Definition       string         `json:"Definition"`
	DefinitionSource string         `json:"DefinitionSource"`
	DefinitionURL    string         `json:"DefinitionURL"`
	Answer           string         `json:"Answer"`
	RelatedTopics    []RelatedTopic `json:"RelatedTopics"`
}

type Client struct {
	base string
	ua   string
	http *http.Client
	log  zerolog.Logger
}

func New(cfg Config) *Client {
	return &Client{
		base: cfg.BaseURL,
		ua:   cfg.UserAgent,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:  logx.Component("search"),
	}
}

// InstantAnswerFor issues one GET for the query. Transport failures come back
// as-is; malformed payloads come back wrapped in ErrDecode so callers can
// report the two distinctly.
func (c *Client) InstantAnswerFor(ctx context.Context, query string) (*InstantAnswer, error) {
	endpoint := fmt.Sprintf("%s/?q=%s&format=json&pretty=0&no_html=1&skip_disambig=1",
		c.base, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("User-Agent", c.ua)

	c.log.Debug().Str("query", query).Msg("querying instant answer api")
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("query", query).Msg("search request failed")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service returned HTTP %d", resp.StatusCode)
	}

	var answer InstantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		c.log.Error().Err(err).Str("query", query).Msg("failed to decode search response")
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &answer, nil
}

// SearchURL builds the public search page URL used in the "no direct answer"
// fallback message.
func SearchURL(query string) string {
	return "https://duckduckgo.com/?q=" + url.QueryEscape(query)
}
