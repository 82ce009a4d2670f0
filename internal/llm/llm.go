// Package llm provides the generative fallback used when no task handler
// claims an utterance.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	logx "github.com/mobiusvibe/assistant/pkg/logger"
)

const (
	failureMessage     = "Error: Could not generate response."
	unavailableMessage = "Error: language model not available."
)

type Config struct {
	APIKey      string  `envconfig:"GEMINI_API_KEY"`
	BaseURL     string  `envconfig:"GEMINI_BASE_URL"`
	Model       string  `envconfig:"LLM_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"LLM_MAX_TOKENS" default:"1024"`
	Temperature float32 `envconfig:"LLM_TEMPERATURE" default:"0.7"`
}

// systemPrompt frames every fallback completion.
const systemPrompt = "You are a helpful personal assistant. Answer the user's " +
	"latest message concisely, using the prior conversation for context."

// Responder produces the conversational reply for non-actionable intents.
// Construction never fails: without a usable API key the responder degrades
// and every call returns a fixed error message instead of panicking.
type Responder struct {
	model     *gemini.ChatModel
	modelName string
	log       zerolog.Logger
}

func NewResponder(ctx context.Context, cfg Config) *Responder {
	r := &Responder{modelName: cfg.Model, log: logx.Component("llm")}

	if cfg.APIKey == "" {
		r.log.Warn().Msg("no api key set; generative fallback disabled")
		return r
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		r.log.Error().Err(err).Msg("error creating gemini client")
		return r
	}

	model, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &cfg.Temperature,
		MaxTokens:   &cfg.MaxTokens,
	})
	if err != nil {
		r.log.Error().Err(err).Str("model", cfg.Model).Msg("error creating chat model")
		return r
	}

	r.model = model
	r.log.Info().Str("model", cfg.Model).Msg("generative fallback ready")
	return r
}

// Available reports whether a chat model was constructed.
func (r *Responder) Available() bool { return r.model != nil }

// BuildPrompt renders prior turns plus the new utterance into the message
// list sent to the model. turns alternate user/assistant text pairs.
func BuildPrompt(turns [][2]string, utterance string) []*schema.Message {
	msgs := []*schema.Message{schema.SystemMessage(systemPrompt)}
	for _, t := range turns {
		msgs = append(msgs, schema.UserMessage(t[0]), schema.AssistantMessage(t[1], nil))
	}
	return append(msgs, schema.UserMessage(utterance))
}

// Generate produces one complete reply. It never returns an error; model
// failures collapse to a fixed message so the conversation loop stays alive.
func (r *Responder) Generate(ctx context.Context, turns [][2]string, utterance string) string {
	if r.model == nil {
		return unavailableMessage
	}

	out, err := r.model.Generate(ctx, BuildPrompt(turns, utterance))
	if err != nil {
		r.log.Error().Err(err).Str("model", r.modelName).Msg("generation failed")
		return failureMessage
	}
	reply := strings.TrimSpace(out.Content)
	if reply == "" {
		r.log.Warn().Str("model", r.modelName).Msg("model returned empty content")
		return failureMessage
	}
	return reply
}

// Stream starts a streamed reply. The returned Stream always works: when the
// model is unavailable or the call fails it carries a single error-message
// fragment.
func (r *Responder) Stream(ctx context.Context, turns [][2]string, utterance string) *Stream {
	if r.model == nil {
		return &Stream{pending: unavailableMessage}
	}

	reader, err := r.model.Stream(ctx, BuildPrompt(turns, utterance))
	if err != nil {
		r.log.Error().Err(err).Str("model", r.modelName).Msg("stream start failed")
		return &Stream{pending: fmt.Sprintf("%s (%v)", failureMessage, err)}
	}
	return &Stream{reader: reader}
}
