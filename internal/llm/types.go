package llm

import (
	"context"
	"errors"
	"fmt"
)

// OutputTypeMessage marks an output item that carries assistant content.
const OutputTypeMessage = "message"

// Reasoning effort hints understood by reasoning models.
const (
	EffortMinimal = "minimal"
	EffortLow     = "low"
	EffortMedium  = "medium"
	EffortHigh    = "high"
)

// ResponseRequest is a single text-generation call.
type ResponseRequest struct {
	Model           string
	ReasoningEffort string // passed through, empty to omit
	Instructions    string // system instruction
	Input           string // user content
	MaxOutputTokens int    // 0 leaves the provider default
	JSONObject      bool   // ask for a JSON object response
}

func (r *ResponseRequest) Validate() error {
	if r.Model == "" {
		return errors.New("model is required")
	}
	if r.Input == "" {
		return errors.New("input is required")
	}
	if r.MaxOutputTokens < 0 {
		return errors.New("max_output_tokens must not be negative")
	}
	switch r.ReasoningEffort {
	case "", EffortMinimal, EffortLow, EffortMedium, EffortHigh:
	default:
		return fmt.Errorf("invalid reasoning effort %q", r.ReasoningEffort)
	}
	return nil
}

// ContentBlock is one piece of an output item. Text is nil for blocks that
// carry no text (refusals, images, ...).
type ContentBlock struct {
	Type string  `json:"type"`
	Text *string `json:"text,omitempty"`
}

// OutputItem is one entry of the provider's structured output.
type OutputItem struct {
	Type    string         `json:"type"`
	Role    string         `json:"role,omitempty"`
	Content []ContentBlock `json:"content,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response is what a provider returned.
//
// FlatText is the provider's own flattened text, nil when it could not
// produce one. Output is the raw structured output and is always kept so
// text can be recovered from it.
type Response struct {
	ID       string       `json:"id,omitempty"`
	Model    string       `json:"model,omitempty"`
	Status   string       `json:"status,omitempty"`
	FlatText *string      `json:"flat_text,omitempty"`
	Output   []OutputItem `json:"output"`
	Usage    *Usage       `json:"usage,omitempty"`
}

// Provider is an upstream text-generation backend.
type Provider interface {
	CreateResponse(ctx context.Context, req *ResponseRequest) (*Response, error)
}
