package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

// sdkProvider calls the Responses API through the official SDK.
type sdkProvider struct {
	client  openai.Client
	timeout time.Duration
	logger  *zap.Logger
}

func newSDKProvider(cfg Config, logger *zap.Logger) *sdkProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL + "/v1/"),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &sdkProvider{
		client:  openai.NewClient(opts...),
		timeout: cfg.UpstreamTimeout,
		logger:  logger.Named("openai"),
	}
}

func (p *sdkProvider) CreateResponse(parentCtx context.Context, req *ResponseRequest) (*Response, error) {
	start := time.Now()

	if req == nil {
		return nil, fmt.Errorf("openai: request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("openai: invalid request: %w", err)
	}

	ctx, cancel := context.WithTimeout(parentCtx, p.timeout)
	defer cancel()

	params := responses.ResponseNewParams{
		Model: req.Model,
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(req.Input)},
	}
	if req.Instructions != "" {
		params.Instructions = openai.String(req.Instructions)
	}
	if req.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxOutputTokens))
	}
	if req.ReasoningEffort != "" {
		params.Reasoning = shared.ReasoningParam{Effort: shared.ReasoningEffort(req.ReasoningEffort)}
	}
	if req.JSONObject {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
		}
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		fields := []zap.Field{
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			fields = append(fields, zap.Int("status", apiErr.StatusCode))
		}
		p.logger.Error("llm request failed", fields...)
		return nil, fmt.Errorf("openai: create response: %w", err)
	}

	out := fromSDKResponse(resp)

	p.logger.Info("llm request completed",
		zap.String("model", out.Model),
		zap.String("status", out.Status),
		zap.Int("output_items", len(out.Output)),
		zap.Int("input_tokens", out.Usage.InputTokens),
		zap.Int("output_tokens", out.Usage.OutputTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}

func fromSDKResponse(resp *responses.Response) *Response {
	flat := resp.OutputText()

	out := &Response{
		ID:       resp.ID,
		Model:    string(resp.Model),
		Status:   string(resp.Status),
		FlatText: &flat,
		Output:   make([]OutputItem, 0, len(resp.Output)),
		Usage: &Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}

	for _, item := range resp.Output {
		oi := OutputItem{Type: item.Type}
		for _, block := range item.Content {
			cb := ContentBlock{Type: block.Type}
			if block.Text != "" {
				text := block.Text
				cb.Text = &text
			}
			oi.Content = append(oi.Content, cb)
		}
		out.Output = append(out.Output, oi)
	}

	return out
}
