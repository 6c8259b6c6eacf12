package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	maxRequestSize  = 1 * 1024 * 1024 // 1MB total JSON payload
	maxResponseSize = 4 * 1024 * 1024 // 4MB upstream body
	maxInputSize    = 256 * 1024      // 256KB user input
)

const (
	responsesPath   = "/v1/responses"
	jsonObjectType  = "json_object"
	errorBodyPrefix = 200
)

func (c *client) CreateResponse(parentCtx context.Context, req *ResponseRequest) (*Response, error) {
	start := time.Now()

	if req == nil {
		return nil, fmt.Errorf("llmclient: request is nil")
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("llmclient: invalid request: %w", err)
	}
	if len(req.Input) > maxInputSize {
		return nil, fmt.Errorf("llmclient: input too large (%d bytes, max %d)", len(req.Input), maxInputSize)
	}

	c.logger.Debug("llm request starting",
		zap.String("model", req.Model),
		zap.String("reasoning_effort", req.ReasoningEffort),
		zap.Int("max_output_tokens", req.MaxOutputTokens),
	)

	ctx, cancel := context.WithTimeout(parentCtx, c.cfg.UpstreamTimeout)
	defer cancel()

	bodyBytes, err := json.Marshal(toProviderRequest(req))
	if err != nil {
		return nil, fmt.Errorf("llmclient: marshal request: %w", err)
	}
	if len(bodyBytes) > maxRequestSize {
		return nil, fmt.Errorf("llmclient: request too large (%d bytes, max %d)", len(bodyBytes), maxRequestSize)
	}

	url := c.cfg.BaseURL + responsesPath

	// doOnce builds a fresh *http.Request for each attempt
	doOnce := func(ctx context.Context, body []byte) (*http.Response, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("llmclient: build HTTP request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Accept", "application/json")
		return c.httpClient.Do(httpReq)
	}

	resp, err := c.doWithRetry(ctx, bodyBytes, doOnce)
	if err != nil {
		c.logger.Error("llm request failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("llmclient: read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(resp.StatusCode, body)
	}

	var pResp providerResponse
	if err := json.Unmarshal(body, &pResp); err != nil {
		return nil, fmt.Errorf("llmclient: decode upstream response: %w", err)
	}

	out := fromProviderResponse(&pResp)

	fields := []zap.Field{
		zap.String("model", out.Model),
		zap.String("status", out.Status),
		zap.Int("output_items", len(out.Output)),
		zap.Duration("duration", time.Since(start)),
	}
	if out.Usage != nil {
		fields = append(fields,
			zap.Int("input_tokens", out.Usage.InputTokens),
			zap.Int("output_tokens", out.Usage.OutputTokens),
		)
	}
	if pResp.IncompleteDetails != nil {
		fields = append(fields, zap.String("incomplete_reason", pResp.IncompleteDetails.Reason))
	}
	c.logger.Info("llm request completed", fields...)

	return out, nil
}

// statusError turns a non-2xx upstream reply into an error, preferring the
// provider's structured error message.
func (c *client) statusError(status int, body []byte) error {
	var perr providerErrorResponse
	if err := json.Unmarshal(body, &perr); err == nil && perr.Error.Message != "" {
		c.logger.Error("llm provider error",
			zap.Int("status", status),
			zap.String("error_type", perr.Error.Type),
			zap.String("error_message", perr.Error.Message),
		)
		return fmt.Errorf("llmclient: upstream %d: %s (%s)", status, perr.Error.Message, perr.Error.Type)
	}

	c.logger.Error("llm upstream error",
		zap.Int("status", status),
		zap.String("body", truncate(string(body), errorBodyPrefix)),
	)
	return fmt.Errorf("llmclient: upstream %d: %s", status, truncate(string(body), errorBodyPrefix))
}

func toProviderRequest(req *ResponseRequest) providerResponsesRequest {
	pReq := providerResponsesRequest{
		Model:           req.Model,
		Instructions:    req.Instructions,
		Input:           req.Input,
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.ReasoningEffort != "" {
		pReq.Reasoning = &providerReasoning{Effort: req.ReasoningEffort}
	}
	if req.JSONObject {
		pReq.Text = &providerTextConfig{Format: providerTextFormat{Type: jsonObjectType}}
	}
	return pReq
}

func fromProviderResponse(p *providerResponse) *Response {
	out := &Response{
		ID:       p.ID,
		Model:    p.Model,
		Status:   p.Status,
		FlatText: p.OutputText,
		Output:   make([]OutputItem, 0, len(p.Output)),
	}

	for _, item := range p.Output {
		oi := OutputItem{
			Type:    item.Type,
			Role:    item.Role,
			Content: make([]ContentBlock, 0, len(item.Content)),
		}
		for _, block := range item.Content {
			oi.Content = append(oi.Content, ContentBlock{Type: block.Type, Text: block.Text})
		}
		out.Output = append(out.Output, oi)
	}

	if p.Usage != nil {
		out.Usage = &Usage{
			InputTokens:  p.Usage.InputTokens,
			OutputTokens: p.Usage.OutputTokens,
			TotalTokens:  p.Usage.TotalTokens,
		}
	}

	return out
}

// truncate limits string length for logging
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
