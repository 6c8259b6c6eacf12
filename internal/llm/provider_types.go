package llm

// Request shape we send to upstream (OpenAI Responses API).
type providerResponsesRequest struct {
	Model           string              `json:"model"`
	Instructions    string              `json:"instructions,omitempty"`
	Input           string              `json:"input"`
	MaxOutputTokens int                 `json:"max_output_tokens,omitempty"`
	Reasoning       *providerReasoning  `json:"reasoning,omitempty"`
	Text            *providerTextConfig `json:"text,omitempty"`
}

type providerReasoning struct {
	Effort string `json:"effort"`
}

type providerTextConfig struct {
	Format providerTextFormat `json:"format"`
}

type providerTextFormat struct {
	Type string `json:"type"` // "text" | "json_object"
}

type providerContentBlock struct {
	Type    string  `json:"type"`
	Text    *string `json:"text,omitempty"`
	Refusal string  `json:"refusal,omitempty"`
}

type providerOutputItem struct {
	ID      string                 `json:"id,omitempty"`
	Type    string                 `json:"type"`
	Role    string                 `json:"role,omitempty"`
	Status  string                 `json:"status,omitempty"`
	Content []providerContentBlock `json:"content,omitempty"`
}

type providerUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type providerResponse struct {
	ID        string               `json:"id"`
	Object    string               `json:"object"`
	CreatedAt int64                `json:"created_at"`
	Model     string               `json:"model"`
	Status    string               `json:"status"`
	Output    []providerOutputItem `json:"output"`
	// Not part of the raw API; some compatible gateways add it.
	OutputText        *string        `json:"output_text,omitempty"`
	Usage             *providerUsage `json:"usage,omitempty"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details,omitempty"`
}

type providerErrorResponse struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}
