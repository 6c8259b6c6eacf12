package llm

import "strings"

// ExtractText returns the usable text of resp, or "" if there is none.
//
// The flattened text wins when it is non-blank. Otherwise the text blocks of
// every message item are joined with newlines, in output order.
func ExtractText(resp *Response) string {
	if resp == nil {
		return ""
	}

	if resp.FlatText != nil {
		if t := strings.TrimSpace(*resp.FlatText); t != "" {
			return t
		}
	}

	var parts []string
	for _, item := range resp.Output {
		if item.Type != OutputTypeMessage {
			continue
		}
		for _, block := range item.Content {
			if block.Text != nil && *block.Text != "" {
				parts = append(parts, *block.Text)
			}
		}
	}

	return strings.TrimSpace(strings.Join(parts, "\n"))
}
