package agent

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/sushgandhi/browser-use-mcp/pkg/llm"
)

// estimateUsage approximates token counts for a single completion call.
// Some OpenAI-compatible gateways omit usage from their responses, so
// the navigator falls back to counting with the model's encoding.
func estimateUsage(model string, messages []*llm.Message, reply *llm.Message) llm.Usage {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		if enc, err = tiktoken.GetEncoding("cl100k_base"); err != nil {
			return llm.Usage{}
		}
	}

	var usage llm.Usage
	for _, m := range messages {
		usage.PromptTokens += len(enc.Encode(m.Content, nil, nil))
	}
	if reply != nil {
		usage.CompletionTokens = len(enc.Encode(reply.Content, nil, nil))
	}
	return usage
}
