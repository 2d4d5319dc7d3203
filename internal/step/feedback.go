package step

import (
	"context"

	"github.com/geethika608/youtube-short-creator/internal/llm"
)

// FeedbackExtractor asks the text model to restate a checkpoint reply as
// {"user_input", "approved", "changes_requested"} JSON.
type FeedbackExtractor struct {
	LLM llm.Generator
}

// Extract returns the model's raw answer for reply.
func (f FeedbackExtractor) Extract(ctx context.Context, reply string) (string, error) {
	return f.LLM.Generate(ctx, llm.Request{
		Step:   "feedback",
		System: feedbackInstruction,
		Prompt: "Reply: " + reply,
	})
}
