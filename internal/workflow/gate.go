package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/geethika608/youtube-short-creator/internal/interpret"
)

// approvalWords is the full approval vocabulary. Anything else is a request
// for changes.
var approvalWords = map[string]struct{}{
	"yes":     {},
	"approve": {},
	"good":    {},
	"perfect": {},
	"ok":      {},
	"okay":    {},
}

// Verdict is the reading of one checkpoint reply.
type Verdict struct {
	Approved bool
	Feedback string
}

// Extractor restates a free-text reply as structured JSON, typically through
// a text model.
type Extractor interface {
	Extract(ctx context.Context, reply string) (string, error)
}

// Gate decides whether a checkpoint reply approves the pending artifact.
type Gate struct {
	extractor Extractor
	logger    *slog.Logger
}

// NewGate returns a Gate. extractor may be nil.
func NewGate(extractor Extractor, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{extractor: extractor, logger: logger}
}

// Evaluate reads reply. ok is false when the reply carries no usable text;
// the caller should ask again without regenerating anything.
//
// A reply approves when its canonical user_input is in the approval
// vocabulary or it carries "approved": true. Otherwise it is a rejection and
// Feedback holds changes_requested, user_input, or the raw reply.
func (g *Gate) Evaluate(ctx context.Context, reply string) (verdict Verdict, ok bool) {
	fields := interpret.Interpret(reply, "user_input")
	if fields == nil {
		return Verdict{}, false
	}

	if g.extractor != nil {
		fields = g.extract(ctx, reply, fields)
	}

	input := fields.String("user_input")
	flag, _ := fields.Bool("approved")
	if _, match := approvalWords[Canonical(input)]; match || flag {
		return Verdict{Approved: true}, true
	}

	feedback := strings.TrimSpace(fields.String("changes_requested"))
	if feedback == "" {
		feedback = strings.TrimSpace(input)
	}
	if feedback == "" {
		feedback = strings.TrimSpace(reply)
	}
	return Verdict{Approved: false, Feedback: feedback}, true
}

func (g *Gate) extract(ctx context.Context, reply string, fallback interpret.Fields) interpret.Fields {
	raw, err := g.extractor.Extract(ctx, reply)
	if err != nil {
		g.logger.Warn("reply extraction failed, reading reply directly", "error", err)
		return fallback
	}

	extracted := interpret.Interpret(raw, "user_input")
	if extracted == nil || interpret.Degraded(extracted, "user_input") {
		g.logger.Warn("reply extraction returned no verdict, reading reply directly")
		return fallback
	}
	if extracted.String("user_input") == "" {
		extracted["user_input"] = reply
	}
	return extracted
}

// Canonical lowercases s and trims whitespace and trailing punctuation.
func Canonical(s string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(s)), " \t\r\n.!")
}
