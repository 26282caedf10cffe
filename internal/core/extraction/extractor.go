package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agenthands/stargraph/internal/core/common"
	"github.com/agenthands/stargraph/internal/core/model"
)

// AnswerExtractor pulls the predicted entity name out of a free-form answer.
type AnswerExtractor struct {
	pattern *regexp.Regexp
}

func NewAnswerExtractor(pattern string) (*AnswerExtractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid answer pattern %q: %w", pattern, err)
	}
	return &AnswerExtractor{pattern: re}, nil
}

// Extract returns the first entity matching the pattern, or "" when the
// answer names none. A JSON answer is unwrapped first so that keys and
// other fields cannot produce a false match.
func (e *AnswerExtractor) Extract(answer string) string {
	text := answer
	if strings.Contains(answer, "{") {
		if structured, err := common.ParseJSON[model.StructuredAnswer](answer); err == nil {
			switch {
			case structured.Entity != "":
				text = structured.Entity
			case structured.Answer != "":
				text = structured.Answer
			}
		}
	}
	return e.pattern.FindString(text)
}
