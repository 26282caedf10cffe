package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseJSON cleans and unmarshals a JSON object embedded in a model answer.
// It handles surrounding prose or markdown and, failing a plain decode,
// repairs common breakage such as single quotes or a missing closing brace.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	start := strings.IndexByte(response, '{')
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}
	jsonStr := response[start:]
	if end := strings.LastIndexByte(jsonStr, '}'); end != -1 {
		jsonStr = jsonStr[:end+1]
	}

	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err == nil {
		return result, nil
	}

	repaired, err := jsonrepair.JSONRepair(jsonStr)
	if err != nil {
		return zero, fmt.Errorf("failed to repair JSON: %w\nData: %s", err, jsonStr)
	}
	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, jsonStr)
	}

	return result, nil
}
