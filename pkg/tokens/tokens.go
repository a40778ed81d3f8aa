package tokens

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Count returns how many tokens text encodes to under the model's encoding.
func Count(text, model string) (int, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return 0, fmt.Errorf("failed to get encoding for model %s: %w", model, err)
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Truncate cuts text down to at most limit tokens. Text already within the
// limit is returned unchanged.
func Truncate(text, model string, limit int) (string, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return "", fmt.Errorf("failed to get encoding for model %s: %w", model, err)
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) <= limit {
		return text, nil
	}
	return enc.Decode(ids[:limit]), nil
}
