package analyze

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter reports how many model tokens a string costs.
type TokenCounter func(text string) int

// NewTokenCounter returns a counter backed by the cl100k_base encoding.
// When the encoding cannot be loaded (offline hosts fetching the vocabulary
// for the first time), it falls back to a bytes-per-token approximation so
// chunking and prompt budgeting still work.
func NewTokenCounter(logger *slog.Logger) TokenCounter {
	if logger == nil {
		logger = slog.Default()
	}
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("cl100k_base encoding unavailable, using approximate token counts", "err", err)
		return ApproximateTokenCount
	}
	return func(text string) int {
		return len(encoding.Encode(text, nil, nil))
	}
}

// ApproximateTokenCount estimates tokens as bytes/4, the usual rule of
// thumb for English text.
func ApproximateTokenCount(text string) int {
	return (len(text) + 3) / 4
}
