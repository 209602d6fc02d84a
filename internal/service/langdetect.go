package service

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// minChunkLen is the minimum chunk length worth classifying; shorter
// chunks produce noisy votes.
const minChunkLen = 10

// DetectLanguage classifies a song's language by majority vote over
// chunks of three lyric lines, returning the ISO 639-1 code or
// "unknown" when nothing classifies reliably.
func DetectLanguage(lines []string) string {
	votes := make(map[string]int)
	for i := 0; i < len(lines); i += 3 {
		end := i + 3
		if end > len(lines) {
			end = len(lines)
		}
		chunk := strings.TrimSpace(strings.Join(lines[i:end], " "))
		if len(chunk) < minChunkLen {
			continue
		}
		info := whatlanggo.Detect(chunk)
		code := info.Lang.Iso6391()
		if code == "" || !info.IsReliable() {
			continue
		}
		votes[code]++
	}

	best, bestCount := "unknown", 0
	for code, count := range votes {
		if count > bestCount {
			best, bestCount = code, count
		}
	}
	return best
}
