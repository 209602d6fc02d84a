package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mira/lyrichase/internal/domain"
)

// ChallengeStore is the persistence surface the synthesizer needs.
type ChallengeStore interface {
	ExistsByRange(ctx context.Context, songID string, start, end int) (bool, error)
	Create(ctx context.Context, challenge *domain.Challenge) error
}

// Synthesizer derives guessable line-range challenges from a song's lyrics.
type Synthesizer struct {
	challenges ChallengeStore
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(challenges ChallengeStore) *Synthesizer {
	return &Synthesizer{challenges: challenges}
}

// minSynthLines is the smallest lyric count a challenge can be cut from.
const minSynthLines = 6

// scoredRange is a candidate snippet with its distinctiveness score.
type scoredRange struct {
	score float64
	start int // first line number, inclusive
	end   int // last line number, inclusive
}

// Synthesize picks up to count non-overlapping snippets from the lyric
// lines and persists them as challenges, skipping ranges that already
// exist. It returns the number actually created, which may be fewer
// than requested when the song is too short to support them.
func (s *Synthesizer) Synthesize(ctx context.Context, songID string, lines []string, count int) (int, error) {
	scored := scoreWindows(lines)

	created := 0
	var used []scoredRange
	for _, cand := range scored {
		if created >= count {
			break
		}
		if overlapsAny(cand, used) {
			continue
		}

		exists, err := s.challenges.ExistsByRange(ctx, songID, cand.start, cand.end)
		if err != nil {
			return created, fmt.Errorf("failed to check challenge range: %w", err)
		}
		if exists {
			continue
		}

		if err := s.challenges.Create(ctx, &domain.Challenge{
			ID:        uuid.New().String(),
			SongID:    songID,
			StartLine: cand.start,
			EndLine:   cand.end,
			IsActive:  true,
		}); err != nil {
			return created, fmt.Errorf("failed to create challenge: %w", err)
		}
		used = append(used, cand)
		created++
	}
	return created, nil
}

// scoreWindows slides a fixed window over the lyrics, skipping a margin
// at both ends where intros and outros tend to sit, and ranks each
// window by word count, vocabulary uniqueness, line length, and how
// many of its lines are distinct. Repetitive windows (fewer than two
// distinct lines) are discarded. The result is sorted best first.
func scoreWindows(lines []string) []scoredRange {
	if len(lines) < minSynthLines {
		return nil
	}

	margin := len(lines) / 7
	if margin < 1 {
		margin = 1
	}
	offset := 0
	candidates := lines
	if margin < len(lines)/2 {
		candidates = lines[margin : len(lines)-margin]
		offset = margin
	}

	window := len(candidates) - 1
	if window > 4 {
		window = 4
	}
	if window < 1 {
		return nil
	}

	var scored []scoredRange
	for i := 0; i+window <= len(candidates); i++ {
		chunk := candidates[i : i+window]

		var words []string
		for _, l := range chunk {
			words = append(words, strings.Fields(l)...)
		}
		uniqueWords := make(map[string]struct{}, len(words))
		for _, w := range words {
			uniqueWords[strings.ToLower(w)] = struct{}{}
		}
		wordCount := len(words)
		if wordCount == 0 {
			wordCount = 1
		}
		uniqueRatio := float64(len(uniqueWords)) / float64(wordCount)

		var totalLen int
		distinct := make(map[string]struct{}, len(chunk))
		for _, l := range chunk {
			totalLen += len(l)
			distinct[strings.ToLower(strings.TrimSpace(l))] = struct{}{}
		}
		if len(distinct) < 2 {
			continue
		}
		avgLen := float64(totalLen) / float64(window)

		score := float64(len(words)) * uniqueRatio * (avgLen / 30) * (float64(len(distinct)) / float64(window))
		scored = append(scored, scoredRange{
			score: score,
			start: offset + i,
			end:   offset + i + window - 1,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored
}

func overlapsAny(r scoredRange, used []scoredRange) bool {
	for _, u := range used {
		if r.start <= u.end && r.end >= u.start {
			return true
		}
	}
	return false
}
