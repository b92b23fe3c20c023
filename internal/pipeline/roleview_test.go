package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftaldev/redline/internal/core"
)

func TestSummarizeTruncatesOnRuneBoundary(t *testing.T) {
	ec := core.EnrichedContext{
		Upstream: []core.DependencyNode{
			{FilePath: "métier/" + strings.Repeat("é", 80) + ".ts"},
		},
	}

	// "Depends on:\n- métier/" puts every two-byte rune at an odd offset, so
	// an odd byte limit would land mid-rune without the boundary backoff.
	view := roleView{upstream: true, maxChars: 33}
	summary := view.summarize(ec)

	assert.True(t, utf8.ValidString(summary), "truncation must not split a rune")
	assert.True(t, strings.HasSuffix(summary, "\n[context truncated]"))
	assert.LessOrEqual(t, len(strings.TrimSuffix(summary, "\n[context truncated]")), 33)
}

func TestSummarizeUnderLimitUntouched(t *testing.T) {
	ec := core.EnrichedContext{
		Upstream: []core.DependencyNode{{FilePath: "svc/auth.ts"}},
	}

	view := roleView{upstream: true, maxChars: 4000}
	summary := view.summarize(ec)

	require.Contains(t, summary, "svc/auth.ts")
	assert.NotContains(t, summary, "[context truncated]")
}
