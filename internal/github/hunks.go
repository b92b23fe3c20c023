package github

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/driftaldev/redline/internal/diff"
)

// CommentableLines returns the new-side line numbers of one file's patch
// that can carry an inline review comment. GitHub anchors comments to lines
// that exist after the change, so added and context lines count and removed
// lines do not.
func CommentableLines(path, patch string, logger *slog.Logger) map[int]struct{} {
	commentable := make(map[int]struct{})
	if strings.TrimSpace(patch) == "" {
		// Binary and very large files come back without a patch body.
		return commentable
	}

	files, err := diff.ParseString(wrapPatch(path, patch))
	if err != nil || len(files) == 0 {
		if logger != nil {
			logger.Warn("unparseable patch, file gets no inline comments",
				"file", path, "error", err)
		}
		return commentable
	}

	for _, chunk := range files[0].Chunks {
		n := chunk.NewStart
		for _, line := range chunk.Lines {
			if line.Op == diff.OpRemoved {
				continue
			}
			commentable[n] = struct{}{}
			n++
		}
	}
	return commentable
}

// wrapPatch completes the bare hunk fragment GitHub returns per file into a
// full unified diff so the regular diff parser can read it.
func wrapPatch(path, patch string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n--- a/%s\n+++ b/%s\n", path, path, path, path)
	b.WriteString(patch)
	if !strings.HasSuffix(patch, "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}
