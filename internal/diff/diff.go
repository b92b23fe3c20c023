// Package diff parses unified git diffs into the structured representation
// the review pipeline consumes.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Status describes what happened to a file in a diff.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusDeleted  Status = "deleted"
)

// Op classifies a single diff line.
type Op string

const (
	OpContext Op = "context"
	OpAdded   Op = "added"
	OpRemoved Op = "removed"
)

// Line is one line of a chunk, without its trailing newline.
type Line struct {
	Op      Op
	Content string
}

// Chunk is one contiguous hunk of a file diff.
type Chunk struct {
	Header   string
	OldStart int
	OldLines int
	NewStart int
	NewLines int
	Lines    []Line
}

// File is a single changed file. It is immutable once parsed; the pipeline
// only ever reads it.
type File struct {
	Path      string
	OldPath   string
	Status    Status
	IsBinary  bool
	IsRenamed bool
	Additions int
	Deletions int
	Chunks    []Chunk
}

// ChangedLines returns only the added and removed lines of the file, in
// chunk order. Context lines are skipped.
func (f *File) ChangedLines() []Line {
	var lines []Line
	for _, chunk := range f.Chunks {
		for _, line := range chunk.Lines {
			if line.Op == OpAdded || line.Op == OpRemoved {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

// AddedContent joins the added lines into one block of text.
func (f *File) AddedContent() string {
	return f.joinLines(OpAdded)
}

// RemovedContent joins the removed lines into one block of text.
func (f *File) RemovedContent() string {
	return f.joinLines(OpRemoved)
}

func (f *File) joinLines(op Op) string {
	var b strings.Builder
	for _, chunk := range f.Chunks {
		for _, line := range chunk.Lines {
			if line.Op == op {
				b.WriteString(line.Content)
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

// Unified reconstructs the file's diff body in unified format, suitable for
// embedding in a prompt. File headers are omitted.
func (f *File) Unified() string {
	var b strings.Builder
	for _, chunk := range f.Chunks {
		if strings.HasPrefix(chunk.Header, "@@") {
			b.WriteString(chunk.Header)
		} else {
			fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@", chunk.OldStart, chunk.OldLines, chunk.NewStart, chunk.NewLines)
			if chunk.Header != "" {
				b.WriteByte(' ')
				b.WriteString(chunk.Header)
			}
		}
		b.WriteByte('\n')
		for _, line := range chunk.Lines {
			switch line.Op {
			case OpAdded:
				b.WriteByte('+')
			case OpRemoved:
				b.WriteByte('-')
			default:
				b.WriteByte(' ')
			}
			b.WriteString(line.Content)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Totals sums additions and deletions across a file set.
func Totals(files []File) (added, removed int) {
	for i := range files {
		added += files[i].Additions
		removed += files[i].Deletions
	}
	return added, removed
}

// Parse reads a unified diff and returns the changed files in input order.
func Parse(r io.Reader) ([]File, error) {
	parsed, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	files := make([]File, 0, len(parsed))
	for _, gf := range parsed {
		files = append(files, convertFile(gf))
	}
	return files, nil
}

// ParseString is Parse over an in-memory diff.
func ParseString(raw string) ([]File, error) {
	return Parse(strings.NewReader(raw))
}

func convertFile(gf *gitdiff.File) File {
	f := File{
		IsBinary:  gf.IsBinary,
		IsRenamed: gf.IsRename,
	}

	switch {
	case gf.IsNew:
		f.Status = StatusAdded
		f.Path = gf.NewName
	case gf.IsDelete:
		f.Status = StatusDeleted
		f.Path = gf.OldName
	default:
		f.Status = StatusModified
		f.Path = gf.NewName
		if f.Path == "" {
			f.Path = gf.OldName
		}
	}
	if gf.IsRename {
		f.OldPath = gf.OldName
	}

	for _, frag := range gf.TextFragments {
		chunk := Chunk{
			Header:   frag.Header(),
			OldStart: int(frag.OldPosition),
			OldLines: int(frag.OldLines),
			NewStart: int(frag.NewPosition),
			NewLines: int(frag.NewLines),
			Lines:    make([]Line, 0, len(frag.Lines)),
		}
		for _, gl := range frag.Lines {
			line := Line{Content: strings.TrimSuffix(gl.Line, "\n")}
			switch gl.Op {
			case gitdiff.OpAdd:
				line.Op = OpAdded
				f.Additions++
			case gitdiff.OpDelete:
				line.Op = OpRemoved
				f.Deletions++
			default:
				line.Op = OpContext
			}
			chunk.Lines = append(chunk.Lines, line)
		}
		f.Chunks = append(f.Chunks, chunk)
	}

	return f
}
