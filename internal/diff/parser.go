package diff

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// LineType classifies a single line within a hunk.
type LineType int

const (
	// LineContext is an unchanged line present in both file versions.
	LineContext LineType = iota
	// LineAddition is a line present only in the new file version.
	LineAddition
	// LineDeletion is a line present only in the old file version.
	LineDeletion
)

// String returns the lowercase name of the line type.
func (t LineType) String() string {
	switch t {
	case LineAddition:
		return "addition"
	case LineDeletion:
		return "deletion"
	default:
		return "context"
	}
}

// Line is one physical line within a hunk, with the leading marker stripped.
// OldNumber is nil for additions; NewNumber is nil for deletions; context
// lines carry both.
type Line struct {
	Content   string
	Type      LineType
	OldNumber *int
	NewNumber *int
}

// IsChanged reports whether the line is an addition or a deletion.
func (l Line) IsChanged() bool {
	return l.Type == LineAddition || l.Type == LineDeletion
}

// Hunk is one contiguous @@ region: the parsed header ranges, the optional
// trailing header text (often a function signature), and the body lines in
// textual order.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Header   string
	Lines    []Line
}

// Additions returns the hunk's addition lines in textual order.
func (h Hunk) Additions() []Line {
	var lines []Line
	for _, l := range h.Lines {
		if l.Type == LineAddition {
			lines = append(lines, l)
		}
	}
	return lines
}

// Deletions returns the hunk's deletion lines in textual order.
func (h Hunk) Deletions() []Line {
	var lines []Line
	for _, l := range h.Lines {
		if l.Type == LineDeletion {
			lines = append(lines, l)
		}
	}
	return lines
}

// ChangedNewLines returns the new-file line numbers of the hunk's additions.
func (h Hunk) ChangedNewLines() []int {
	var nums []int
	for _, l := range h.Lines {
		if l.Type == LineAddition && l.NewNumber != nil {
			nums = append(nums, *l.NewNumber)
		}
	}
	return nums
}

// Render reproduces the hunk body as +/-/space prefixed text, one line per
// body line. This is the textual form handed to prompt builders.
func (h Hunk) Render() string {
	var b strings.Builder
	for i, l := range h.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch l.Type {
		case LineAddition:
			b.WriteByte('+')
		case LineDeletion:
			b.WriteByte('-')
		default:
			b.WriteByte(' ')
		}
		b.WriteString(l.Content)
	}
	return b.String()
}

// FileDiff collects all hunks for one file path. Path is the path in the
// new tree; OldPath is set from the git header and differs from Path only
// for renames.
type FileDiff struct {
	Path      string
	OldPath   string
	Hunks     []Hunk
	IsNew     bool
	IsDeleted bool
	IsRenamed bool
}

// OldContent reconstructs the hunk-covered regions of the old file version
// by dropping addition lines. This is a partial reconstruction, not the
// full file.
func (f FileDiff) OldContent() string {
	var lines []string
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			if l.Type != LineAddition {
				lines = append(lines, l.Content)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// NewContent reconstructs the hunk-covered regions of the new file version
// by dropping deletion lines.
func (f FileDiff) NewContent() string {
	var lines []string
	for _, h := range f.Hunks {
		for _, l := range h.Lines {
			if l.Type != LineDeletion {
				lines = append(lines, l.Content)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// TotalAdditions counts addition lines across all hunks.
func (f FileDiff) TotalAdditions() int {
	total := 0
	for _, h := range f.Hunks {
		total += len(h.Additions())
	}
	return total
}

// TotalDeletions counts deletion lines across all hunks.
func (f FileDiff) TotalDeletions() int {
	total := 0
	for _, h := range f.Hunks {
		total += len(h.Deletions())
	}
	return total
}

var (
	fileHeaderPattern = regexp.MustCompile(`^diff --git a/(.*) b/(.*)$`)
	oldFilePattern    = regexp.MustCompile(`^--- (?:a/)?(.*)$`)
	newFilePattern    = regexp.MustCompile(`^\+\+\+ (?:b/)?(.*)$`)
	hunkHeaderPattern = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@(.*)$`)
)

// Parse converts unified diff text into an ordered sequence of FileDiffs.
// It is a pure function of its input and never fails: unrecognized lines
// outside a hunk are skipped, malformed hunk headers are dropped, and input
// without any recognizable header yields an empty slice.
func Parse(diffText string) []FileDiff {
	if diffText == "" {
		return nil
	}

	var (
		files       []FileDiff
		currentFile *FileDiff
		currentHunk *Hunk
		oldLine     int
		newLine     int
	)

	closeHunk := func() {
		if currentHunk != nil && currentFile != nil {
			currentFile.Hunks = append(currentFile.Hunks, *currentHunk)
		}
		currentHunk = nil
	}

	for _, line := range strings.Split(diffText, "\n") {
		if m := fileHeaderPattern.FindStringSubmatch(line); m != nil {
			closeHunk()
			if currentFile != nil {
				files = append(files, *currentFile)
			}
			currentFile = &FileDiff{Path: m[2], OldPath: m[1]}
			continue
		}

		if strings.HasPrefix(line, "new file mode") {
			if currentFile != nil {
				currentFile.IsNew = true
			}
			continue
		}

		if strings.HasPrefix(line, "deleted file mode") {
			if currentFile != nil {
				currentFile.IsDeleted = true
			}
			continue
		}

		if strings.HasPrefix(line, "rename from") || strings.HasPrefix(line, "rename to") {
			if currentFile != nil {
				currentFile.IsRenamed = true
			}
			continue
		}

		if oldFilePattern.MatchString(line) {
			// Bare single-file patches carry no "diff --git" header; open a
			// FileDiff here so the following "+++" line can name it.
			if currentFile == nil {
				currentFile = &FileDiff{}
			}
			continue
		}

		if m := newFilePattern.FindStringSubmatch(line); m != nil {
			// Fallback path source only: the git header wins when present,
			// and /dev/null (deleted files) is never a filename.
			if currentFile != nil && currentFile.Path == "" && m[1] != "/dev/null" {
				currentFile.Path = m[1]
			}
			continue
		}

		if m := hunkHeaderPattern.FindStringSubmatch(line); m != nil {
			closeHunk()
			hunk, ok := parseHunkHeader(m)
			if !ok {
				continue
			}
			currentHunk = &hunk
			oldLine = hunk.OldStart
			newLine = hunk.NewStart
			continue
		}

		if currentHunk == nil {
			continue
		}

		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			currentHunk.Lines = append(currentHunk.Lines, Line{
				Content:   line[1:],
				Type:      LineAddition,
				NewNumber: intPtr(newLine),
			})
			newLine++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			currentHunk.Lines = append(currentHunk.Lines, Line{
				Content:   line[1:],
				Type:      LineDeletion,
				OldNumber: intPtr(oldLine),
			})
			oldLine++
		case strings.HasPrefix(line, " ") || line == "":
			content := line
			if strings.HasPrefix(line, " ") {
				content = line[1:]
			}
			currentHunk.Lines = append(currentHunk.Lines, Line{
				Content:   content,
				Type:      LineContext,
				OldNumber: intPtr(oldLine),
				NewNumber: intPtr(newLine),
			})
			oldLine++
			newLine++
		default:
			// Other markers inside a hunk body, e.g. "\ No newline at end
			// of file", contribute no line.
		}
	}

	closeHunk()
	if currentFile != nil {
		files = append(files, *currentFile)
	}

	return files
}

// ParseFile reads the file at path fully into memory and delegates to Parse.
// The read is the only error source.
func ParseFile(path string) ([]FileDiff, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}

// parseHunkHeader converts the regex groups of an @@ line into a Hunk.
// Omitted counts default to 1 per unified-diff convention. Reports false
// for numbers that do not fit an int; such headers are skipped.
func parseHunkHeader(m []string) (Hunk, bool) {
	oldStart, err := strconv.Atoi(m[1])
	if err != nil {
		return Hunk{}, false
	}
	newStart, err := strconv.Atoi(m[3])
	if err != nil {
		return Hunk{}, false
	}

	oldCount := 1
	if m[2] != "" {
		if oldCount, err = strconv.Atoi(m[2]); err != nil {
			return Hunk{}, false
		}
	}
	newCount := 1
	if m[4] != "" {
		if newCount, err = strconv.Atoi(m[4]); err != nil {
			return Hunk{}, false
		}
	}

	return Hunk{
		OldStart: oldStart,
		OldCount: oldCount,
		NewStart: newStart,
		NewCount: newCount,
		Header:   strings.TrimSpace(m[5]),
	}, true
}

func intPtr(n int) *int {
	return &n
}
