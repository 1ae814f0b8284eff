package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Context is a byte range of named template source.
type Context struct {
	Name   string
	Source string
	From   int
	To     int
}

func (c Context) displayName() string {
	if c.Name == "" {
		return "<template>"
	}
	return c.Name
}

func (c Context) clamp() (int, int) {
	from, to := c.From, c.To
	if from < 0 {
		from = 0
	}
	if from > len(c.Source) {
		from = len(c.Source)
	}
	if to < from {
		to = from
	}
	if to > len(c.Source) {
		to = len(c.Source)
	}
	return from, to
}

// Position returns the 1-based line and column (in runes) of From.
func (c Context) Position() (int, int) {
	from, _ := c.clamp()
	before := c.Source[:from]
	line := strings.Count(before, "\n") + 1
	col := utf8.RuneCountInString(before[strings.LastIndexByte(before, '\n')+1:]) + 1
	return line, col
}

// Show renders "name:line:col" followed by the source line holding From and a
// caret row underlining the range (clipped to that line).
func (c Context) Show(indent string, color bool) string {
	from, to := c.clamp()
	line, col := c.Position()

	lineStart := strings.LastIndexByte(c.Source[:from], '\n') + 1
	lineEnd := strings.IndexByte(c.Source[from:], '\n')
	if lineEnd < 0 {
		lineEnd = len(c.Source)
	} else {
		lineEnd += from
	}
	if to > lineEnd {
		to = lineEnd
	}

	head := c.Source[lineStart:from]
	culprit := c.Source[from:to]
	tail := c.Source[to:lineEnd]

	width := utf8.RuneCountInString(culprit)
	if width == 0 {
		width = 1
	}
	marker := strings.Repeat(" ", utf8.RuneCountInString(head)) + strings.Repeat("^", width)

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s:%d:%d\n", indent, c.displayName(), line, col)
	b.WriteString(indent)
	b.WriteString(head)
	if color {
		b.WriteString("\033[1;4m")
		b.WriteString(culprit)
		b.WriteString("\033[m")
	} else {
		b.WriteString(culprit)
	}
	b.WriteString(tail)
	b.WriteByte('\n')
	b.WriteString(indent)
	b.WriteString(marker)
	return b.String()
}
