package commands

import "strings"

// Reply accumulates the lines of a chat answer.
type Reply struct {
	lines []string
}

// Add appends a line.
func (r *Reply) Add(line string) {
	r.lines = append(r.lines, line)
}

// AddBoxed appends text as a fenced code block.
func (r *Reply) AddBoxed(text string) {
	r.lines = append(r.lines, "```\n"+text+"\n```")
}

// Len returns the number of lines.
func (r *Reply) Len() int {
	return len(r.lines)
}

func (r *Reply) String() string {
	return strings.Join(r.lines, "\n")
}
