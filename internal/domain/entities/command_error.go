package entities

import (
	"strings"
)

// CommandError describes an external command that exited unsuccessfully,
// together with everything it printed.
type CommandError struct {
	Command    []string
	ExitStatus int
	Stdout     string
	Stderr     string
	Err        error
}

func (e *CommandError) Error() string {
	b := new(strings.Builder)
	b.WriteString("`")
	b.WriteString(e.CommandLine())
	b.WriteString("` failed")
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	}
	return b.String()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// CommandLine joins the command and its arguments with spaces.
func (e *CommandError) CommandLine() string {
	return strings.Join(e.Command, " ")
}
