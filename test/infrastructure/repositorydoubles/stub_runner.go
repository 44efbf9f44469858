//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"strings"

	"github.com/rios0rios0/upstreamsync/internal/infrastructure/repositories/shell"
)

// StubRunnerResponse is what StubRunner answers for one command line.
type StubRunnerResponse struct {
	Result shell.RunResult
	Err    error
}

// StubRunner is a stub implementation of shell.Runner. Responses are keyed by
// the space-joined command line; unknown commands succeed with no output.
type StubRunner struct {
	Responses map[string]StubRunnerResponse
	Calls     []string
	Dirs      []string
}

var _ shell.Runner = (*StubRunner)(nil)

func (s *StubRunner) Run(_ context.Context, dir string, argv ...string) (shell.RunResult, error) {
	line := strings.Join(argv, " ")
	s.Calls = append(s.Calls, line)
	s.Dirs = append(s.Dirs, dir)
	response := s.Responses[line]
	return response.Result, response.Err
}
