//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/upstreamsync/internal/domain/commands"
)

// StubResetCommand is a stub implementation of commands.Reset.
type StubResetCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	LastOpts         commands.ResetOptions
}

var _ commands.Reset = (*StubResetCommand)(nil)

func (s *StubResetCommand) Execute(_ context.Context, opts commands.ResetOptions) error {
	s.ExecuteCallCount++
	s.LastOpts = opts
	return s.ExecuteErr
}
