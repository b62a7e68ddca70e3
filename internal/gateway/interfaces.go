package gateway

import (
	"context"
	"time"

	"github.com/Cyclone1070/commander/internal/tool/service/executor"
	"github.com/Cyclone1070/commander/internal/workflow/router"
)

// fileJail is the slice of the path jail the gateway reads and writes through.
type fileJail interface {
	Root() string
	Read(path string) (string, error)
	Write(path string, content string) error
}

// fastCoder produces code from the fast-coder tier.
type fastCoder interface {
	AskFastCoder(ctx context.Context, task, codeContext string) router.Result
}

// commandRunner executes argv commands without a shell.
type commandRunner interface {
	RunWithTimeout(ctx context.Context, command []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
}
