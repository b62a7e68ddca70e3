package shell

import "context"

// validator runs the validate-and-repair loop.
type validator interface {
	ValidateAndRepair(ctx context.Context, path string, args []string) bool
}
