package session

import (
	"context"

	"github.com/Cyclone1070/commander/internal/provider"
	"github.com/Cyclone1070/commander/internal/workflow/router"
)

// objectiveRunner drives one objective to a result given prior turns.
type objectiveRunner interface {
	Run(ctx context.Context, objective string, history []provider.Message) router.Result
}
