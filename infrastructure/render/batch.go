package render

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/JingYue2000/ChainForge/internal/domain"
)

// RenderAll renders each response independently with bounded parallelism
// and returns the unit lists in input order. Each render is pure with
// respect to its inputs, so responses can be processed concurrently
// without coordination. A parallelism of 0 or less means unbounded.
//
// The first render error cancels the remaining work and is returned.
func (gr *GroupRenderer) RenderAll(ctx context.Context, responses []*domain.Response, parallelism int) ([][]Unit, error) {
	g, ctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	results := make([][]Unit, len(responses))
	for i, resp := range responses {
		i, resp := i, resp
		g.Go(func() error {
			units, err := gr.Render(ctx, resp)
			if err != nil {
				return fmt.Errorf("render response %d: %w", i, err)
			}
			results[i] = units
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
