package depgraph

import (
	"context"

	"github.com/driftaldev/redline/internal/core"
)

// Enrich assembles the full EnrichedContext for one file: upstream imports,
// downstream importers and related tests. Each part is best effort; an empty
// context is a valid result.
func (r *Resolver) Enrich(ctx context.Context, file string, maxDepth int, includeExternal bool) core.EnrichedContext {
	return core.EnrichedContext{
		FilePath:   file,
		Upstream:   r.ResolveUpstream(ctx, file, maxDepth, includeExternal),
		Downstream: r.ResolveDownstream(ctx, file, maxDepth),
		Tests:      r.FindRelatedTests(ctx, file),
	}
}
