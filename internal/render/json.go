package render

import (
	"encoding/json"
	"io"

	"github.com/driftaldev/redline/internal/core"
)

// JSON writes the report as indented JSON for machine consumers.
func JSON(w io.Writer, results *core.ReviewResults) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
