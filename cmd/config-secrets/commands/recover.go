package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"

	"github.com/rbaliyan/config-secrets/atomicfile"
)

// RunRecover runs the recovery cascade on the document at path and reports which file
// satisfied it. With auto-restore enabled on files, a recovered document is also put
// back on the primary path.
func RunRecover(ctx context.Context, files *atomicfile.Store, logger *slog.Logger, w io.Writer, path string) error {
	res := atomicfile.ReadWithRecovery(ctx, files, path, map[string]json.RawMessage(nil))

	switch res.Source {
	case atomicfile.SourceMain:
		success(w, "%s is healthy (%d entries)", path, len(res.Data))
		return nil
	case atomicfile.SourceDefault:
		_, _ = fmt.Fprintf(w, "%s No usable copy of %s\n", color.RedString("✗"), path)
	default:
		warning(w, "Recovered %s from %s copy %s (%d entries)",
			path, res.Source, color.CyanString(res.Path), len(res.Data))
	}
	if res.Err != nil {
		_, _ = fmt.Fprintf(w, "%s Primary error: %v\n", color.CyanString("→"), res.Err)
	}

	logger.InfoContext(ctx, "recovery finished",
		slog.String("path", path),
		slog.String("source", res.Source.String()),
	)
	return nil
}
