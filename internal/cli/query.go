package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	queryHologram string
	queryLimit    int
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Recall traces by content similarity",
	Long: `Run a free-text query against a hologram's encoded traces and print
the best matches.

Examples:
  kudzu query "deploy failure api"
  kudzu query "rollback decision" --hologram incidents --limit 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryHologram, "hologram", "default", "hologram name")
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0, "max results (default from config)")
}

func runQuery(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	h, err := ws.loadHologram(cmd.Context(), queryHologram, "")
	if err != nil {
		return err
	}

	limit := queryLimit
	if limit <= 0 {
		limit = ws.cfg.Memory.RecallLimit
	}

	results, err := h.Recall(cmd.Context(), text, limit)
	if err != nil {
		return fmt.Errorf("recall failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching traces.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("%d. %s  (%.3f)  %s/%s\n", i+1, r.TraceID[:8], r.Similarity, r.Origin, r.Purpose)
		if r.Content != "" {
			fmt.Printf("   %s\n", r.Content)
		}
	}
	return nil
}
