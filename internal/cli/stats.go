package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show memory store statistics",
	Long: `Display per-hologram trace counts and co-occurrence state size.

Examples:
  kudzu stats`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	holograms, err := ws.store.Holograms()
	if err != nil {
		return fmt.Errorf("failed to list holograms: %w", err)
	}

	if len(holograms) == 0 {
		fmt.Println("No traces recorded yet.")
		return nil
	}

	fmt.Println("Holograms:")
	fmt.Println("----------")
	for _, hc := range holograms {
		state, err := ws.store.LoadContext(hc.Name)
		if err != nil {
			return fmt.Errorf("failed to load context for %s: %w", hc.Name, err)
		}
		fmt.Printf("%-24s %5d traces  %5d tokens  %6d associated tokens\n",
			hc.Name, hc.Traces, len(state.TokenCounts), state.NeighborCount())
	}
	return nil
}
