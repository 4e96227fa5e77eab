package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var maintainHologram string

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Decay and prune co-occurrence state",
	Long: `Run one maintenance cycle on a hologram's co-occurrence state:
decay every association weight, then prune the ones that fell below the
threshold. Weights and thresholds come from kudzu.yaml.

Examples:
  kudzu maintain
  kudzu maintain --hologram incidents`,
	RunE: runMaintain,
}

func init() {
	maintainCmd.Flags().StringVar(&maintainHologram, "hologram", "default", "hologram name")
}

func runMaintain(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	state, err := ws.store.LoadContext(maintainHologram)
	if err != nil {
		return fmt.Errorf("failed to load context state: %w", err)
	}

	before := state.NeighborCount()
	state.Decay(ws.cfg.Memory.DecayFactor)
	state.Prune(ws.cfg.Memory.PruneThreshold)
	after := state.NeighborCount()

	if err := ws.store.SaveContext(maintainHologram, state); err != nil {
		return fmt.Errorf("failed to save context state: %w", err)
	}

	fmt.Printf("Maintained %q: %d -> %d associated tokens\n", maintainHologram, before, after)
	return nil
}
