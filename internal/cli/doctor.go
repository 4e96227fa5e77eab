package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/MeshRepublic/kudzu-sub001/internal/config"
	"github.com/MeshRepublic/kudzu-sub001/pkg/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check workspace health",
	Long:  "Validate that the configuration and trace store are properly set up.",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Println("kudzu doctor — checking your workspace")
	fmt.Println()
	allOK := true

	// 1. Go version
	fmt.Printf("  Go version: %s", runtime.Version())
	fmt.Println(" ✓")

	// 2. OS/Arch
	fmt.Printf("  Platform:   %s/%s", runtime.GOOS, runtime.GOARCH)
	fmt.Println(" ✓")

	// 3. Configuration
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Printf("  Config:     INVALID (%s) ✗\n", err)
		fmt.Println("    → Run 'kudzu init' to create a workspace")
		allOK = false
	} else {
		fmt.Printf("  Config:     %s v%s (node %s)", cfg.Name, cfg.Version, cfg.Node.ID)
		fmt.Println(" ✓")
	}

	// 4. Trace store
	if cfg != nil {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			fmt.Printf("  Store:      FAILED (%s) ✗\n", err)
			allOK = false
		} else {
			holograms, err := st.Holograms()
			if err != nil {
				fmt.Printf("  Store:      FAILED (%s) ✗\n", err)
				allOK = false
			} else {
				total := 0
				for _, hc := range holograms {
					total += hc.Traces
				}
				fmt.Printf("  Store:      %s (%d holograms, %d traces)", cfg.Store.Path, len(holograms), total)
				fmt.Println(" ✓")
			}
			st.Close()
		}

		// 5. Memory tuning
		fmt.Printf("  Memory:     dim=%d blend=%.2f decay=%.2f",
			cfg.Memory.Dimension, cfg.Memory.BlendStrength, cfg.Memory.DecayFactor)
		fmt.Println(" ✓")
	}

	fmt.Println()
	if allOK {
		fmt.Println("All checks passed!")
	} else {
		fmt.Println("Some checks failed. See above for details.")
	}

	return nil
}
