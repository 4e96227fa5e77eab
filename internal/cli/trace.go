package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeshRepublic/kudzu-sub001/pkg/hologram"
	"github.com/MeshRepublic/kudzu-sub001/pkg/trace"
)

var (
	traceHologram string
	traceOrigin   string
	tracePurpose  string
	followAgent   string
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Manage memory traces",
	Long:  `Commands for recording, following, merging, and inspecting traces.`,
}

var traceNewCmd = &cobra.Command{
	Use:   "new [key=value ...]",
	Short: "Record a new trace",
	Long: `Record a new trace in a hologram. Positional arguments become the
reconstruction hint, one key=value pair each.

Examples:
  kudzu trace new --origin agent-1 --purpose observation event="deploy failed" component=api
  kudzu trace new --origin agent-2 --purpose decision summary="roll back to v1.4"`,
	RunE: runTraceNew,
}

var traceFollowCmd = &cobra.Command{
	Use:   "follow <trace-id>",
	Short: "Extend a trace's path with another agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceFollow,
}

var traceMergeCmd = &cobra.Command{
	Use:   "merge <trace-id-a> <trace-id-b>",
	Short: "Merge two traces with the same origin and purpose",
	Args:  cobra.ExactArgs(2),
	RunE:  runTraceMerge,
}

var traceShowCmd = &cobra.Command{
	Use:   "show <trace-id>",
	Short: "Print a trace as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceShow,
}

var traceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List traces in a hologram",
	RunE:  runTraceList,
}

var traceForgetCmd = &cobra.Command{
	Use:   "forget <trace-id>",
	Short: "Remove a trace from a hologram",
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceForget,
}

func init() {
	traceCmd.PersistentFlags().StringVar(&traceHologram, "hologram", "default", "hologram name")

	traceNewCmd.Flags().StringVar(&traceOrigin, "origin", "", "originating agent (required)")
	traceNewCmd.Flags().StringVar(&tracePurpose, "purpose", "observation", "trace purpose")
	traceNewCmd.MarkFlagRequired("origin")

	traceFollowCmd.Flags().StringVar(&followAgent, "agent", "", "agent extending the trace (required)")
	traceFollowCmd.MarkFlagRequired("agent")

	traceCmd.AddCommand(traceNewCmd)
	traceCmd.AddCommand(traceFollowCmd)
	traceCmd.AddCommand(traceMergeCmd)
	traceCmd.AddCommand(traceShowCmd)
	traceCmd.AddCommand(traceListCmd)
	traceCmd.AddCommand(traceForgetCmd)
}

func runTraceNew(cmd *cobra.Command, args []string) error {
	hint, err := parseHint(args)
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	h, err := ws.loadHologram(cmd.Context(), traceHologram, tracePurpose)
	if err != nil {
		return err
	}

	t := trace.New(traceOrigin, tracePurpose, hint)
	if err := h.Record(cmd.Context(), t); err != nil {
		return fmt.Errorf("failed to record trace: %w", err)
	}

	if err := persistTrace(ws, h, t.ID); err != nil {
		return err
	}

	fmt.Printf("Recorded trace %s in hologram %q\n", t.ID, traceHologram)
	return nil
}

func runTraceFollow(cmd *cobra.Command, args []string) error {
	traceID := args[0]

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	stored, _, err := ws.store.LoadTrace(traceID)
	if err != nil {
		return fmt.Errorf("failed to load trace %s: %w", traceID, err)
	}

	h, err := ws.loadHologram(cmd.Context(), traceHologram, stored.Purpose)
	if err != nil {
		return err
	}

	followed := trace.Follow(stored, followAgent)
	if err := h.Record(cmd.Context(), followed); err != nil {
		return fmt.Errorf("failed to record followed trace: %w", err)
	}

	if err := persistTrace(ws, h, followed.ID); err != nil {
		return err
	}

	merged, _ := h.Get(followed.ID)
	fmt.Printf("Trace %s path: %s\n", merged.ID, strings.Join(merged.Path, " -> "))
	return nil
}

func runTraceMerge(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	a, _, err := ws.store.LoadTrace(args[0])
	if err != nil {
		return fmt.Errorf("failed to load trace %s: %w", args[0], err)
	}
	b, _, err := ws.store.LoadTrace(args[1])
	if err != nil {
		return fmt.Errorf("failed to load trace %s: %w", args[1], err)
	}

	merged, err := trace.Merge(a, b)
	if err != nil {
		return err
	}

	h, err := ws.loadHologram(cmd.Context(), traceHologram, merged.Purpose)
	if err != nil {
		return err
	}
	if err := h.Record(cmd.Context(), merged); err != nil {
		return fmt.Errorf("failed to record merged trace: %w", err)
	}
	if err := h.Forget(cmd.Context(), b.ID); err != nil {
		return err
	}

	if err := persistTrace(ws, h, merged.ID); err != nil {
		return err
	}
	if err := ws.store.DeleteTrace(b.ID); err != nil {
		return fmt.Errorf("failed to delete absorbed trace: %w", err)
	}

	fmt.Printf("Merged %s into %s (path: %s)\n", b.ID, merged.ID, strings.Join(merged.Path, " -> "))
	return nil
}

func runTraceShow(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	t, _, err := ws.store.LoadTrace(args[0])
	if err != nil {
		return fmt.Errorf("failed to load trace %s: %w", args[0], err)
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runTraceList(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	traces, _, err := ws.store.ListTraces(traceHologram, -1)
	if err != nil {
		return fmt.Errorf("failed to list traces: %w", err)
	}

	if len(traces) == 0 {
		fmt.Printf("No traces in hologram %q.\n", traceHologram)
		return nil
	}

	fmt.Printf("Traces in %q:\n", traceHologram)
	fmt.Println("-------------")
	for _, t := range traces {
		fmt.Printf("%s  %-16s  %s\n", t.ID[:8], t.Purpose, strings.Join(t.Path, " -> "))
	}
	return nil
}

func runTraceForget(cmd *cobra.Command, args []string) error {
	traceID := args[0]

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.close()

	h, err := ws.loadHologram(cmd.Context(), traceHologram, "")
	if err != nil {
		return err
	}
	if err := h.Forget(cmd.Context(), traceID); err != nil {
		return err
	}
	if err := ws.store.DeleteTrace(traceID); err != nil {
		return fmt.Errorf("failed to delete trace: %w", err)
	}

	fmt.Printf("Forgot trace %s\n", traceID)
	return nil
}

// persistTrace saves a recorded trace, its encoding, and the hologram's
// updated co-occurrence state.
func persistTrace(ws *workspace, h *hologram.Hologram, traceID string) error {
	t, vec, err := h.Snapshot(traceID)
	if err != nil {
		return err
	}
	if err := ws.store.SaveTrace(traceHologram, t, vec); err != nil {
		return fmt.Errorf("failed to save trace: %w", err)
	}
	if err := ws.store.SaveContext(traceHologram, h.Context()); err != nil {
		return fmt.Errorf("failed to save context state: %w", err)
	}
	return nil
}

func parseHint(args []string) (map[string]any, error) {
	hint := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid hint argument %q, expected key=value", arg)
		}
		hint[key] = value
	}
	return hint, nil
}
