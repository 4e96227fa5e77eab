package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [project-name]",
	Short: "Initialize a new kudzu memory workspace",
	Long: `Initialize a kudzu workspace: the kudzu.yaml config file and the
.kudzu directory the trace store and logs live under.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	projectName := "."
	if len(args) > 0 {
		projectName = args[0]
	}

	if projectName != "." {
		if err := os.MkdirAll(projectName, 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	dirs := []string{
		".kudzu",
		".kudzu/logs",
	}
	for _, dir := range dirs {
		path := filepath.Join(projectName, dir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := createWorkspaceConfig(projectName); err != nil {
		return err
	}
	if err := createGitignore(projectName); err != nil {
		return err
	}

	fmt.Printf("Initialized kudzu workspace in %s\n", projectName)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Set node.id in kudzu.yaml to this agent's identity")
	fmt.Println("  2. Record a trace: kudzu trace new --origin <agent> --purpose observation event=\"...\"")
	fmt.Println("  3. Query memory: kudzu query \"what happened\"")

	return nil
}

func createWorkspaceConfig(projectDir string) error {
	content := `# kudzu.yaml - Workspace configuration
name: my-swarm
version: "1.0"

# This replica's identity. Defaults to the hostname when empty.
node:
  id: ""

# Holographic memory tuning
memory:
  dimension: 512
  blend_strength: 0.3
  decay_factor: 0.98
  prune_threshold: 1.0
  recall_limit: 10

# Trace storage
store:
  driver: sqlite
  path: .kudzu/memory.db

# Logging
logging:
  level: info
  format: text  # text | json
  # metrics: .kudzu/logs/metrics.jsonl  # uncomment to export runtime counters
`
	path := filepath.Join(projectDir, "kudzu.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("kudzu.yaml already exists in %s", projectDir)
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func createGitignore(projectDir string) error {
	content := `# kudzu
.kudzu/memory.db
.kudzu/logs/

# Secrets
*.env
.env.*

# OS
.DS_Store
Thumbs.db
`
	return os.WriteFile(filepath.Join(projectDir, ".gitignore"), []byte(content), 0644)
}
