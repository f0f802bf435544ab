package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lessons/internal/editor"
)

var previewCmd = &cobra.Command{
	Use:   "preview <session-id> <node-id>",
	Short: "Render a node's document as HTML",
	Long: `Hydrate the node's document from the store and print its preview
markup to stdout. Nothing is modified and no save is scheduled.`,
	Args: cobra.ExactArgs(2),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	sessionID, nodeID := args[0], args[1]

	env, err := buildEnv(editor.NopEmitter{})
	if err != nil {
		return err
	}
	defer env.cleanup()
	defer env.sessions.Shutdown()

	es, err := env.sessions.OpenNode(cmd.Context(), sessionID, nodeID)
	if err != nil {
		return err
	}
	fmt.Println(es.PreviewMarkup())
	return nil
}
