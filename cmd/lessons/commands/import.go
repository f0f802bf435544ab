package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lessons/internal/editor"
	"lessons/internal/importer"
)

var importIndex int

var importCmd = &cobra.Command{
	Use:   "import <session-id> <node-id> <file>",
	Short: "Import a CSV or JSON block sequence into a node",
	Long: `Parse a CSV or JSON file into an ordered block sequence and splice it
into the node's document, then save immediately.

CSV files need a "type" column; other columns become data fields ("steps"
splits on "|", "data" holds a JSON object). JSON files hold either a bare
[{type, data}] array or a full {blocks: [...]} document.`,
	Args: cobra.ExactArgs(3),
	RunE: runImport,
}

func init() {
	importCmd.Flags().IntVar(&importIndex, "at", -1, "Splice index (default: end of document)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	sessionID, nodeID, path := args[0], args[1], args[2]

	env, err := buildEnv(editor.NopEmitter{})
	if err != nil {
		return err
	}
	defer env.cleanup()
	defer env.sessions.Shutdown()

	inputs, err := importer.ParseFile(path)
	if err != nil {
		return err
	}

	es, err := env.sessions.OpenNode(cmd.Context(), sessionID, nodeID)
	if err != nil {
		return err
	}

	index := importIndex
	if index < 0 {
		index = len(es.Blocks())
	}
	if err := es.SpliceBlocks(inputs, index); err != nil {
		return err
	}
	es.SaveNow()
	if err := waitForSave(es); err != nil {
		return err
	}

	fmt.Printf("Imported %d blocks into %s/%s at index %d\n", len(inputs), sessionID, nodeID, index)
	return nil
}
