package commands

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lessons/internal/domain"
	"lessons/internal/editor"
	"lessons/internal/importer"
)

var watchCmd = &cobra.Command{
	Use:   "watch <session-id> <node-id>",
	Short: "Import files dropped into the import directory",
	Long: `Watch the configured import directory and append every dropped CSV or
JSON file to the node's document as a block sequence. Runs until
interrupted.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	sessionID, nodeID := args[0], args[1]

	env, err := buildEnv(editor.NopEmitter{})
	if err != nil {
		return err
	}
	defer env.cleanup()
	defer env.sessions.Shutdown()

	if err := os.MkdirAll(env.cfg.ImportDir, 0755); err != nil {
		return err
	}

	es, err := env.sessions.OpenNode(cmd.Context(), sessionID, nodeID)
	if err != nil {
		return err
	}

	w, err := importer.NewWatcher(env.cfg.ImportDir, func(path string, inputs []domain.BlockInput) {
		if err := es.SpliceBlocks(inputs, len(es.Blocks())); err != nil {
			log.Printf("[WATCH] splice %s: %v", path, err)
		}
	})
	if err != nil {
		return err
	}
	w.Start()
	defer w.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	// Flush whatever the debounce window still holds.
	es.SaveNow()
	return waitForSave(es)
}
