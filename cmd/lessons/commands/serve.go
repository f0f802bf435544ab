package commands

import (
	"log"

	"github.com/spf13/cobra"

	"lessons/internal/editor"
	mcpserver "lessons/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP stdio server",
	Long: `Start the MCP server on stdin/stdout so agents can create sessions,
edit documents, and trigger saves. Snapshot exports run on the configured
schedule while the server is up.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	env, err := buildEnv(editor.NopEmitter{})
	if err != nil {
		return err
	}
	defer env.cleanup()
	defer env.sessions.Shutdown()

	if env.cfg.SnapshotCron != "" {
		snapshots := newSnapshots(env)
		if err := snapshots.Start(env.cfg.SnapshotCron); err != nil {
			return err
		}
		defer snapshots.Stop()
	}

	srv := mcpserver.New(mcpserver.Deps{
		Sessions: env.sessions,
		Registry: env.registry,
	})
	log.Printf("[SERVE] store driver %s", env.cfg.Store.Driver)
	return srv.ServeStdio()
}
