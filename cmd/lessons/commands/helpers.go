package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"lessons/internal/editor"
	"lessons/internal/service"
)

// waitForSave blocks until the session's save pipeline settles, returning
// an error if the save failed.
func waitForSave(es *editor.EditingSession) error {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		st := es.SaveState()
		switch st.State {
		case editor.SaveIdle, editor.SaveSaved:
			return nil
		case editor.SaveFailed:
			return fmt.Errorf("save failed: %s", st.Reason)
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("save timed out")
}

func newSnapshots(env *appEnv) *service.SnapshotService {
	return service.NewSnapshotService(env.sessions, filepath.Join(env.cfg.DataDir, "snapshots"))
}
