package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/keyflow/keyflow/pkg/sshkey"
)

// SyncStats summarizes one sync run.
type SyncStats struct {
	Parsed    int
	Skipped   int
	Submitted int
	Written   int
	InPlace   bool
}

// Sync reads the known_hosts file at path, submits its full content to the
// named flow, and, when inPlace is set, rewrites the file from the server's
// post-submission state (deprecated entries included). The local file is only
// touched after both HTTP calls succeeded, and the replacement is atomic: the
// new content goes to a temp file in the same directory, then renames over
// the original. When inPlace sync succeeds the file is a pure function of
// server state; nothing of the previous local content survives.
func Sync(ctx context.Context, c *Client, path, flow string, inPlace bool) (SyncStats, error) {
	var stats SyncStats
	stats.InPlace = inPlace

	f, err := os.Open(path)
	if err != nil {
		return stats, fmt.Errorf("failed to open %s: %w", path, err)
	}
	entries, skipped, err := sshkey.ParseKnownHosts(f)
	_ = f.Close()
	if err != nil {
		return stats, fmt.Errorf("failed to read %s: %w", path, err)
	}
	stats.Parsed = len(entries)
	stats.Skipped = skipped

	if _, err := c.SubmitKeys(ctx, flow, entries); err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}
	stats.Submitted = len(entries)

	if !inPlace {
		return stats, nil
	}

	state, err := c.FetchKeys(ctx, flow, true)
	if err != nil {
		return stats, fmt.Errorf("fetch after submission failed: %w", err)
	}

	if err := replaceFile(path, []byte(sshkey.FormatKnownHosts(state))); err != nil {
		return stats, err
	}
	stats.Written = len(state)
	return stats, nil
}

func replaceFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}

	// known_hosts is not secret, but keep conventional permissions.
	_ = os.Chmod(tmpName, 0o644)

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
