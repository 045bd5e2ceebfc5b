package deploy

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// stageArtifact recreates the staging directory and copies the built binary
// into it, preserving the executable bit. The directory is always removed
// first so the transfer never picks up stale artifacts.
func stageArtifact(artifact, stagingDir string) error {
	if err := os.RemoveAll(stagingDir); err != nil {
		return fmt.Errorf("removing %s: %w", stagingDir, err)
	}
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", stagingDir, err)
	}

	src, err := os.Open(artifact)
	if err != nil {
		return fmt.Errorf("opening %s: %w", artifact, err)
	}
	defer src.Close()

	dstPath := filepath.Join(stagingDir, filepath.Base(artifact))
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copying %s: %w", artifact, err)
	}
	return dst.Close()
}
