// Package netrc writes the per-user credential file the tracking client
// reads for non-interactive authentication.
package netrc

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mlharness/gluetune/internal/config"
)

// DefaultLogin is the login field written for token-based authentication.
const DefaultLogin = "token"

// Setup writes the tracking credential to the user's netrc when a token is
// configured and the run is not offline. It reports whether a credential was
// written. Best effort: callers treat an error as a warning, not a failure.
func Setup(cfg *config.Config) (bool, error) {
	if cfg.TrackingToken == "" || cfg.Offline() {
		return false, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return false, fmt.Errorf("failed to resolve home directory: %w", err)
	}

	path := filepath.Join(home, ".netrc")
	if err := Write(path, cfg.TrackingHost(), DefaultLogin, cfg.TrackingToken); err != nil {
		return false, err
	}
	return true, nil
}

// Write writes a single-machine netrc entry to path with owner-only
// permissions.
func Write(path, machine, login, password string) error {
	entry := fmt.Sprintf("machine %s\n  login %s\n  password %s\n", machine, login, password)
	if err := os.WriteFile(path, []byte(entry), 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	// WriteFile does not chmod an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict credential file permissions: %w", err)
	}
	return nil
}
