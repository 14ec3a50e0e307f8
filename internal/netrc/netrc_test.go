package netrc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mlharness/gluetune/internal/config"
)

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".netrc")
	if err := Write(path, "mlflow.example.com", "token", "secret"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "machine mlflow.example.com\n  login token\n  password secret\n"
	if string(data) != want {
		t.Errorf("credential file = %q, want %q", string(data), want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credential file permissions = %o, want 600", perm)
	}
}

func TestWriteReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".netrc")
	if err := os.WriteFile(path, []byte("machine old.example.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Write(path, "mlflow.example.com", "token", "secret"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions after rewrite = %o, want 600", perm)
	}
}

func TestSetupSkips(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{name: "no token", cfg: &config.Config{TrackingURI: "http://localhost:5000"}},
		{name: "offline mode", cfg: &config.Config{TrackingURI: "http://localhost:5000", TrackingToken: "secret", Mode: config.ModeOffline}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrote, err := Setup(tt.cfg)
			if err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			if wrote {
				t.Error("Setup() wrote a credential, want skip")
			}
		})
	}
}
