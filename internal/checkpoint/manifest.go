package checkpoint

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// ManifestVersion is the sidecar manifest schema version this build reads.
const ManifestVersion = 1

// ManifestSuffix is appended to a checkpoint filename to locate its sidecar.
const ManifestSuffix = ".meta.yaml"

// Manifest is the sidecar metric record written next to a checkpoint file.
// It exists because filename-encoded metrics are lossy: the trainer rounds
// values to fit the filename template.
type Manifest struct {
	Version int                `yaml:"version"`
	Metrics map[string]float64 `yaml:"metrics"`
}

// ParseManifest decodes a sidecar manifest and rejects unsupported versions.
func ParseManifest(reader io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(reader).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version: %d", m.Version)
	}
	return &m, nil
}

// applyManifest overlays sidecar metrics onto filename-derived ones. A
// missing sidecar is the normal case; a malformed one is skipped with a
// warning so a stray file cannot break the scan.
func applyManifest(ckptPath string, metrics map[string]any) {
	file, err := os.Open(ckptPath + ManifestSuffix)
	if err != nil {
		return
	}
	defer file.Close()

	manifest, err := ParseManifest(file)
	if err != nil {
		log.Warn("ignoring checkpoint manifest", "path", ckptPath+ManifestSuffix, "err", err)
		return
	}
	for key, value := range manifest.Metrics {
		metrics[key] = value
	}
}
