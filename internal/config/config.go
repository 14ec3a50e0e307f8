package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ModeOffline suppresses credential bootstrap and remote tracking.
const ModeOffline = "offline"

// Databricks domain suffixes for URL detection
var databricksDomains = []string{
	".cloud.databricks.com",
	".azuredatabricks.net",
	".gcp.databricks.com",
}

type Config struct {
	TrackingURI     string
	ExperimentID    string
	TrackingToken   string
	Mode            string
	TrainerCommand  string
	DatabricksHost  string
	DatabricksToken string
}

func New() *Config {
	return &Config{
		TrackingURI:     viper.GetString("tracking_uri"),
		ExperimentID:    viper.GetString("experiment_id"),
		TrackingToken:   viper.GetString("tracking_token"),
		Mode:            viper.GetString("mode"),
		TrainerCommand:  viper.GetString("trainer_command"),
		DatabricksHost:  viper.GetString("databricks_host"),
		DatabricksToken: viper.GetString("databricks_token"),
	}
}

func (c *Config) Validate() error {
	if c.Offline() {
		return nil
	}
	if c.TrackingURI == "" {
		return fmt.Errorf("tracking URI is required")
	}
	if c.ExperimentID == "" {
		return fmt.Errorf("experiment ID must be specified via MLFLOW_EXPERIMENT_ID")
	}
	return nil
}

// Offline reports whether remote tracking is switched off for this run.
func (c *Config) Offline() bool {
	return c.Mode == ModeOffline
}

// TrackingHost returns the hostname of the tracking URI, for use as the
// netrc machine entry.
func (c *Config) TrackingHost() string {
	return c.extractHostFromURL(c.TrackingURI)
}

// IsDatabricks checks if the tracking URI points to Databricks
func (c *Config) IsDatabricks() bool {
	if c.TrackingURI == "databricks" {
		return true
	}

	if strings.HasPrefix(c.TrackingURI, "databricks://") {
		return true
	}

	if strings.HasPrefix(c.TrackingURI, "https://") {
		host := c.extractHostFromURL(c.TrackingURI)
		return c.isDatabricksHost(host)
	}

	return false
}

// extractHostFromURL extracts the hostname from a URL
func (c *Config) extractHostFromURL(url string) string {
	host := strings.TrimPrefix(url, "https://")
	host = strings.TrimPrefix(host, "http://")
	// Remove any path components
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	// Remove any port
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}

// isDatabricksHost checks if a hostname belongs to Databricks
func (c *Config) isDatabricksHost(host string) bool {
	for _, domain := range databricksDomains {
		if strings.HasSuffix(host, domain) {
			return true
		}
	}
	return false
}

// GetDatabricksProfile extracts the profile name from databricks://{profile} URI
func (c *Config) GetDatabricksProfile() string {
	if !strings.HasPrefix(c.TrackingURI, "databricks://") {
		return ""
	}

	profile := strings.TrimPrefix(c.TrackingURI, "databricks://")
	if idx := strings.Index(profile, "/"); idx != -1 {
		profile = profile[:idx]
	}
	return profile
}
