// Package tracking wraps the MLflow tracking API used to record training
// runs: hyperparameters at run start, the trained checkpoint artifact at run
// end, and the run lifecycle in between.
package tracking

import (
	"fmt"
	"strings"

	"github.com/databricks/databricks-sdk-go"

	"github.com/mlharness/gluetune/internal/config"
)

type Client struct {
	client *databricks.WorkspaceClient
	config *config.Config
}

func NewClient(cfg *config.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var databricksConfig *databricks.Config

	if cfg.IsDatabricks() {
		// Databricks MLflow configuration
		databricksConfig = &databricks.Config{}

		if cfg.TrackingURI == "databricks" {
			if cfg.DatabricksHost != "" {
				databricksConfig.Host = cfg.DatabricksHost
			}
		} else if profile := cfg.GetDatabricksProfile(); profile != "" {
			databricksConfig.Profile = profile
		} else {
			databricksConfig.Host = cfg.TrackingURI
		}

		if cfg.DatabricksToken != "" {
			databricksConfig.Token = cfg.DatabricksToken
		}

		if databricksConfig.Host == "" && databricksConfig.Profile == "" {
			return nil, fmt.Errorf("Databricks host or profile is required when tracking to Databricks MLflow")
		}
	} else {
		// Regular MLflow server configuration
		databricksConfig = &databricks.Config{
			Host: cfg.TrackingURI,
			// For regular MLflow server, use a dummy token to bypass authentication
			Token: "dummy-token-for-regular-mlflow",
		}
		if cfg.TrackingToken != "" {
			databricksConfig.Token = cfg.TrackingToken
		}
	}

	client, err := databricks.NewWorkspaceClient(databricksConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracking client: %w", err)
	}

	return &Client{
		client: client,
		config: cfg,
	}, nil
}

// RunURL returns the tracking UI address for a run.
func (c *Client) RunURL(experimentID, runID string) string {
	base := strings.TrimSuffix(c.config.TrackingURI, "/")
	return fmt.Sprintf("%s/#/experiments/%s/runs/%s", base, experimentID, runID)
}
