// Package config handles loading and validating finger configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// A missing config file is not an error: the defaults describe a working
// setup with bots under ./bots and settings in ./settings.json.
//
// Security Considerations:
//   - Broker passwords and InfluxDB tokens should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("finger.yaml")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Bots.Dir)
package config
