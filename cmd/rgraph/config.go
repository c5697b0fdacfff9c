package main

import (
	"fmt"
	"os"

	"github.com/matsen/researchgraph/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
	Long: `Inspect configuration.

Settings come from ~/.config/rgraph/config.yml (or --config), overridden by
environment variables:
  S2_API_KEY, OPENALEX_MAILTO, RGRAPH_SOURCE, RGRAPH_LISTEN,
  RGRAPH_CACHE, REDIS_ADDR, OLLAMA_URL

A .env file in the working directory is loaded first.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	data, err := cfg.YAML()
	if err != nil {
		return err
	}
	if humanOutput {
		_, err = os.Stdout.Write(data)
		return err
	}

	// Round-trip through YAML so JSON output shares the masked keys and
	// human-readable durations.
	var shown map[string]interface{}
	if err := yaml.Unmarshal(data, &shown); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return outputJSON(shown)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.Path()
	}

	_, err := os.Stat(path)
	status := "present"
	if os.IsNotExist(err) {
		status = "missing"
	}

	if humanOutput {
		fmt.Printf("%s (%s)\n", path, status)
		return nil
	}
	return outputJSON(StatusResponse{Status: status, Path: path})
}
