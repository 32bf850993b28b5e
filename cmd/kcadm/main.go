package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{Use: "kcadm"}

func init() {
	rootCmd.PersistentFlags().String("connect-url", "", "Connector service base URL")
	rootCmd.PersistentFlags().String("registry-url", "", "Schema registry base URL")
	rootCmd.PersistentFlags().String("token", "", "Bearer token")
	rootCmd.PersistentFlags().String("profile", "", "Profile name in config (overrides active)")
	rootCmd.PersistentFlags().String("output", "table", "Output format (table|json)")
	rootCmd.PersistentFlags().String("events-config", "", "YAML file configuring trail event sinks")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Listen address serving /metrics while the command runs")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(newSubjectsCmd())
	rootCmd.AddCommand(newVersionsCmd())
	rootCmd.AddCommand(newCopyCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newFindSchemaCmd())
	rootCmd.AddCommand(newConnectorsCmd())
	rootCmd.AddCommand(newCheckpointCmd())
	rootCmd.AddCommand(newProfileCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
