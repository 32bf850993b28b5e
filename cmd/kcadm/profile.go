package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/giulio1979/kafka-connect-admin/pkg/config"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage connection profiles",
	}
	cmd.AddCommand(newProfileListCmd(), newProfileSetCmd(), newProfileUseCmd())
	return cmd
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if outputFormat(cmd) == "json" {
				return printJSON(cfg)
			}
			tw := tablewriter.NewWriter(os.Stdout)
			tw.SetHeader([]string{"Name", "Connect URL", "Registry URL", "Active"})
			for _, name := range profileNames(cfg) {
				p := cfg.Profiles[name]
				active := ""
				if name == cfg.Active {
					active = "*"
				}
				tw.Append([]string{name, p.ConnectURL, p.RegistryURL, active})
			}
			tw.Render()
			return nil
		},
	}
}

// profileNames returns all profile names in stable, sorted order.
func profileNames(cfg *config.File) []string {
	names := make([]string, 0, len(cfg.Profiles))
	for n := range cfg.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func newProfileSetCmd() *cobra.Command {
	var connectURL, registryURL, token string
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Create or update a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			p := cfg.Profiles[args[0]]
			p.Name = args[0]
			if connectURL != "" {
				p.ConnectURL = connectURL
			}
			if registryURL != "" {
				p.RegistryURL = registryURL
			}
			if token != "" {
				p.Token = token
			}
			cfg.Profiles[args[0]] = p
			return config.Save(cfg)
		},
	}
	cmd.Flags().StringVar(&connectURL, "connect-url", "", "Connector service base URL")
	cmd.Flags().StringVar(&registryURL, "registry-url", "", "Schema registry base URL")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	return cmd
}

func newProfileUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Select the active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if _, ok := cfg.Profiles[args[0]]; !ok {
				return fmt.Errorf("profile %q not found", args[0])
			}
			cfg.Active = args[0]
			return config.Save(cfg)
		},
	}
}
