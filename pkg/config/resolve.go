package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Resolved carries the effective connection settings for one invocation,
// after flags, environment and the profile file have been merged.
type Resolved struct {
	ConnectURL  string
	RegistryURL string
	Token       string
	Profile     string
}

// Resolve merges, in order of precedence: command flags, KCADM_*
// environment variables, the selected profile.
func Resolve(cmd *cobra.Command) (Resolved, error) {
	flagConnect, _ := cmd.Root().PersistentFlags().GetString("connect-url")
	flagRegistry, _ := cmd.Root().PersistentFlags().GetString("registry-url")
	flagToken, _ := cmd.Root().PersistentFlags().GetString("token")

	envConnect := os.Getenv("KCADM_CONNECT_URL")
	envRegistry := os.Getenv("KCADM_REGISTRY_URL")
	envToken := os.Getenv("KCADM_TOKEN")

	cfg, _ := Load()
	prof := cfg.Active
	if p, _ := cmd.Root().PersistentFlags().GetString("profile"); p != "" {
		prof = p
	}
	cp := cfg.Profiles[prof]

	r := Resolved{
		ConnectURL:  firstNonEmpty(flagConnect, envConnect, cp.ConnectURL),
		RegistryURL: firstNonEmpty(flagRegistry, envRegistry, cp.RegistryURL),
		Token:       firstNonEmpty(flagToken, envToken, cp.Token),
		Profile:     prof,
	}
	if r.ConnectURL == "" && r.RegistryURL == "" {
		return Resolved{}, fmt.Errorf("no connect or registry URL set (flag/env/config)")
	}
	return r, nil
}

// ResolveNamed returns the settings of an explicitly named profile,
// ignoring flags and environment. Replication commands use it to address
// a second registry.
func ResolveNamed(name string) (Resolved, error) {
	cfg, err := Load()
	if err != nil {
		return Resolved{}, err
	}
	cp, ok := cfg.Profiles[name]
	if !ok {
		return Resolved{}, fmt.Errorf("profile %q not found", name)
	}
	return Resolved{
		ConnectURL:  cp.ConnectURL,
		RegistryURL: cp.RegistryURL,
		Token:       cp.Token,
		Profile:     name,
	}, nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
