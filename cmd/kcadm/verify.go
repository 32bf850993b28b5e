package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	var minVersions int
	cmd := &cobra.Command{
		Use:   "verify <subject>",
		Short: "Check that a subject is visible on the registry's read path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			cli, err := registryClient(cmd)
			if err != nil {
				return err
			}
			rep, flush, err := buildReplicator(cmd, log)
			if err != nil {
				return err
			}
			defer flush()
			serveMetrics(cmd, log)
			res, err := rep.VerifySubjectRegistered(context.Background(), cli, args[0], minVersions)
			if err != nil {
				return err
			}
			if outputFormat(cmd) == "json" {
				return printJSON(res)
			}
			if res.OK {
				fmt.Printf("ok via %s after %d attempt(s): %s\n", res.Method, res.Attempts, res.Evidence)
			} else {
				fmt.Printf("not confirmed after %d attempt(s)\n", res.Attempts)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&minVersions, "min-versions", 1, "Minimum version count expected")
	return cmd
}

func newFindSchemaCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "find-schema",
		Short: "Scan every subject for an exact schema content match",
		Long: `Reads a canonical schema string from --file (or stdin) and walks the
registry's subjects, comparing each version's normalized content. Meant as
a diagnostic for schemas that were written but are not visible under the
expected subject.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if file != "" {
				data, err = os.ReadFile(file)
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			log, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()
			cli, err := registryClient(cmd)
			if err != nil {
				return err
			}
			rep, flush, err := buildReplicator(cmd, log)
			if err != nil {
				return err
			}
			defer flush()
			m, err := rep.FindSubjectBySchema(context.Background(), cli, string(data))
			if err != nil {
				return err
			}
			if m == nil {
				fmt.Println("no match")
				return nil
			}
			if outputFormat(cmd) == "json" {
				return printJSON(m)
			}
			fmt.Printf("%s v%d\n", m.Subject, m.Version)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "File holding the schema content (stdin when omitted)")
	return cmd
}
