package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newSubjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List subjects in the schema registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := registryClient(cmd)
			if err != nil {
				return err
			}
			subjects, err := cli.ListSubjects(context.Background())
			if err != nil {
				return err
			}
			if outputFormat(cmd) == "json" {
				return printJSON(subjects)
			}
			for _, s := range subjects {
				fmt.Println(s)
			}
			return nil
		},
	}
}

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions <subject>",
		Short: "List versions of a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := registryClient(cmd)
			if err != nil {
				return err
			}
			ctx := context.Background()
			versions, err := cli.ListVersions(ctx, args[0])
			if err != nil {
				return err
			}
			if outputFormat(cmd) == "json" {
				return printJSON(versions)
			}
			tw := tablewriter.NewWriter(os.Stdout)
			tw.SetHeader([]string{"Version", "Global ID", "Type"})
			for _, v := range versions {
				doc, err := cli.GetVersion(ctx, args[0], v)
				if err != nil {
					tw.Append([]string{strconv.Itoa(v), "?", "?"})
					continue
				}
				tw.Append([]string{strconv.Itoa(v), strconv.Itoa(doc.GlobalID), string(doc.SchemaType)})
			}
			tw.Render()
			return nil
		},
	}
}
