package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	stageRunID string
	extractURL string
	runURL     string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Fetch and parse the stadium table into the handoff store",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := resolveRunID(stageRunID)
		if err != nil {
			return err
		}
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Pipeline.RunExtract(cmd.Context(), runID, extractURL)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "extracted %d rows for run %s\n", n, runID)
		return nil
	},
}

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Enrich the extracted rows of a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := resolveRunID(stageRunID)
		if err != nil {
			return err
		}
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Pipeline.RunTransform(cmd.Context(), runID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "enriched %d records for run %s\n", n, runID)
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Write the enriched records of a run to blob storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := resolveRunID(stageRunID)
		if err != nil {
			return err
		}
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		key, err := env.Pipeline.RunLoad(cmd.Context(), runID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run extract, transform and load in one process",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := stageRunID
		if runID == "" {
			runID = uuid.NewString()
		}
		env, err := initPipeline(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Run(cmd.Context(), runID, runURL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Object)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{extractCmd, transformCmd, loadCmd, runCmd} {
		c.Flags().StringVar(&stageRunID, "run-id", "", "run id scoping the handoff entries (default RUN_ID)")
		rootCmd.AddCommand(c)
	}
	extractCmd.Flags().StringVar(&extractURL, "url", "", "page to scrape (default SOURCE_URL)")
	runCmd.Flags().StringVar(&runURL, "url", "", "page to scrape (default SOURCE_URL)")
}
