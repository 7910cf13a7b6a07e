package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/stadium-data-etl/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.csv>",
	Short: "Check a written stadium CSV for integrity violations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}

		report, err := validate.CSV(data)
		if err != nil {
			return eris.Wrapf(err, "decode %s", args[0])
		}

		out := cmd.OutOrStdout()
		for _, v := range report.Violations {
			fmt.Fprintln(out, v)
		}
		if !report.Passed() {
			return eris.Errorf("%d violations in %d records", len(report.Violations), report.Records)
		}
		fmt.Fprintf(out, "PASS: %d records\n", report.Records)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
