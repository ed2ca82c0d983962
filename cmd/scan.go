package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List rows with missing ad metrics and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		pending, err := newScanner(cfg).Scan(cmd.Context())
		if err != nil {
			return err
		}

		out := struct {
			Pending int      `json:"pending"`
			Rows    []int    `json:"rows,omitempty"`
			URLs    []string `json:"profile_urls,omitempty"`
		}{Pending: len(pending)}
		for _, row := range pending {
			out.Rows = append(out.Rows, row.Row)
			out.URLs = append(out.URLs, row.ProfileURL)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
