package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var queriesReq requestFlags

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Print the query plan for a search without running it",
	RunE:  runQueries,
}

func init() {
	queriesReq.register(queriesCmd, false)
	rootCmd.AddCommand(queriesCmd)
}

func runQueries(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	req, err := queriesReq.request(cfg)
	if err != nil {
		return err
	}

	queries, err := newPlanner(cfg, logger).Plan(req)
	if err != nil {
		return err
	}
	for i, q := range queries {
		fmt.Printf("%2d. %s\n", i+1, q)
	}
	return nil
}
