package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/store"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded search runs",
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the results of one recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to list")
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "print the run as JSON")
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.RecentRuns(context.Background(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Printf("%-36s  %-16s  %-7s  %s\n", "ID", "When", "Results", "Request")
	fmt.Println(strings.Repeat("─", 100))
	for _, r := range runs {
		fmt.Printf("%-36s  %-16s  %-7d  %s\n", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Stats.AfterDedup, describeRequest(r))
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.GetRun(context.Background(), args[0])
	if err != nil {
		return err
	}
	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Printf("Run %s · %s · %s\n", run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"), describeRequest(run))
	for i, sc := range run.Results {
		fmt.Printf("%3d. [%d] %s\n     %s\n", i+1, sc.Score, sc.Candidate.Title, sc.Candidate.Link)
	}
	return nil
}

func describeRequest(r store.Run) string {
	parts := []string{r.Request.RoleTitle, string(r.Request.LocationMode)}
	if r.Request.LocationText != "" {
		parts = append(parts, r.Request.LocationText)
	}
	if r.Request.Industry != "" {
		parts = append(parts, r.Request.Industry)
	}
	return strings.Join(parts, " · ")
}
