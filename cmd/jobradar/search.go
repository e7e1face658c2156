package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/search"
)

var (
	searchReq    requestFlags
	searchJSON   bool
	searchLimit  int
	searchNotify bool
	searchSave   bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print ranked postings",
	Long:  "Builds the query plan for a role, fans it out to the configured providers and prints the filtered, deduplicated and ranked postings.",
	RunE:  runSearch,
}

func init() {
	searchReq.register(searchCmd, true)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the full response as JSON")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 25, "maximum postings to print (0 = all)")
	searchCmd.Flags().BoolVar(&searchNotify, "notify", false, "send the results through the configured notifier")
	searchCmd.Flags().BoolVar(&searchSave, "save", false, "record the run in search history")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	req, err := searchReq.request(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := newHTTPClient()
	p, err := buildPipeline(ctx, cfg, httpClient, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	resp, err := p.searcher.Search(ctx, req)
	if err != nil {
		return err
	}

	if searchSave {
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()
		id, err := s.RecordRun(ctx, resp)
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		logger.Info("run saved", "id", id)
	}

	if searchNotify && len(resp.Results) > 0 {
		n := setupNotifier(cfg, httpClient, logger)
		if err := n.Notify(resp.Candidates()); err != nil {
			logger.Error("notification failed", "error", err)
		}
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	printResults(os.Stdout, resp, searchLimit)
	return nil
}

func truncateText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printResults(w io.Writer, resp *search.Response, limit int) {
	st := resp.Stats
	fmt.Fprintf(w, "%d queries (%d ok, %d failed) · %d raw → %d kept → %d unique",
		st.QueriesIssued, st.QueriesSucceeded, st.QueriesFailed, st.RawCandidates, st.AfterFilter, st.AfterDedup)
	if st.TimedOut {
		fmt.Fprintf(w, " · timed out after %d/%d queries", st.QueriesCompleted, st.QueriesIssued)
	}
	fmt.Fprintln(w)

	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "\nNo matching postings found.")
		return
	}

	results := resp.Results
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	fmt.Fprintf(w, "\n%-4s %-5s %-20s %s\n", "#", "Score", "Source", "Title")
	fmt.Fprintln(w, strings.Repeat("─", 90))
	for i, s := range results {
		fmt.Fprintf(w, "%-4d %-5d %-20s %s\n", i+1, s.Score, s.Candidate.Source, truncateText(s.Candidate.Title, 70))
		fmt.Fprintf(w, "%-31s %s\n", "", s.Candidate.Link)
	}
	if len(results) < len(resp.Results) {
		fmt.Fprintf(w, "\n… %d more (use --limit 0 to show all)\n", len(resp.Results)-len(results))
	}
}
