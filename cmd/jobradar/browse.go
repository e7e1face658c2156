package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/search"
	"github.com/amishk599/jobradar/internal/tui"
)

// loaderMargin lets the pipeline hit its own batch timeout and return partial results first.
const loaderMargin = 15 * time.Second

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse saved searches interactively (TUI)",
	Long:  "Shows the saved-search picker, runs the chosen search and opens the split-pane results view.",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(cfg.Watch.Searches) == 0 {
		fmt.Println("No saved searches in config (watch.searches).")
		return nil
	}

	// Any log output while the alt-screen is active corrupts the display.
	silent := discardLogger()
	p, err := buildPipeline(context.Background(), cfg, newHTTPClient(), silent)
	if err != nil {
		return err
	}
	defer p.Close()

	for {
		choice, err := tui.RunSearchPicker(cfg.Watch.Searches)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}
		saved := cfg.Watch.Searches[choice]

		resp, err := tui.RunLoader(saved.Name, cfg.Search.BatchTimeout+loaderMargin, func(ctx context.Context) (*search.Response, error) {
			return p.searcher.Search(ctx, saved.Request)
		})
		if err != nil {
			if errors.Is(err, tui.ErrCancelled) {
				continue
			}
			fmt.Printf("Search failed: %v\n", err)
			continue
		}

		wantQuit, err := tui.RunBrowser(resp)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
	}
}
