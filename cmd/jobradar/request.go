package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobradar/internal/config"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/search"
)

// requestFlags are shared by commands that take a search request on the command line.
type requestFlags struct {
	role     string
	mode     string
	location string
	industry string
	recency  string
	saved    string
}

func (f *requestFlags) register(cmd *cobra.Command, withRecency bool) {
	cmd.Flags().StringVarP(&f.role, "role", "r", "", "role title to search for")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "remote", "location mode: remote, onsite or hybrid")
	cmd.Flags().StringVarP(&f.location, "location", "l", "", "location text (required for onsite and hybrid)")
	cmd.Flags().StringVarP(&f.industry, "industry", "i", "", "optional industry key, e.g. fintech")
	if withRecency {
		cmd.Flags().StringVar(&f.recency, "recency", "any", "only results published within: any, day, week or month")
	}
	cmd.Flags().StringVar(&f.saved, "saved", "", "run a saved search from watch.searches by name instead")
}

// request resolves the flags, or the named saved search, to a search.Request.
func (f *requestFlags) request(cfg *config.Config) (search.Request, error) {
	if f.saved != "" {
		ws, ok := cfg.Watch.Find(f.saved)
		if !ok {
			return search.Request{}, fmt.Errorf("no saved search named %q", f.saved)
		}
		return ws.Request, nil
	}
	mode, err := model.ParseLocationMode(f.mode)
	if err != nil {
		return search.Request{}, err
	}
	recency, err := model.ParseRecency(f.recency)
	if err != nil {
		return search.Request{}, err
	}
	return search.Request{
		RoleTitle:    f.role,
		LocationMode: mode,
		LocationText: f.location,
		Industry:     f.industry,
		Recency:      recency,
	}, nil
}
