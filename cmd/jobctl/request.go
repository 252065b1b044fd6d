package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"jobmate/aggregator-service/internal/model"
	"jobmate/aggregator-service/internal/queue"
)

type requestOptions struct {
	source         string
	search         string
	city           string
	state          string
	stateAbbrev    string
	geoID          string
	culture        string
	category       string
	radius         int
	minSalary      int
	maxSalary      int
	latitude       float64
	longitude      float64
	remote         bool
	cutoff         string
	excludeTitle   []string
	excludeCompany []string
	timeout        time.Duration
	rawJSON        bool
}

func newRequestCommand(root *rootOptions) *cobra.Command {
	opts := &requestOptions{}
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Send one aggregation request and print the listings",
		Example: `  jobctl request --source Dice --search "go developer" --city Chicago --state-abbrev IL
  jobctl request --source All --exclude-title senior,lead --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := opts.build()
			if err != nil {
				return err
			}
			body, err := json.Marshal(req)
			if err != nil {
				return fmt.Errorf("encode request: %w", err)
			}

			rdb, err := root.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer rdb.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			reply, err := queue.NewClient(rdb, root.queue).Call(ctx, body)
			if err != nil {
				return fmt.Errorf("request %s: %w", req.Source, err)
			}

			if opts.rawJSON {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(reply))
				return err
			}
			var listings []model.JobListing
			if err := json.Unmarshal(reply, &listings); err != nil {
				return fmt.Errorf("decode reply: %w", err)
			}
			renderListings(cmd.OutOrStdout(), listings)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.source, "source", "All", "site to query: LinkedIn, BuiltIn, Dice, Indeed, Glassdoor, Dummy or All")
	f.StringVar(&opts.search, "search", "", "search terms")
	f.StringVar(&opts.city, "city", "", "city name")
	f.StringVar(&opts.state, "state", "", "state name")
	f.StringVar(&opts.stateAbbrev, "state-abbrev", "", "state abbreviation")
	f.StringVar(&opts.geoID, "geo-id", "", "LinkedIn geo id")
	f.StringVar(&opts.culture, "culture", "en-US", "culture tag used to derive the country")
	f.StringVar(&opts.category, "category", "", "BuiltIn job category")
	f.IntVar(&opts.radius, "radius", 25, "search radius in miles")
	f.IntVar(&opts.minSalary, "min-salary", 0, "minimum salary")
	f.IntVar(&opts.maxSalary, "max-salary", 0, "maximum salary")
	f.Float64Var(&opts.latitude, "latitude", 0, "latitude for Dice")
	f.Float64Var(&opts.longitude, "longitude", 0, "longitude for Dice")
	f.BoolVar(&opts.remote, "remote", false, "remote positions only")
	f.StringVar(&opts.cutoff, "cutoff", "", "drop listings posted before this time (RFC 3339 or 2006-01-02T15:04:05)")
	f.StringSliceVar(&opts.excludeTitle, "exclude-title", nil, "drop listings whose title contains any of these words")
	f.StringSliceVar(&opts.excludeCompany, "exclude-company", nil, "drop listings from these companies")
	f.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "how long to wait for the reply")
	f.BoolVar(&opts.rawJSON, "json", false, "print the raw JSON reply")

	return cmd
}

func (o *requestOptions) build() (*model.RequestSpecification, error) {
	req := &model.RequestSpecification{
		Source:             o.source,
		IsRemote:           o.remote,
		Radius:             o.radius,
		SearchTerms:        o.search,
		CultureTag:         o.culture,
		City:               o.city,
		State:              o.state,
		StateAbbrev:        o.stateAbbrev,
		GeoID:              o.geoID,
		Latitude:           o.latitude,
		Longitude:          o.longitude,
		MaxSalary:          o.maxSalary,
		MinSalary:          o.minSalary,
		BuiltInJobCategory: o.category,
		CompanyFilterTerms: o.excludeCompany,
		TitleFilterTerms:   o.excludeTitle,
	}
	if o.cutoff != "" {
		t, err := model.ParseTimestamp(o.cutoff)
		if err != nil {
			return nil, fmt.Errorf("--cutoff: %w", err)
		}
		req.CutoffTime = model.Timestamp{Time: t}
	}
	return req, nil
}

func renderListings(w io.Writer, listings []model.JobListing) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Posted", "Title", "Company", "Location", "Id", "Link"})
	for _, l := range listings {
		t.AppendRow(table.Row{l.PostDateTime, l.Title, l.Company, l.Location, l.JobsiteID, l.LinkToJobListing})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d listings", len(listings))})
	t.Render()
}
