package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/websearch/internal/infrastructure/server"
	"github.com/GriffinCanCode/AgentOS/websearch/internal/websearch"
)

var queryWait time.Duration

// queryCmd runs a single query against the configured sources
var queryCmd = &cobra.Command{
	Use:   "query [keyword] [search...]",
	Short: "Build results for one query",
	Long: `Builds the results for an action keyword and search text.

Examples:
  websearch query g golang generics
  websearch query wiki "alan turing" --wait 1s`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

// sourcesCmd lists the configured search sources
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured search sources",
	Args:  cobra.NoArgs,
	RunE:  listSources,
}

func openPlugin() (*websearch.Plugin, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := server.NewLogger(cfg)
	plugin, err := server.NewPlugin(cfg, logger.Logger, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugin: %w", err)
	}
	return plugin, nil
}

func runQuery(cmd *cobra.Command, args []string) (err error) {
	plugin, err := openPlugin()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := plugin.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	updates := make(chan websearch.ResultsUpdatedEvent, 1)
	unsubscribe := plugin.OnResultsUpdated(func(ev websearch.ResultsUpdatedEvent) {
		select {
		case updates <- ev:
		default:
		}
	})
	defer unsubscribe()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	q := websearch.ParseQuery(strings.Join(args, " "))
	list := plugin.Query(ctx, q)
	out := cmd.OutOrStdout()
	printResults(out, list.Snapshot())

	if queryWait <= 0 {
		return nil
	}

	timer := time.NewTimer(queryWait)
	defer timer.Stop()
	for {
		select {
		case ev := <-updates:
			if ev.QueryID != list.QueryID() {
				continue
			}
			fmt.Fprintln(out, "\nupdated:")
			printResults(out, ev.Results.Snapshot())
			return nil
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func listSources(cmd *cobra.Command, _ []string) (err error) {
	plugin, err := openPlugin()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := plugin.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEYWORD\tTITLE\tENABLED\tURL")
	for _, s := range plugin.Sources() {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", s.ActionKeyword, s.Title, s.Enabled, s.URL)
	}
	return w.Flush()
}

func printResults(out io.Writer, results []websearch.Result) {
	if len(results) == 0 {
		fmt.Fprintln(out, "no results")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Score, r.Title, r.SubTitle, r.URL)
	}
	w.Flush()
}
