package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/wizenheimer/facet"
	"gopkg.in/urfave/cli.v1"
)

var version = ""

var commonFlags = []cli.Flag{
	cli.StringFlag{Name: "items, i", Usage: "JSON file with the items to index"},
	cli.StringFlag{Name: "config, c", Usage: "JSON or YAML configuration file"},
	cli.StringFlag{Name: "query, q", Usage: "full-text query"},
	cli.StringSliceFlag{Name: "filter, f", Usage: "facet filter as field=value (repeatable)"},
	cli.StringSliceFlag{Name: "not-filter", Usage: "negative facet filter as field=value (repeatable)"},
	cli.StringFlag{Name: "filters-query", Usage: "boolean filter query, e.g. 'tags:a OR genre:b'"},
	cli.IntFlag{Name: "page", Value: 1, Usage: "page number"},
	cli.IntFlag{Name: "per-page", Usage: "results per page"},
}

var searchCommand = cli.Command{
	Name:  "search",
	Usage: "Search items and print results with facets",
	Flags: append(append([]cli.Flag{}, commonFlags...),
		cli.StringFlag{Name: "sort, s", Usage: "name of a configured sorting"},
		cli.BoolFlag{Name: "all", Usage: "include every filtered item"},
	),
	Action: runSearch,
}

var aggregationCommand = cli.Command{
	Name:  "aggregation",
	Usage: "List the buckets of one facet",
	Flags: append(append([]cli.Flag{}, commonFlags...),
		cli.StringFlag{Name: "name, n", Usage: "aggregation name"},
		cli.StringFlag{Name: "prefix", Usage: "only values starting with this prefix"},
	),
	Action: runAggregation,
}

var similarCommand = cli.Command{
	Name:  "similar",
	Usage: "List items sharing values with a given item",
	Flags: append(append([]cli.Flag{}, commonFlags...),
		cli.StringFlag{Name: "id", Usage: "external id of the reference item"},
		cli.StringFlag{Name: "field", Usage: "field to compare"},
		cli.IntFlag{Name: "minimum", Usage: "minimum number of shared values"},
	),
	Action: runSimilar,
}

func main() {
	app := cli.NewApp()

	app.Name = "facet"
	app.HelpName = "facet"
	app.Usage = "in-memory faceted search over a JSON collection"
	app.Version = version

	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "verbose, v", Usage: "log debug output to stderr"},
	}

	app.Commands = []cli.Command{
		searchCommand,
		aggregationCommand,
		similarCommand,
	}

	app.RunAndExitOnError()
}

func openEngine(ctx *cli.Context) (*facet.Engine, error) {
	if ctx.String("items") == "" {
		return nil, fmt.Errorf("--items is required")
	}
	items, err := facet.LoadItems(ctx.String("items"))
	if err != nil {
		return nil, err
	}

	cfg := facet.NewConfig()
	if path := ctx.String("config"); path != "" {
		if cfg, err = facet.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	logger := facet.NoopLogger()
	if ctx.GlobalBool("verbose") {
		logger = facet.NewTextLogger(slog.LevelDebug)
	}
	return facet.New(items, cfg, facet.WithLogger(logger))
}

func parseSelection(values []string) (facet.Selection, error) {
	if len(values) == 0 {
		return nil, nil
	}
	sel := make(facet.Selection)
	for _, v := range values {
		field, value, ok := strings.Cut(v, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q, expected field=value", v)
		}
		sel[field] = append(sel[field], value)
	}
	return sel, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSearch(ctx *cli.Context) error {
	engine, err := openEngine(ctx)
	if err != nil {
		return err
	}
	filters, err := parseSelection(ctx.StringSlice("filter"))
	if err != nil {
		return err
	}
	notFilters, err := parseSelection(ctx.StringSlice("not-filter"))
	if err != nil {
		return err
	}
	res, err := engine.Search(facet.SearchOptions{
		Query:              ctx.String("query"),
		Filters:            filters,
		NotFilters:         notFilters,
		FiltersQuery:       ctx.String("filters-query"),
		Sort:               ctx.String("sort"),
		Page:               ctx.Int("page"),
		PerPage:            ctx.Int("per-page"),
		IsAllFilteredItems: ctx.Bool("all"),
	})
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runAggregation(ctx *cli.Context) error {
	engine, err := openEngine(ctx)
	if err != nil {
		return err
	}
	filters, err := parseSelection(ctx.StringSlice("filter"))
	if err != nil {
		return err
	}
	notFilters, err := parseSelection(ctx.StringSlice("not-filter"))
	if err != nil {
		return err
	}
	res, err := engine.Aggregation(facet.AggregationOptions{
		Name:         ctx.String("name"),
		Prefix:       ctx.String("prefix"),
		Query:        ctx.String("query"),
		Filters:      filters,
		NotFilters:   notFilters,
		FiltersQuery: ctx.String("filters-query"),
		Page:         ctx.Int("page"),
		PerPage:      ctx.Int("per-page"),
	})
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runSimilar(ctx *cli.Context) error {
	engine, err := openEngine(ctx)
	if err != nil {
		return err
	}
	res, err := engine.Similar(ctx.String("id"), facet.SimilarOptions{
		Field:   ctx.String("field"),
		Minimum: ctx.Int("minimum"),
		Page:    ctx.Int("page"),
		PerPage: ctx.Int("per-page"),
	})
	if err != nil {
		return err
	}
	return printJSON(res)
}
