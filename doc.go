/*
Package facet provides an in-memory faceted search engine for Go.

Given a fixed collection of records ("items") and a list of facet fields
("aggregations"), facet builds one inverted index per field and answers
filtered searches: conjunctive, disjunctive, negated and boolean filters
combined with free-text relevance search. Every response carries the facet
buckets (value, count, selected state) a filter panel needs, with sorting,
pagination and similarity lookups on top.

# Quick Start

	package main

	import (
	    "fmt"
	    "log"

	    "github.com/wizenheimer/facet"
	)

	func main() {
	    items := []facet.Item{
	        {"id": "1", "name": "Unforgiven", "genre": "Western", "tags": []any{"classic", "90s"}},
	        {"id": "2", "name": "Fargo", "genre": "Crime", "tags": []any{"90s"}},
	    }

	    cfg := facet.NewConfig().
	        WithAggregation("genre", &facet.Aggregation{Conjunction: facet.Bool(false)}).
	        WithAggregation("tags", &facet.Aggregation{Size: 20})

	    engine, err := facet.New(items, cfg)
	    if err != nil {
	        log.Fatal(err)
	    }

	    res, err := engine.Search(facet.SearchOptions{
	        Filters: facet.Selection{"tags": {"90s"}},
	    })
	    if err != nil {
	        log.Fatal(err)
	    }

	    fmt.Println(res.Pagination.Total) // 2
	    genre, _ := res.Aggregations.Get("genre")
	    for _, b := range genre.Buckets {
	        fmt.Println(b.Key, b.DocCount, b.Selected)
	    }
	}

# Facet semantics

Selected values of a conjunctive aggregation (the default) are AND-ed: an
item must hold all of them. Selected values of a disjunctive aggregation
(Conjunction: false) are OR-ed, and they restrict every other facet while the
facet itself keeps its unrestricted counts, so a panel still shows every
option. NotFilters exclude items holding a value.

FiltersQuery accepts a boolean expression over facet values:

	res, _ := engine.Search(facet.SearchOptions{
	    FiltersQuery: `genre:Western OR (tags:90s AND tags:"cult classic")`,
	})

# Building blocks

The engine is assembled from parts that can be used on their own:

BitSet: compressed id sets backed by roaring bitmaps.

FacetIndex: per-field value -> BitSet index, built by BuildIndex.

Matrix and FiltersMatrix: compute the per-request temp index from a base
index and a filter list or a parsed boolean query.

Aggregate: turns a temp index into sorted, truncated buckets with optional
statistics.

BM25FullText: the default full-text collaborator; replace it with
WithFullText.

# Configuration

Configurations can be loaded from JSON or YAML; aggregation order is kept:

	aggregations:
	  genre:
	    conjunction: false
	  tags:
	    size: 20
	    sort: [doc_count, key]
	    order: [desc, asc]
	  price:
	    show_facet_stats: true
	sortings:
	  name_asc:
	    field: name
	    order: asc
	searchable_fields: [description]

# Errors

Failures are typed. Use errors.Is with ErrConfiguration, ErrUsage or ErrData,
or errors.As with *ConfigurationError, *UsageError and *DataError.

# Thread Safety

An Engine is safe for concurrent use. Reindex publishes a new snapshot
atomically; searches in flight keep reading the snapshot they started with.
*/
package facet
