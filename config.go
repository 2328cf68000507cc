package facet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a configuration or request leaves a value unset.
const (
	DefaultBucketSize        = 10
	DefaultPerPage           = 12
	DefaultBucketsPerPage    = 10
	DefaultSimilarPerPage    = 10
	DefaultCustomIDField     = "id"
	aggregationListingSize   = 10000
	defaultFullTextNameField = "name"
)

// AggregationMap is the insertion-ordered set of configured aggregations.
// Order matters: it is the order of fields in the index and the bucket
// position reported in search results.
type AggregationMap = orderedmap.OrderedMap[string, *Aggregation]

// NewAggregationMap returns an empty AggregationMap.
func NewAggregationMap() *AggregationMap {
	return orderedmap.New[string, *Aggregation]()
}

// Keys holds either a single key or a list of keys. In JSON and YAML it
// accepts both "count" and ["doc_count", "key"]; whether the list form was
// used is kept because it changes how buckets are sorted.
type Keys struct {
	Values []string
	List   bool
}

// One returns Keys holding a single value.
func One(value string) Keys {
	return Keys{Values: []string{value}}
}

// List returns Keys in list form.
func List(values ...string) Keys {
	return Keys{Values: values, List: true}
}

// IsZero reports whether no key was given.
func (k Keys) IsZero() bool {
	return len(k.Values) == 0 && !k.List
}

// first returns the first value or def when there is none.
func (k Keys) first(def string) string {
	if len(k.Values) == 0 || k.Values[0] == "" {
		return def
	}
	return k.Values[0]
}

func (k Keys) MarshalJSON() ([]byte, error) {
	if k.List {
		return json.Marshal(k.Values)
	}
	return json.Marshal(k.first(""))
}

func (k *Keys) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*k = One(single)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*k = List(list...)
	return nil
}

func (k Keys) MarshalYAML() (any, error) {
	if k.List {
		return k.Values, nil
	}
	return k.first(""), nil
}

func (k *Keys) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*k = One(value.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*k = List(list...)
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", value.Line)
	}
}

// Aggregation configures one facet.
type Aggregation struct {
	// Field is the item attribute read for this facet; defaults to the
	// aggregation name.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// Conjunction selects AND (default) or OR between selected values.
	Conjunction *bool `json:"conjunction,omitempty" yaml:"conjunction,omitempty"`
	Size        int   `json:"size,omitempty" yaml:"size,omitempty"`
	// Sort is "count"/"doc_count" (default), "term"/"key" or a list of
	// bucket keys; Order is "asc"/"desc" or a list matching Sort.
	Sort               Keys  `json:"sort,omitempty" yaml:"sort,omitempty"`
	Order              Keys  `json:"order,omitempty" yaml:"order,omitempty"`
	ShowFacetStats     bool  `json:"show_facet_stats,omitempty" yaml:"show_facet_stats,omitempty"`
	HideZeroDocCount   bool  `json:"hide_zero_doc_count,omitempty" yaml:"hide_zero_doc_count,omitempty"`
	ChosenFiltersOnTop *bool `json:"chosen_filters_on_top,omitempty" yaml:"chosen_filters_on_top,omitempty"`
}

// IsConjunctive reports whether selected values of this facet are AND-ed.
func (a *Aggregation) IsConjunctive() bool {
	return a == nil || a.Conjunction == nil || *a.Conjunction
}

func (a *Aggregation) chosenOnTop() bool {
	return a == nil || a.ChosenFiltersOnTop == nil || *a.ChosenFiltersOnTop
}

func (a *Aggregation) size() int {
	if a == nil || a.Size <= 0 {
		return DefaultBucketSize
	}
	return a.Size
}

func (a *Aggregation) sourceField(name string) string {
	if a == nil || a.Field == "" {
		return name
	}
	return a.Field
}

// Sorting is a named item ordering: item fields compared in turn, each in
// its own direction.
type Sorting struct {
	Field Keys `json:"field" yaml:"field"`
	Order Keys `json:"order,omitempty" yaml:"order,omitempty"`
}

// Config describes how items are faceted, searched and sorted.
type Config struct {
	Aggregations     *AggregationMap    `json:"aggregations,omitempty" yaml:"aggregations,omitempty"`
	Sortings         map[string]Sorting `json:"sortings,omitempty" yaml:"sortings,omitempty"`
	SearchableFields []string           `json:"searchable_fields,omitempty" yaml:"searchable_fields,omitempty"`
	// NativeSearchEnabled turns the full-text collaborator on (default) or
	// off. With it off, Query and Filter search options are rejected.
	NativeSearchEnabled *bool `json:"native_search_enabled,omitempty" yaml:"native_search_enabled,omitempty"`
	// CustomIDField names the item attribute used as external id; "id" by
	// default.
	CustomIDField string `json:"custom_id_field,omitempty" yaml:"custom_id_field,omitempty"`
}

// NewConfig returns an empty configuration.
func NewConfig() *Config {
	return &Config{Aggregations: NewAggregationMap()}
}

// WithAggregation appends an aggregation and returns c for chaining.
//
// Example:
//
//	cfg := NewConfig().
//		WithAggregation("tags", &Aggregation{Size: 20}).
//		WithAggregation("genre", &Aggregation{Conjunction: Bool(false)})
func (c *Config) WithAggregation(name string, agg *Aggregation) *Config {
	if c.Aggregations == nil {
		c.Aggregations = NewAggregationMap()
	}
	if agg == nil {
		agg = &Aggregation{}
	}
	c.Aggregations.Set(name, agg)
	return c
}

// Bool returns a pointer to b, for the optional boolean options.
func Bool(b bool) *bool {
	return &b
}

func (c *Config) nativeSearch() bool {
	return c.NativeSearchEnabled == nil || *c.NativeSearchEnabled
}

func (c *Config) idField() string {
	if c.CustomIDField == "" {
		return DefaultCustomIDField
	}
	return c.CustomIDField
}

// fields returns the aggregation names in order and the attribute each
// one reads from.
func (c *Config) fields() ([]string, map[string]string) {
	names := aggregationNames(c.Aggregations)
	sources := make(map[string]string, len(names))
	for _, name := range names {
		agg, _ := lookupAggregation(c.Aggregations, name)
		sources[name] = agg.sourceField(name)
	}
	return names, sources
}

// withAggregationSize returns a copy of c where aggregation name has the
// given bucket size. c is left untouched.
func (c *Config) withAggregationSize(name string, size int) *Config {
	out := *c
	out.Aggregations = NewAggregationMap()
	for pair := c.Aggregations.Oldest(); pair != nil; pair = pair.Next() {
		agg := pair.Value
		if pair.Key == name {
			copied := Aggregation{}
			if agg != nil {
				copied = *agg
			}
			copied.Size = size
			agg = &copied
		}
		out.Aggregations.Set(pair.Key, agg)
	}
	return &out
}

func aggregationNames(aggs *AggregationMap) []string {
	if aggs == nil {
		return nil
	}
	names := make([]string, 0, aggs.Len())
	for pair := aggs.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

func lookupAggregation(aggs *AggregationMap, name string) (*Aggregation, bool) {
	if aggs == nil {
		return nil, false
	}
	return aggs.Get(name)
}

// LoadConfig reads a configuration file. Files ending in .yaml or .yml are
// decoded as YAML, anything else as JSON.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := NewConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if cfg.Aggregations == nil {
		cfg.Aggregations = NewAggregationMap()
	}
	return cfg, nil
}

// LoadItems reads a JSON array of items.
func LoadItems(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode items %s: %w", path, err)
	}
	return items, nil
}
