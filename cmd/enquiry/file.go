package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/groupenquiry/internal/booking"
	"github.com/yanizio/groupenquiry/internal/form"
)

// loadEnquiry reads a YAML enquiry file and writes every leaf into store.
// Keys follow the JSON field names (contactDetails.firstName, ...).  Unknown
// keys are kept in the store and reported, so a typo never silently drops
// a value.
func loadEnquiry(path string, store *form.Store) (unknown []booking.Path, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	walk("", doc, func(p booking.Path, v any) {
		if !p.Known() {
			unknown = append(unknown, p)
		}
		store.SetValue(p, v)
	})
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return unknown, nil
}

func walk(prefix booking.Path, node map[string]any, fn func(booking.Path, any)) {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p := booking.Path(k)
		if prefix != "" {
			p = prefix + "." + p
		}
		switch v := node[k].(type) {
		case map[string]any:
			walk(p, v, fn)
		case time.Time:
			// Unquoted YAML dates arrive as timestamps.
			fn(p, v.Format("2006-01-02"))
		case nil:
			fn(p, "")
		default:
			fn(p, v)
		}
	}
}

// writeTemplate renders the default enquiry as YAML.
func writeTemplate(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(booking.Defaults().Values()); err != nil {
		return err
	}
	return enc.Close()
}
