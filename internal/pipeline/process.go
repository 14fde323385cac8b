package pipeline

import (
	"fmt"
	"runtime/debug"
	"sort"

	"tsreminder/internal"
	"tsreminder/internal/render"
)

const DefaultOverdueThreshold = 21

// afterAggregate runs on every grouping before it is returned. Tests swap it
// to reach the recovery path.
var afterAggregate = func(map[string]*internal.RecipientGroup) {}

type Options struct {
	RequireApprover bool
	// OverdueThreshold is the days-old value above which a recipient is
	// escalated. Nil means DefaultOverdueThreshold.
	OverdueThreshold *float64
	Renderer         *render.Renderer
}

// Result is one complete, read-only grouping of an input dataset.
type Result struct {
	Source     string
	Groups     map[string]*internal.RecipientGroup
	Emails     []string
	Stats      CleanStats
	Duplicates int

	threshold float64
	renderer  *render.Renderer
}

// Process runs the whole engine over one dataset: schema check, cleaning,
// deduplication and aggregation. A panic anywhere inside is returned as a
// *ProcessingError instead of crashing the caller.
func Process(ds *internal.Dataset, opts Options) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = &ProcessingError{Value: r, Stack: debug.Stack()}
		}
	}()

	if ds == nil {
		return nil, fmt.Errorf("process: nil dataset")
	}
	if err := CheckColumns(ds.Headers, opts.RequireApprover); err != nil {
		return nil, err
	}

	cleaned, stats := Clean(ds.Records)
	if len(cleaned) == 0 {
		return nil, ErrNoValidRows
	}
	deduped := Dedup(cleaned)
	groups := Aggregate(deduped)
	afterAggregate(groups)

	emails := make([]string, 0, len(groups))
	for email := range groups {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	res = &Result{
		Source:     ds.Source,
		Groups:     groups,
		Emails:     emails,
		Stats:      stats,
		Duplicates: len(cleaned) - len(deduped),
		threshold:  DefaultOverdueThreshold,
		renderer:   opts.Renderer,
	}
	if opts.OverdueThreshold != nil {
		res.threshold = *opts.OverdueThreshold
	}
	if res.renderer == nil {
		res.renderer = render.Default()
	}
	return res, nil
}
