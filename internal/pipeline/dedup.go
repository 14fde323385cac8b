package pipeline

import "tsreminder/internal"

type dedupKey struct {
	email        string
	date         internal.Date
	confirmation string
}

// Dedup collapses records sharing (email, date, confirmation), keeping the
// first occurrence.
func Dedup(records []internal.CleanRecord) []internal.CleanRecord {
	seen := make(map[dedupKey]struct{}, len(records))
	out := make([]internal.CleanRecord, 0, len(records))
	for _, rec := range records {
		key := dedupKey{email: rec.Email, date: rec.Date, confirmation: rec.Confirmation}
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}
