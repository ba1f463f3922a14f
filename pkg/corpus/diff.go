package corpus

import "sort"

// Delta partitions the current crawl against the previous snapshot. Only New
// and Updated entries need re-embedding; Tombstoned names documents that
// disappeared from the site.
type Delta struct {
	New        []string
	Updated    []string
	Unchanged  []string
	Tombstoned []string
}

// Dirty returns the keys that require indexing work, new before updated.
func (d Delta) Dirty() []string {
	out := make([]string, 0, len(d.New)+len(d.Updated))
	out = append(out, d.New...)
	out = append(out, d.Updated...)
	return out
}

// Diff compares snapshots by key, then by URL and content. A key present in
// both is updated when its URL moved or its content changed; chunk ids derive
// from the URL, so a moved document needs new vectors even when its text is
// byte-identical. A category move alone stays unchanged.
func Diff(prev, cur Snapshot) Delta {
	var d Delta

	for key, entry := range cur {
		old, ok := prev[key]
		switch {
		case !ok:
			d.New = append(d.New, key)
		case old.URL != entry.URL || old.Content != entry.Content:
			d.Updated = append(d.Updated, key)
		default:
			d.Unchanged = append(d.Unchanged, key)
		}
	}

	for key := range prev {
		if _, ok := cur[key]; !ok {
			d.Tombstoned = append(d.Tombstoned, key)
		}
	}

	sort.Strings(d.New)
	sort.Strings(d.Updated)
	sort.Strings(d.Unchanged)
	sort.Strings(d.Tombstoned)
	return d
}
