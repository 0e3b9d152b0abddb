package sources

import (
	"strings"

	"github.com/eualt/trustscore/internal/model"
)

// SourceRef is one distinct source URL and the evidence items citing it
type SourceRef struct {
	URL     string
	ItemIDs []string // entryID/itemID
}

// CollectRefs gathers every reservation and signal source URL in entries,
// deduplicated in first-seen order
func CollectRefs(entries []model.Entry) []SourceRef {
	var refs []SourceRef
	index := make(map[string]int)

	add := func(rawURL, itemID string) {
		u := strings.TrimSpace(rawURL)
		if u == "" {
			return
		}
		i, ok := index[u]
		if !ok {
			i = len(refs)
			index[u] = i
			refs = append(refs, SourceRef{URL: u})
		}
		refs[i].ItemIDs = append(refs[i].ItemIDs, itemID)
	}

	for _, e := range entries {
		for _, r := range e.Reservations {
			add(r.SourceURL, e.ID+"/"+r.ID)
		}
		for _, s := range e.PositiveSignals {
			add(s.SourceURL, e.ID+"/"+s.ID)
		}
	}

	return refs
}

// EntryURLs returns the distinct source URLs cited by one entry
func EntryURLs(entry model.Entry) []string {
	refs := CollectRefs([]model.Entry{entry})
	urls := make([]string, len(refs))
	for i, r := range refs {
		urls[i] = r.URL
	}
	return urls
}
