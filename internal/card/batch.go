package card

import "context"

// BatchEntry is the outcome for one word of a batch. A failed word has
// NoteID 0, Updated false and a non-nil Err.
type BatchEntry struct {
	Word    string
	NoteID  int64
	Updated bool
	Err     error
}

// Failed reports whether the word failed
func (e BatchEntry) Failed() bool {
	return e.Err != nil
}

// Summary counts the outcomes of a batch
type Summary struct {
	Created int
	Updated int
	Failed  int
}

// Total returns the number of words processed
func (s Summary) Total() int {
	return s.Created + s.Updated + s.Failed
}

// GenerateBatch processes words one at a time in input order. A failing
// word is recorded and does not stop the batch; once ctx is done the
// remaining words are recorded as failed.
func (g *Generator) GenerateBatch(ctx context.Context, words []string, opts Options) []BatchEntry {
	entries := make([]BatchEntry, 0, len(words))
	for i, word := range words {
		if err := ctx.Err(); err != nil {
			entries = append(entries, BatchEntry{Word: word, Err: err})
			continue
		}

		g.progress.Item(i+1, len(words))
		res, err := g.Generate(ctx, word, opts)
		if err != nil {
			entries = append(entries, BatchEntry{Word: word, Err: err})
			continue
		}
		entries = append(entries, BatchEntry{Word: word, NoteID: res.NoteID, Updated: res.Updated})
	}
	return entries
}

// Summarize counts created, updated and failed entries
func Summarize(entries []BatchEntry) Summary {
	var s Summary
	for _, e := range entries {
		switch {
		case e.Failed():
			s.Failed++
		case e.Updated:
			s.Updated++
		default:
			s.Created++
		}
	}
	return s
}
