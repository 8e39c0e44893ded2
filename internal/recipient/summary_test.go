package recipient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeEmpty(t *testing.T) {
	assert.True(t, Range{Start: 3, End: 2}.Empty())
	assert.False(t, Range{Start: 3, End: 3}.Empty())
	assert.False(t, Range{Start: 0, End: 9}.Empty())
}

func TestMergeSumsCounters(t *testing.T) {
	a := Summary{
		TotalFiles:         10,
		ProcessedFiles:     3,
		FilesMatched:       2,
		RecipientsParsed:   100,
		RecipientsInserted: 80,
		UnmatchedFiles:     []string{"x.csv"},
		ProcessedRange:     Range{Start: 0, End: 2},
	}
	b := Summary{
		TotalFiles:         10,
		ProcessedFiles:     3,
		FilesMatched:       3,
		RecipientsParsed:   50,
		RecipientsInserted: 10,
		RecipientsUpdated:  5,
		FailedDownloads:    []string{"y.csv: status 500"},
		ProcessedRange:     Range{Start: 3, End: 5},
	}

	m := a.Merge(b)
	assert.Equal(t, 10, m.TotalFiles)
	assert.Equal(t, 6, m.ProcessedFiles)
	assert.Equal(t, 5, m.FilesMatched)
	assert.Equal(t, 150, m.RecipientsParsed)
	assert.Equal(t, 90, m.RecipientsInserted)
	assert.Equal(t, 5, m.RecipientsUpdated)
	assert.Equal(t, []string{"x.csv"}, m.UnmatchedFiles)
	assert.Equal(t, []string{"y.csv: status 500"}, m.FailedDownloads)
	assert.Equal(t, Range{Start: 0, End: 5}, m.ProcessedRange)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	a := Summary{UnmatchedFiles: []string{"a.csv"}, ProcessedRange: Range{Start: 0, End: 0}}
	b := Summary{UnmatchedFiles: []string{"b.csv"}, ProcessedRange: Range{Start: 1, End: 1}}

	_ = a.Merge(b)
	assert.Equal(t, []string{"a.csv"}, a.UnmatchedFiles)
	assert.Equal(t, []string{"b.csv"}, b.UnmatchedFiles)
}

func TestMergeEmptyRanges(t *testing.T) {
	empty := Summary{ProcessedRange: Range{Start: 5, End: 4}}
	full := Summary{ProcessedRange: Range{Start: 0, End: 2}}

	assert.Equal(t, Range{Start: 0, End: 2}, empty.Merge(full).ProcessedRange)
	assert.Equal(t, Range{Start: 0, End: 2}, full.Merge(empty).ProcessedRange)
	assert.True(t, empty.Merge(empty).ProcessedRange.Empty())
}

// Folding four windowed runs over a 10-file folder reproduces the single-run
// totals.
func TestMergePaginationSequence(t *testing.T) {
	runs := []Summary{
		{TotalFiles: 10, ProcessedFiles: 3, RecipientsParsed: 30, ProcessedRange: Range{Start: 0, End: 2}},
		{TotalFiles: 10, ProcessedFiles: 3, RecipientsParsed: 25, ProcessedRange: Range{Start: 3, End: 5}},
		{TotalFiles: 10, ProcessedFiles: 3, RecipientsParsed: 40, ProcessedRange: Range{Start: 6, End: 8}},
		{TotalFiles: 10, ProcessedFiles: 1, RecipientsParsed: 5, ProcessedRange: Range{Start: 9, End: 9}},
	}

	merged := runs[0]
	for _, r := range runs[1:] {
		merged = merged.Merge(r)
	}
	assert.Equal(t, 10, merged.TotalFiles)
	assert.Equal(t, 10, merged.ProcessedFiles)
	assert.Equal(t, 100, merged.RecipientsParsed)
	assert.Equal(t, Range{Start: 0, End: 9}, merged.ProcessedRange)
}
