package recipient

// Range is a closed interval of file indexes within a folder listing.
// An empty range has End < Start.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Empty reports whether the range covers no files.
func (r Range) Empty() bool { return r.End < r.Start }

// Summary is the immutable result of one coordinator run. Callers paginate
// by folding consecutive summaries together with Merge.
type Summary struct {
	TotalFiles          int      `json:"total_files"`
	ProcessedFiles      int      `json:"processed_files"`
	FilesMatched        int      `json:"files_matched"`
	RecipientsParsed    int      `json:"recipients_parsed"`
	RecipientsInserted  int      `json:"recipients_inserted"`
	RecipientsUpdated   int      `json:"recipients_updated"`
	RecipientsDuplicate int      `json:"recipients_duplicate"`
	RecipientsExisting  int      `json:"recipients_existing"`
	UnmatchedFiles      []string `json:"unmatched_files"`
	FailedDownloads     []string `json:"failed_downloads"`
	ProcessedRange      Range    `json:"processed_range"`
}

// Merge folds another run's summary into this one and returns the combined
// view: counts are summed, problem lists concatenated, TotalFiles tracks the
// maximum, and the processed range widens to cover both runs. Neither input
// is mutated.
func (s Summary) Merge(other Summary) Summary {
	merged := s

	if other.TotalFiles > merged.TotalFiles {
		merged.TotalFiles = other.TotalFiles
	}
	merged.ProcessedFiles += other.ProcessedFiles
	merged.FilesMatched += other.FilesMatched
	merged.RecipientsParsed += other.RecipientsParsed
	merged.RecipientsInserted += other.RecipientsInserted
	merged.RecipientsUpdated += other.RecipientsUpdated
	merged.RecipientsDuplicate += other.RecipientsDuplicate
	merged.RecipientsExisting += other.RecipientsExisting

	merged.UnmatchedFiles = append(append([]string{}, s.UnmatchedFiles...), other.UnmatchedFiles...)
	merged.FailedDownloads = append(append([]string{}, s.FailedDownloads...), other.FailedDownloads...)

	switch {
	case s.ProcessedRange.Empty():
		merged.ProcessedRange = other.ProcessedRange
	case other.ProcessedRange.Empty():
		merged.ProcessedRange = s.ProcessedRange
	default:
		merged.ProcessedRange = Range{
			Start: minInt(s.ProcessedRange.Start, other.ProcessedRange.Start),
			End:   maxInt(s.ProcessedRange.End, other.ProcessedRange.End),
		}
	}
	return merged
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
