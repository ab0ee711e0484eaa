package main

// naSentinel is what the dashboard shows when the store is empty.
const naSentinel = "N/A"

// Summarize derives the dashboard aggregates from the records in insertion
// order. Never errors: an empty input yields the sentinel values.
//
// TopCategory ties break toward the category that reached the winning
// count first in input order. MostRecent is the timestamp of the last
// record by insertion order, not the maximum timestamp value; manually
// edited store files or clock skew are not guarded against.
func Summarize(records []DiagnosisRecord) Summary {
	if len(records) == 0 {
		return Summary{Total: 0, TopCategory: naSentinel, MostRecent: naSentinel}
	}

	counts := make(map[Category]int)
	top := records[0].Category
	for _, rec := range records {
		counts[rec.Category]++
		if counts[rec.Category] > counts[top] {
			top = rec.Category
		}
	}

	return Summary{
		Total:       len(records),
		TopCategory: string(top),
		MostRecent:  records[len(records)-1].Timestamp.Format(timestampLayout),
	}
}

// CategoryCounts returns per-category totals for the dashboard bar chart,
// in the fixed category display order. Categories with no records are
// included with a zero count.
func CategoryCounts(records []DiagnosisRecord) map[Category]int {
	counts := make(map[Category]int, len(allCategories))
	for _, c := range allCategories {
		counts[c] = 0
	}
	for _, rec := range records {
		counts[rec.Category]++
	}
	return counts
}
