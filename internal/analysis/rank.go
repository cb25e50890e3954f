package analysis

import (
	"sort"
)

type RankedRun struct {
	Name string
	Summary
}

// RankBySelfSufficiency sorts runs descending by SelfSufficiency.
// Ties go to the run importing less energy, then by name.
func RankBySelfSufficiency(byName map[string]Summary) []RankedRun {
	out := make([]RankedRun, 0, len(byName))
	for name, s := range byName {
		out = append(out, RankedRun{Name: name, Summary: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SelfSufficiency != out[j].SelfSufficiency {
			return out[i].SelfSufficiency > out[j].SelfSufficiency
		}
		if out[i].GridImportWh != out[j].GridImportWh {
			return out[i].GridImportWh < out[j].GridImportWh
		}
		return out[i].Name < out[j].Name
	})
	return out
}
