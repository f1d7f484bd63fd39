package taxonomy

import "sort"

// RankOf returns the display priority of a verdict. Lower ranks are
// shown first, so failures lead a report.
func RankOf(v Verdict) int {
	rank, ok := rankMap[v]
	if !ok {
		return len(rankMap) // unknown verdicts sort last
	}
	return rank
}

var rankMap = map[Verdict]int{
	Failed:   0,
	Untested: 1,
	Passed:   2,
}

// SortResults orders results by verdict rank, then by function name.
// The sort is stable so equal entries keep registration order.
func SortResults(results []FunctionResult) {
	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := RankOf(results[i].Verdict), RankOf(results[j].Verdict)
		if ri != rj {
			return ri < rj
		}
		return results[i].Target.Function < results[j].Target.Function
	})
}

// ExitCode is the process status for a set of results: 1 when any
// function failed, 2 when none failed but some were untested, 0
// otherwise.
func ExitCode(results []FunctionResult) int {
	s := Summarize(results)
	switch {
	case s.Failed > 0:
		return 1
	case s.Untested > 0:
		return 2
	default:
		return 0
	}
}
