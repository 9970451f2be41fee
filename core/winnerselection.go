package core

import (
	"sort"
)

// RankCandidates orders candidates best first:
//  1. custom raises ahead of normal raises
//  2. higher amount ahead of lower within the same class
//  3. earlier proposal order (party registration order) on equal amounts
//
// The input slice is not modified.
func RankCandidates(candidates []Candidate) []Candidate {
	if len(candidates) == 0 {
		return make([]Candidate, 0)
	}

	// Keep only the highest candidate per party, preserving order of first occurrence
	best := make(map[string]int, len(candidates))
	entries := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		idx, seen := best[c.Bid.Party]
		if !seen {
			best[c.Bid.Party] = len(entries)
			entries = append(entries, c)
			continue
		}
		if outranks(c, entries[idx]) {
			entries[idx] = c
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return outranks(entries[i], entries[j])
	})
	return entries
}

// outranks reports whether a strictly beats b under the selection policy.
func outranks(a, b Candidate) bool {
	if a.Custom() != b.Custom() {
		return a.Custom()
	}
	if cmp := MoneyCmp(a.Amount, b.Amount); cmp != 0 {
		return cmp > 0
	}
	return a.Order < b.Order
}

// SelectWinner returns the best candidate, if any, and the rest in rank order.
func SelectWinner(candidates []Candidate) (winner Candidate, rest []Candidate, ok bool) {
	ranked := RankCandidates(candidates)
	if len(ranked) == 0 {
		return Candidate{}, nil, false
	}
	return ranked[0], ranked[1:], true
}
