/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"cmp"
	"slices"
)

type Ranking struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Points int    `json:"points"`
	Winner bool   `json:"winner"`
}

// rank orders players by points, highest first. Players on equal points
// keep their roster order.
func rank(players []Player) []Ranking {
	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b Player) int {
		return cmp.Compare(b.Points, a.Points)
	})

	rankings := make([]Ranking, 0, len(sorted))
	for i, p := range sorted {
		rankings = append(rankings, Ranking{
			Rank:   i + 1,
			Name:   p.Name,
			Points: p.Points,
			Winner: i == 0,
		})
	}

	return rankings
}

// ResultsStage is read-only; the only way out is a replay.
type ResultsStage struct {
	rankings []Ranking
}

func newResultsStage(h Handoff) *ResultsStage {
	return &ResultsStage{
		rankings: rank(h.Players),
	}
}

func (r *ResultsStage) Rankings() []Ranking {
	return slices.Clone(r.rankings)
}

// Winner returns the top-ranked player, or false if nobody played.
func (r *ResultsStage) Winner() (Ranking, bool) {
	if len(r.rankings) == 0 {
		return Ranking{}, false
	}

	return r.rankings[0], true
}
