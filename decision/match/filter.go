// Package match implements the candidate filter and scoring engine:
// the cascade of hard constraints that narrows a tractor catalog down
// to compatible candidates, and the weighted multi-criteria score that
// ranks them.
package match

import (
	"agripower/catalog"
	"agripower/decision/terrain"
)

// availableStatuses is "available" union "active", used consistently by
// both the filter's availability predicate and the scoring engine's
// availability component.
var availableStatuses = map[catalog.TractorStatus]bool{
	catalog.TractorAvailable: true,
	catalog.TractorActive:    true,
}

// FilterOptions tweaks the filter cascade.
type FilterOptions struct {
	// IncludeUnavailable skips the availability predicate, keeping
	// maintenance/in_use/inactive tractors in the candidate set.
	IncludeUnavailable bool
}

// EliminationReason names which predicate removed every remaining
// candidate, surfaced in the orchestrator's "no compatible" summary.
type EliminationReason string

const (
	EliminationNone            EliminationReason = ""
	EliminationPowerThreshold  EliminationReason = "ningún tractor alcanza la potencia requerida"
	EliminationGoldenRule      EliminationReason = "la pendiente exige tracción 4x4 u oruga y ningún tractor disponible la tiene"
	EliminationAvailability    EliminationReason = "no hay tractores disponibles que cumplan los demás requisitos"
)

// FilterResult holds the surviving candidates in input order,
// plus (when empty) which cascade stage eliminated everything.
type FilterResult struct {
	Candidates []catalog.Tractor
	Reason     EliminationReason
}

// Filter applies the three-predicate cascade in order: power threshold,
// then the Golden Rule (4WD mandatory on steep slopes), then availability.
func Filter(tractors []catalog.Tractor, requiredHP float64, analysis terrain.Analysis, opts FilterOptions) FilterResult {
	afterPower := make([]catalog.Tractor, 0, len(tractors))
	for _, t := range tractors {
		if t.EnginePowerHP >= requiredHP {
			afterPower = append(afterPower, t)
		}
	}
	if len(afterPower) == 0 {
		return FilterResult{Reason: EliminationPowerThreshold}
	}

	afterGoldenRule := afterPower
	if analysis.Requires4WD {
		afterGoldenRule = make([]catalog.Tractor, 0, len(afterPower))
		for _, t := range afterPower {
			if t.TractionType == catalog.Traction4x4 || t.TractionType == catalog.TractionTrack {
				afterGoldenRule = append(afterGoldenRule, t)
			}
		}
		if len(afterGoldenRule) == 0 {
			return FilterResult{Reason: EliminationGoldenRule}
		}
	}

	if opts.IncludeUnavailable {
		return FilterResult{Candidates: afterGoldenRule}
	}

	afterAvailability := make([]catalog.Tractor, 0, len(afterGoldenRule))
	for _, t := range afterGoldenRule {
		if availableStatuses[t.Status] {
			afterAvailability = append(afterAvailability, t)
		}
	}
	if len(afterAvailability) == 0 {
		return FilterResult{Reason: EliminationAvailability}
	}

	return FilterResult{Candidates: afterAvailability}
}
