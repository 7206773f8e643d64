package vetting

// Merge picks the headline score. A present model verdict supplies score
// and tier; the heuristic reasons are kept either way.
func Merge(h HeuristicVerdict, m ModelVerdict) FinalVerdict {
	reasons := h.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	if !m.Present() {
		return FinalVerdict{
			Score:   h.Score,
			Tier:    h.Tier,
			Reasons: reasons,
		}
	}

	score := clampScore(m.Score)
	reasoning := m.Reasoning
	return FinalVerdict{
		Score:     score,
		Tier:      TierForScore(score),
		Reasons:   reasons,
		Reasoning: &reasoning,
	}
}
