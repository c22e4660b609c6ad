package score

import (
	"math"
	"sort"

	"debtwatch/src/config"
	"debtwatch/src/model"
)

// Service computes health scores from persisted scan state
type Service struct {
	weights map[int]float64
}

// NewService creates a scoring service
func NewService(cfg config.ScoringConfig) *Service {
	weights := make(map[int]float64, len(cfg.TierWeights))
	for tier, w := range cfg.TierWeights {
		weights[tier] = w
	}
	return &Service{weights: weights}
}

func (s *Service) weight(t model.Tier) float64 {
	if w, ok := s.weights[int(t)]; ok {
		return w
	}
	return float64(t)
}

// tally accumulates the weighted numerators and denominators for one
// scoring dimension
type tally struct {
	fixedW   float64
	allW     float64
	strictW  float64 // fixed + open + observed false positives
	open     int
	fixed    int
	wontfix  int
	falsePos int
}

func (t *tally) add(w float64, status model.Status, observed bool) {
	t.allW += w
	switch status {
	case model.StatusOpen:
		t.open++
		t.strictW += w
	case model.StatusFixed:
		t.fixed++
		t.fixedW += w
		t.strictW += w
	case model.StatusWontfix:
		t.wontfix++
		// excluded from both strict numerator and denominator
	case model.StatusFalsePositive:
		t.falsePos++
		if observed {
			t.strictW += w
		}
	}
}

func (t *tally) weighted() float64 {
	return ratio(t.fixedW, t.allW)
}

func (t *tally) strict() float64 {
	return ratio(t.fixedW, t.strictW)
}

// ratio converts a weight fraction to a 0-100 score. An empty
// denominator means there is nothing to hold against the codebase.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 100.0
	}
	return math.Round(num/den*1000) / 10
}

// Compute builds the full scorecard for a state: overall weighted and
// strict scores plus per-detector and per-tier breakdowns. Iteration is
// ordered so identical states always produce identical cards.
func (s *Service) Compute(st *model.ScanState) model.Scorecard {
	var overall tally
	byDetector := make(map[string]*tally)
	byTier := make(map[model.Tier]model.TierCounts)

	for _, f := range st.SortedFindings() {
		w := s.weight(f.Tier)
		observed := f.LastSeenScan >= st.ScanCount

		overall.add(w, f.Status, observed)

		dt := byDetector[f.Detector]
		if dt == nil {
			dt = &tally{}
			byDetector[f.Detector] = dt
		}
		dt.add(w, f.Status, observed)

		tc := byTier[f.Tier]
		switch f.Status {
		case model.StatusOpen:
			tc.Open++
		case model.StatusFixed:
			tc.Fixed++
		case model.StatusWontfix:
			tc.Wontfix++
		case model.StatusFalsePositive:
			tc.FalsePositive++
		}
		byTier[f.Tier] = tc
	}

	card := model.Scorecard{
		Weighted:   overall.weighted(),
		Strict:     overall.strict(),
		ByDetector: make(map[string]model.DimensionScore, len(byDetector)),
		ByTier:     byTier,
	}

	detectors := make([]string, 0, len(byDetector))
	for name := range byDetector {
		detectors = append(detectors, name)
	}
	sort.Strings(detectors)
	for _, name := range detectors {
		dt := byDetector[name]
		card.ByDetector[name] = model.DimensionScore{
			Weighted:      dt.weighted(),
			Strict:        dt.strict(),
			Open:          dt.open,
			Fixed:         dt.fixed,
			Wontfix:       dt.wontfix,
			FalsePositive: dt.falsePos,
		}
	}
	return card
}
