package query

import (
	"sort"
	"strings"

	"debtwatch/src/model"
	"debtwatch/src/util"
)

// Filter narrows query results after pattern matching. Zero values
// mean "any".
type Filter struct {
	Tier   model.Tier
	Status model.Status
}

func (f Filter) keep(fd *model.Finding) bool {
	if f.Tier != 0 && fd.Tier != f.Tier {
		return false
	}
	if f.Status != "" && fd.Status != f.Status {
		return false
	}
	return true
}

// Service resolves user-supplied patterns against persisted findings
type Service struct{}

// NewService creates a query service
func NewService() *Service {
	return &Service{}
}

// Match resolves a pattern to findings. Forms are tried in order until
// one produces candidates: exact ID, ID prefix, detector name, exact
// file, directory prefix, glob. Filters narrow the matched set; results
// come back in working order (tier descending, oldest first).
func (s *Service) Match(st *model.ScanState, pattern string, filter Filter) []*model.Finding {
	candidates := s.candidates(st, pattern)

	out := make([]*model.Finding, 0, len(candidates))
	for _, f := range candidates {
		if filter.keep(f) {
			out = append(out, f)
		}
	}
	Order(out)
	return out
}

func (s *Service) candidates(st *model.ScanState, pattern string) []*model.Finding {
	if pattern == "" {
		return st.SortedFindings()
	}

	// exact finding ID
	if f, ok := st.Findings[pattern]; ok {
		return []*model.Finding{f}
	}

	// truncated ID: detector prefix plus at least 4 signature chars
	if idx := strings.Index(pattern, ":"); idx > 0 && len(pattern) >= idx+5 {
		if got := collect(st, func(f *model.Finding) bool {
			return strings.HasPrefix(f.ID, pattern)
		}); len(got) > 0 {
			return got
		}
	}

	// detector name
	if got := collect(st, func(f *model.Finding) bool {
		return f.Detector == pattern
	}); len(got) > 0 {
		return got
	}

	// exact relative file
	if got := collect(st, func(f *model.Finding) bool {
		return f.File == pattern
	}); len(got) > 0 {
		return got
	}

	// directory prefix, with or without trailing slash
	prefix := pattern
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if got := collect(st, func(f *model.Finding) bool {
		return strings.HasPrefix(f.File, prefix)
	}); len(got) > 0 {
		return got
	}

	// glob over file paths
	if strings.Contains(pattern, "*") {
		if got := collect(st, func(f *model.Finding) bool {
			return util.MatchGlob(pattern, f.File)
		}); len(got) > 0 {
			return got
		}
	}

	return nil
}

func collect(st *model.ScanState, pred func(*model.Finding) bool) []*model.Finding {
	var out []*model.Finding
	for _, f := range st.SortedFindings() {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}

// Next returns the first n open findings in working order. A non-zero
// tier restricts the pick to that tier.
func (s *Service) Next(st *model.ScanState, n int, tier model.Tier) []*model.Finding {
	open := collect(st, func(f *model.Finding) bool {
		if f.Status != model.StatusOpen {
			return false
		}
		return tier == 0 || f.Tier == tier
	})
	Order(open)
	if n > 0 && len(open) > n {
		open = open[:n]
	}
	return open
}

// Order sorts findings into working order: highest tier first, then
// oldest first sighting, then ID for a total order.
func Order(findings []*model.Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Tier != b.Tier {
			return a.Tier > b.Tier
		}
		if a.FirstSeenScan != b.FirstSeenScan {
			return a.FirstSeenScan < b.FirstSeenScan
		}
		return a.ID < b.ID
	})
}
