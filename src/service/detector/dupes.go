package detector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"debtwatch/src/config"
	"debtwatch/src/model"
	"debtwatch/src/util"
)

// DupesDetector finds copy-pasted and near-duplicate units by comparing
// token shingle sets. Units sharing at least one shingle are compared
// pairwise; pairs over the similarity threshold are clustered with
// union-find, and every cluster member except the canonical one (the
// earliest by file path, then start line) yields a finding.
type DupesDetector struct {
	BaseDetector
	cfg config.DupesConfig
}

// NewDupesDetector creates a new duplicate detector
func NewDupesDetector(base BaseDetector, cfg config.DupesConfig) *DupesDetector {
	return &DupesDetector{
		BaseDetector: base,
		cfg:          cfg,
	}
}

// Name returns the detector name
func (d *DupesDetector) Name() string {
	return "dupes"
}

// IsEnabled returns whether the detector is enabled
func (d *DupesDetector) IsEnabled() bool {
	return d.cfg.Enabled
}

type dupeCandidate struct {
	unit     *model.Unit
	shingles map[uint64]struct{}
}

// Detect runs duplicate detection
func (d *DupesDetector) Detect(ctx context.Context, sm *model.SymbolModel) ([]model.RawFinding, error) {
	candidates := d.collectCandidates(sm)
	util.Debug("Dupes detector: %d candidate units", len(candidates))
	if len(candidates) < 2 {
		return nil, nil
	}

	// Bucket by shingle so only units sharing at least one shingle
	// ever get compared.
	buckets := make(map[uint64][]int)
	for i, c := range candidates {
		for h := range c.shingles {
			buckets[h] = append(buckets[h], i)
		}
	}
	pairs := make(map[[2]int]struct{})
	for _, idxs := range buckets {
		for i := 0; i < len(idxs); i++ {
			for j := i + 1; j < len(idxs); j++ {
				a, b := idxs[i], idxs[j]
				if a > b {
					a, b = b, a
				}
				pairs[[2]int{a, b}] = struct{}{}
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	threshold := d.cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = 0.8
	}

	uf := newUnionFind(len(candidates))
	matched := 0
	for pair := range pairs {
		if jaccard(candidates[pair[0]].shingles, candidates[pair[1]].shingles) >= threshold {
			uf.union(pair[0], pair[1])
			matched++
		}
	}
	util.Debug("Dupes detector: %d candidate pairs, %d over threshold", len(pairs), matched)

	clusters := make(map[int][]int)
	for i := range candidates {
		clusters[uf.find(i)] = append(clusters[uf.find(i)], i)
	}

	var findings []model.RawFinding
	for _, members := range clusters {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			a, b := candidates[members[i]].unit, candidates[members[j]].unit
			if a.File != b.File {
				return a.File < b.File
			}
			return a.StartLine < b.StartLine
		})
		canon := candidates[members[0]]
		for _, mi := range members[1:] {
			member := candidates[mi]
			sim := jaccard(canon.shingles, member.shingles)
			findings = append(findings, d.createDupeFinding(canon, member, sim, len(members)))
		}
	}

	SortFindings(findings)
	return findings, nil
}

func (d *DupesDetector) collectCandidates(sm *model.SymbolModel) []dupeCandidate {
	minTokens := d.cfg.MinTokens
	if minTokens <= 0 {
		minTokens = 40
	}
	minLines := d.cfg.MinLines
	if minLines <= 0 {
		minLines = 8
	}

	var out []dupeCandidate
	for i := range sm.Units {
		u := &sm.Units[i]
		if u.Kind == model.UnitClass {
			continue
		}
		if len(u.Tokens) < minTokens || u.Metrics.Lines < minLines {
			continue
		}
		if d.ShouldExclude(u.File, u.Name) {
			continue
		}
		out = append(out, dupeCandidate{unit: u, shingles: shingleSet(u.Tokens, d.cfg.ShingleSize)})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].unit, out[j].unit
		if a.File != b.File {
			return a.File < b.File
		}
		return a.StartLine < b.StartLine
	})
	return out
}

func (d *DupesDetector) createDupeFinding(canon, member dupeCandidate, sim float64, clusterSize int) model.RawFinding {
	cu, mu := canon.unit, member.unit

	tier := model.Tier3
	kind := "near-duplicate"
	message := fmt.Sprintf("Near-duplicate of %s:%s (similarity %.2f)", cu.File, cu.Name, sim)
	if sim >= 1.0 {
		tier = model.Tier2
		kind = "exact"
		message = fmt.Sprintf("Exact duplicate of %s:%s", cu.File, cu.Name)
	}

	return model.RawFinding{
		Detector:  "dupes",
		File:      mu.File,
		StartLine: mu.StartLine,
		EndLine:   mu.EndLine,
		UnitName:  mu.Name,
		Tier:      tier,
		Message:   message,
		Evidence: map[string]any{
			"canonical":    cu.File + ":" + cu.Name,
			"similarity":   math.Round(sim*1000) / 1000,
			"cluster_size": clusterSize,
			"kind":         kind,
		},
		SignatureParts: []string{mu.File, mu.Name},
	}
}

// shingleSet hashes each window of size consecutive tokens with xxh3
func shingleSet(tokens []string, size int) map[uint64]struct{} {
	if size <= 0 {
		size = 5
	}
	set := make(map[uint64]struct{})
	for i := 0; i+size <= len(tokens); i++ {
		set[xxh3.HashString(strings.Join(tokens[i:i+size], "\x00"))] = struct{}{}
	}
	return set
}

// jaccard is the shared-shingle ratio of two sets
func jaccard(a, b map[uint64]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for h := range small {
		if _, ok := large[h]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	return float64(shared) / float64(union)
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}
