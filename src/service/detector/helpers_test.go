package detector

import (
	"strings"

	"debtwatch/src/config"
	"debtwatch/src/model"
)

func testBase(cfg *config.Config) BaseDetector {
	return NewBaseDetector(cfg)
}

func makeUnit(file, name string, kind model.UnitKind, start, end int, body string) model.Unit {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	normalized := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			normalized = append(normalized, t)
		}
	}
	nb := strings.Join(normalized, "\n")
	return model.Unit{
		ID:             file + ":" + name,
		File:           file,
		Name:           name,
		Kind:           kind,
		StartLine:      start,
		EndLine:        end,
		NormalizedBody: nb,
		Tokens:         tokenizeForTest(nb),
		Metrics: model.UnitMetrics{
			Lines: end - start + 1,
		},
	}
}

// tokenizeForTest mimics the adapter token stream closely enough for
// detector inputs: identifiers and numbers only.
func tokenizeForTest(body string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range body {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$':
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func modelWith(units []model.Unit, edges []model.Edge, files []model.FileInfo) *model.SymbolModel {
	return &model.SymbolModel{
		Root:     "/tmp/proj",
		Language: "typescript",
		Files:    files,
		Units:    units,
		Edges:    edges,
	}
}
