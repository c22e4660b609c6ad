package identity

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"

	"debtwatch/src/model"
	"debtwatch/src/util"
)

// sep keeps signature parts from colliding by concatenation
const sep = "\x1f"

// Fingerprint derives a stable finding ID: the detector name plus the
// first 16 hex chars of a blake3 hash over the signature parts. Parts
// never contain line numbers, so an ID survives line drift and body
// edits. A rename or move starts a new identity.
func Fingerprint(detector string, parts ...string) string {
	sum := blake3.Sum256([]byte(detector + sep + strings.Join(parts, sep)))
	return detector + ":" + hex.EncodeToString(sum[:8])
}

// Assign fingerprints a scan's raw findings and merges collisions: raw
// findings with identical signatures become one observation holding the
// earliest line range and combined evidence. Collisions are expected
// (two verbatim copies of a unit in one file) and never an error.
// Returns the observed set keyed by ID plus the collision count.
func Assign(raws []model.RawFinding) (map[string]model.RawFinding, int) {
	observed := make(map[string]model.RawFinding, len(raws))
	merged := 0
	for _, raw := range raws {
		id := Fingerprint(raw.Detector, raw.SignatureParts...)
		first, ok := observed[id]
		if !ok {
			observed[id] = raw
			continue
		}
		merged++
		util.Debug("Identity collision on %s: %s:%d and %s:%d",
			id, first.File, first.StartLine, raw.File, raw.StartLine)
		observed[id] = mergeCollision(first, raw)
	}
	return observed, merged
}

// mergeCollision folds a later occurrence into the first one. The first
// writer wins per evidence key; the location snaps to the earliest
// occurrence; merged_count records how many occurrences collapsed.
func mergeCollision(first, next model.RawFinding) model.RawFinding {
	out := first
	if next.File < out.File || (next.File == out.File && next.StartLine < out.StartLine) {
		out.File = next.File
		out.StartLine = next.StartLine
		out.EndLine = next.EndLine
		out.UnitName = next.UnitName
	}

	ev := make(map[string]any, len(first.Evidence)+1)
	for k, v := range first.Evidence {
		ev[k] = v
	}
	for k, v := range next.Evidence {
		if _, exists := ev[k]; !exists {
			ev[k] = v
		}
	}
	count, _ := ev["merged_count"].(int)
	if count == 0 {
		count = 1
	}
	ev["merged_count"] = count + 1
	out.Evidence = ev
	return out
}
