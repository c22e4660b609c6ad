package extract

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"debtwatch/src/model"
)

// TypeScriptAdapter extracts functions, methods, classes and import
// edges from .ts/.tsx sources using line-based brace tracking. It is a
// reference implementation of the adapter contract, not a full parser:
// files it cannot make sense of are skipped with a warning.
type TypeScriptAdapter struct{}

// NewTypeScriptAdapter creates a TypeScript adapter
func NewTypeScriptAdapter() *TypeScriptAdapter {
	return &TypeScriptAdapter{}
}

// Language returns the adapter's language key
func (a *TypeScriptAdapter) Language() string { return "typescript" }

// Match reports whether path is a TypeScript source file
func (a *TypeScriptAdapter) Match(path string) bool {
	if strings.HasSuffix(path, ".d.ts") {
		return false
	}
	return strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".tsx")
}

// DetectRoot reports whether root looks like a TypeScript project
func (a *TypeScriptAdapter) DetectRoot(root string) bool {
	for _, marker := range []string{"tsconfig.json", "package.json"} {
		if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
			return true
		}
	}
	return false
}

var (
	tsFunctionRe = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)\s*(?:<[^>]*>)?\(([^)]*)`)
	tsArrowRe    = regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*(?::[^=]+)?=\s*(?:async\s+)?\(([^)]*)\)[^=]*=>`)
	tsClassRe    = regexp.MustCompile(`^(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`)
	tsMethodRe   = regexp.MustCompile(`^(?:public\s+|private\s+|protected\s+|static\s+|override\s+|async\s+)*(?:get\s+|set\s+)?\*?([A-Za-z_$#][\w$]*)\s*(?:<[^>]*>)?\(([^)]*)`)
	tsFieldRe    = regexp.MustCompile(`^(?:public\s+|private\s+|protected\s+|static\s+|readonly\s+)*[A-Za-z_$#][\w$]*[?!]?\s*[:=][^=]`)
	tsImportRe   = regexp.MustCompile(`^(?:import|export)\s+(?:[\w{}\s*,$]+\s+from\s+)?['"]([^'"]+)['"]`)
	tsRequireRe  = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	tsStringRe   = regexp.MustCompile("'(?:[^'\\\\]|\\\\.)*'|\"(?:[^\"\\\\]|\\\\.)*\"|`[^`]*`")
	tsBranchRe   = regexp.MustCompile(`\b(if|for|while|case|catch)\b`)

	tsMethodKeywords = map[string]bool{
		"if": true, "for": true, "while": true, "switch": true,
		"catch": true, "return": true, "new": true, "typeof": true,
		"function": true, "else": true, "do": true, "try": true,
		"await": true, "super": true, "import": true, "export": true,
	}
)

// ExtractFile parses one TypeScript file
func (a *TypeScriptAdapter) ExtractFile(root, rel string) (*FileResult, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}
	return parseTypeScript(root, rel, string(data)), nil
}

type tsOpenUnit struct {
	unit     model.Unit
	depthAt  int // brace depth before the unit's opening brace
	started  bool
	maxDepth int
	methods  int
	fields   int
}

func parseTypeScript(root, rel, src string) *FileResult {
	rawLines := strings.Split(src, "\n")
	lines := stripTSComments(rawLines)

	res := &FileResult{File: model.FileInfo{Path: rel, Node: rel, Lines: len(rawLines)}}

	var (
		depth int
		stack []*tsOpenUnit // innermost last; at most a class and one member
	)

	inClass := func() *tsOpenUnit {
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].unit.Kind == model.UnitClass {
				return stack[i]
			}
		}
		return nil
	}
	inMember := func() bool {
		return len(stack) > 0 && stack[len(stack)-1].unit.Kind != model.UnitClass
	}

	for i, line := range lines {
		code := strings.TrimSpace(line)
		counted := tsStringRe.ReplaceAllString(line, `""`)
		lineNo := i + 1

		if code != "" {
			if m := tsImportRe.FindStringSubmatch(code); m != nil {
				if target, ok := resolveTSImport(root, rel, m[1]); ok {
					res.Edges = append(res.Edges, model.Edge{FromFile: rel, ToFile: target, Kind: "import"})
				}
			} else if m := tsRequireRe.FindStringSubmatch(code); m != nil {
				if target, ok := resolveTSImport(root, rel, m[1]); ok {
					res.Edges = append(res.Edges, model.Edge{FromFile: rel, ToFile: target, Kind: "require"})
				}
			}

			cls := inClass()
			switch {
			case inMember():
				// inside a function body; nested declarations are not
				// separate units
			case depth == 0 && tsClassRe.MatchString(code):
				m := tsClassRe.FindStringSubmatch(code)
				stack = append(stack, &tsOpenUnit{
					unit: model.Unit{
						File: rel, Name: m[1], Kind: model.UnitClass, StartLine: lineNo,
					},
					depthAt: depth,
				})
			case depth == 0 && tsFunctionRe.MatchString(code):
				m := tsFunctionRe.FindStringSubmatch(code)
				stack = append(stack, &tsOpenUnit{
					unit: model.Unit{
						File: rel, Name: m[1], Kind: model.UnitFunction, StartLine: lineNo,
						Metrics: model.UnitMetrics{Params: countTSParams(m[2])},
					},
					depthAt: depth,
				})
			case depth == 0 && tsArrowRe.MatchString(code):
				m := tsArrowRe.FindStringSubmatch(code)
				u := &tsOpenUnit{
					unit: model.Unit{
						File: rel, Name: m[1], Kind: model.UnitFunction, StartLine: lineNo,
						Metrics: model.UnitMetrics{Params: countTSParams(m[2])},
					},
					depthAt: depth,
				}
				if !strings.Contains(strings.SplitN(counted, "=>", 2)[1], "{") {
					// expression-bodied arrow: a one-line unit
					u.unit.EndLine = lineNo
					closeTSUnit(res, u, lines, nil)
				} else {
					stack = append(stack, u)
				}
			case cls != nil && depth == cls.depthAt+1:
				if m := tsMethodRe.FindStringSubmatch(code); m != nil && !tsMethodKeywords[m[1]] && strings.Contains(counted, "(") {
					cls.methods++
					stack = append(stack, &tsOpenUnit{
						unit: model.Unit{
							File: rel, Name: cls.unit.Name + "." + m[1], Kind: model.UnitMethod, StartLine: lineNo,
							Metrics: model.UnitMetrics{Params: countTSParams(m[2])},
						},
						depthAt: depth,
					})
				} else if tsFieldRe.MatchString(code) {
					cls.fields++
				}
			}
		}

		depth += strings.Count(counted, "{") - strings.Count(counted, "}")
		for _, u := range stack {
			if depth > u.depthAt && !u.started {
				u.started = true
			}
			if depth > u.maxDepth {
				u.maxDepth = depth
			}
		}

		// close any units whose body just ended
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			if !u.started || depth > u.depthAt {
				break
			}
			stack = stack[:len(stack)-1]
			u.unit.EndLine = lineNo
			closeTSUnit(res, u, lines, inClass())
		}
	}

	// unterminated units (unbalanced braces) still get closed at EOF
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		u.unit.EndLine = len(rawLines)
		closeTSUnit(res, u, lines, inClass())
	}

	res.File.UnitCount = len(res.Units)
	return res
}

func closeTSUnit(res *FileResult, u *tsOpenUnit, lines []string, parent *tsOpenUnit) {
	unit := u.unit
	body := lines[unit.StartLine-1 : unit.EndLine]
	unit.NormalizedBody = normalizeLines(body)
	unit.Tokens = tokenize(unit.NormalizedBody)
	unit.Metrics.Lines = unit.EndLine - unit.StartLine + 1
	unit.Metrics.Branches = countTSBranches(unit.NormalizedBody)
	if nest := u.maxDepth - u.depthAt - 1; nest > 0 {
		unit.Metrics.Nesting = nest
	}
	if unit.Kind == model.UnitClass {
		unit.Metrics.Methods = u.methods
		unit.Metrics.Fields = u.fields
	}
	unit.ID = uniqueUnitID(res.Units, unit.File, unit.Name)
	res.Units = append(res.Units, unit)
}

// uniqueUnitID builds file:name IDs, disambiguating overloads
func uniqueUnitID(existing []model.Unit, file, name string) string {
	id := file + ":" + name
	n := 1
	for {
		taken := false
		for i := range existing {
			if existing[i].ID == id {
				taken = true
				break
			}
		}
		if !taken {
			return id
		}
		n++
		id = fmt.Sprintf("%s:%s#%d", file, name, n)
	}
}

// stripTSComments removes // and /* */ comments line by line
func stripTSComments(lines []string) []string {
	out := make([]string, len(lines))
	inBlock := false
	for i, line := range lines {
		var sb strings.Builder
		j := 0
		for j < len(line) {
			if inBlock {
				if end := strings.Index(line[j:], "*/"); end >= 0 {
					j += end + 2
					inBlock = false
					continue
				}
				break
			}
			if strings.HasPrefix(line[j:], "//") {
				break
			}
			if strings.HasPrefix(line[j:], "/*") {
				inBlock = true
				j += 2
				continue
			}
			sb.WriteByte(line[j])
			j++
		}
		out[i] = sb.String()
	}
	return out
}

// resolveTSImport maps a relative import specifier to a repo file.
// External (package) imports resolve to nothing: the dependency graph
// covers only edges inside the scanned tree.
func resolveTSImport(root, fromFile, spec string) (string, bool) {
	if !strings.HasPrefix(spec, ".") {
		return "", false
	}
	spec = strings.TrimSuffix(spec, ".js")
	base := path.Join(path.Dir(fromFile), spec)
	candidates := []string{
		base + ".ts", base + ".tsx",
		path.Join(base, "index.ts"), path.Join(base, "index.tsx"),
	}
	if strings.HasSuffix(base, ".ts") || strings.HasSuffix(base, ".tsx") {
		candidates = append([]string{base}, candidates...)
	}
	for _, c := range candidates {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(c))); err == nil {
			return c, true
		}
	}
	return "", false
}

// countTSParams counts top-level commas in a parameter list fragment
func countTSParams(params string) int {
	params = strings.TrimSpace(params)
	if params == "" {
		return 0
	}
	count, nest := 1, 0
	for _, r := range params {
		switch r {
		case '<', '{', '[', '(':
			nest++
		case '>', '}', ']', ')':
			nest--
		case ',':
			if nest == 0 {
				count++
			}
		}
	}
	return count
}

func countTSBranches(body string) int {
	return len(tsBranchRe.FindAllString(body, -1)) +
		strings.Count(body, "&&") + strings.Count(body, "||")
}

var tokenRe = regexp.MustCompile(`[A-Za-z_$][A-Za-z0-9_$]*|\d+(?:\.\d+)?|[^\sA-Za-z0-9_$]`)

// tokenize splits a normalized body into an identifier/operator stream
// suitable for shingle hashing. Input must already be comment-free.
func tokenize(normalized string) []string {
	return tokenRe.FindAllString(normalized, -1)
}

// normalizeLines strips blank and log-only lines and trims indentation
func normalizeLines(lines []string) string {
	var out []string
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "console.log(") || strings.HasPrefix(t, "console.debug(") {
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, "\n")
}
