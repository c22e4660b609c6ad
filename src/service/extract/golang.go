package extract

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"debtwatch/src/model"
)

// GoAdapter extracts functions, methods and struct types from .go
// sources via go/ast. Graph nodes are package directories rather than
// files: Go's import graph is per-package, so edges run between the
// directory of the importing file and the imported package's directory.
// Only module-internal imports become edges.
type GoAdapter struct {
	mu      sync.Mutex
	modules map[string]string // root -> module path from go.mod
}

// NewGoAdapter creates a Go adapter
func NewGoAdapter() *GoAdapter {
	return &GoAdapter{modules: make(map[string]string)}
}

// Language returns the adapter's language key
func (a *GoAdapter) Language() string { return "go" }

// Match reports whether path is a Go source file
func (a *GoAdapter) Match(path string) bool {
	if strings.HasSuffix(path, ".pb.go") {
		return false
	}
	return strings.HasSuffix(path, ".go")
}

// DetectRoot reports whether root looks like a Go module
func (a *GoAdapter) DetectRoot(root string) bool {
	_, err := os.Stat(filepath.Join(root, "go.mod"))
	return err == nil
}

// ExtractFile parses one Go file
func (a *GoAdapter) ExtractFile(root, rel string) (*FileResult, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, rel, data, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	node := pkgNode(rel)
	res := &FileResult{File: model.FileInfo{Path: rel, Node: node, Lines: len(lines)}}

	for _, imp := range file.Imports {
		spec := strings.Trim(imp.Path.Value, `"`)
		if target, ok := a.resolveGoImport(root, spec); ok && target != node {
			res.Edges = append(res.Edges, model.Edge{FromFile: node, ToFile: target, Kind: "import"})
		}
	}

	// First pass: struct types become class units so methods declared
	// later in the file can be tallied against them.
	structIdx := make(map[string]int)
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			unit := model.Unit{
				File:      rel,
				Name:      ts.Name.Name,
				Kind:      model.UnitClass,
				StartLine: fset.Position(ts.Pos()).Line,
				EndLine:   fset.Position(ts.End()).Line,
			}
			unit.Metrics.Fields = countGoFields(st)
			unit.Metrics.Lines = unit.EndLine - unit.StartLine + 1
			finishGoUnit(&unit, lines)
			unit.ID = uniqueUnitID(res.Units, rel, unit.Name)
			structIdx[ts.Name.Name] = len(res.Units)
			res.Units = append(res.Units, unit)
		}
	}

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		unit := model.Unit{
			File:      rel,
			Name:      fn.Name.Name,
			Kind:      model.UnitFunction,
			StartLine: fset.Position(fn.Pos()).Line,
			EndLine:   fset.Position(fn.End()).Line,
		}
		if recv := goReceiverName(fn); recv != "" {
			unit.Kind = model.UnitMethod
			unit.Name = recv + "." + fn.Name.Name
			if i, ok := structIdx[recv]; ok {
				res.Units[i].Metrics.Methods++
			}
		}
		unit.Metrics.Params = countGoParams(fn.Type)
		unit.Metrics.Lines = unit.EndLine - unit.StartLine + 1
		if fn.Body != nil {
			unit.Metrics.Branches = countGoBranches(fn.Body)
			unit.Metrics.Nesting = measureGoNesting(fn.Body)
		}
		finishGoUnit(&unit, lines)
		unit.ID = uniqueUnitID(res.Units, rel, unit.Name)
		res.Units = append(res.Units, unit)
	}

	res.File.UnitCount = len(res.Units)
	return res, nil
}

// finishGoUnit fills NormalizedBody and Tokens from the source range
func finishGoUnit(unit *model.Unit, lines []string) {
	start, end := unit.StartLine-1, unit.EndLine
	if start < 0 {
		start = 0
	}
	if end > len(lines) {
		end = len(lines)
	}
	body := stripTSComments(lines[start:end])
	unit.NormalizedBody = normalizeGoLines(body)
	unit.Tokens = tokenize(unit.NormalizedBody)
}

// pkgNode maps a file path to its package-directory graph node
func pkgNode(rel string) string {
	return path.Dir(rel)
}

// modulePath reads the module path from root's go.mod, cached per root
func (a *GoAdapter) modulePath(root string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if m, ok := a.modules[root]; ok {
		return m
	}
	mod := ""
	if data, err := os.ReadFile(filepath.Join(root, "go.mod")); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "module "); ok {
				mod = strings.TrimSpace(rest)
				break
			}
		}
	}
	a.modules[root] = mod
	return mod
}

// resolveGoImport maps a module-internal import path to a package dir
// relative to root. External imports resolve to nothing.
func (a *GoAdapter) resolveGoImport(root, imp string) (string, bool) {
	mod := a.modulePath(root)
	if mod == "" || !strings.HasPrefix(imp, mod) {
		return "", false
	}
	rest := strings.TrimPrefix(imp, mod)
	if rest == "" {
		return ".", true
	}
	if !strings.HasPrefix(rest, "/") {
		return "", false
	}
	return strings.TrimPrefix(rest, "/"), true
}

func goReceiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}
	t := fn.Recv.List[0].Type
	if star, ok := t.(*ast.StarExpr); ok {
		t = star.X
	}
	if ix, ok := t.(*ast.IndexExpr); ok { // generic receiver
		t = ix.X
	}
	if id, ok := t.(*ast.Ident); ok {
		return id.Name
	}
	return ""
}

func countGoParams(ft *ast.FuncType) int {
	if ft.Params == nil {
		return 0
	}
	n := 0
	for _, f := range ft.Params.List {
		if len(f.Names) == 0 {
			n++
		} else {
			n += len(f.Names)
		}
	}
	return n
}

func countGoFields(st *ast.StructType) int {
	if st.Fields == nil {
		return 0
	}
	n := 0
	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			n++ // embedded field
		} else {
			n += len(f.Names)
		}
	}
	return n
}

func countGoBranches(body *ast.BlockStmt) int {
	n := 0
	ast.Inspect(body, func(node ast.Node) bool {
		switch v := node.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.CaseClause, *ast.CommClause:
			n++
		case *ast.BinaryExpr:
			if v.Op == token.LAND || v.Op == token.LOR {
				n++
			}
		}
		return true
	})
	return n
}

// measureGoNesting returns the max block depth below the function's own
// body. Case clause bodies carry bare statement lists and do not count.
func measureGoNesting(body *ast.BlockStmt) int {
	max := 0
	var walk func(n ast.Node, depth int)
	walk = func(n ast.Node, depth int) {
		ast.Inspect(n, func(child ast.Node) bool {
			if child == nil || child == n {
				return true
			}
			if blk, ok := child.(*ast.BlockStmt); ok {
				d := depth + 1
				if d > max {
					max = d
				}
				walk(blk, d)
				return false
			}
			return true
		})
	}
	walk(body, 0)
	return max
}

// normalizeGoLines strips blank and print-only lines and trims
// indentation. Comments must already be removed.
func normalizeGoLines(lines []string) string {
	var out []string
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "fmt.Println(") || strings.HasPrefix(t, "log.Printf(") || strings.HasPrefix(t, "log.Println(") {
			continue
		}
		out = append(out, t)
	}
	return strings.Join(out, "\n")
}
