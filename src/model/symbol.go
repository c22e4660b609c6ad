package model

// UnitKind classifies an extracted code unit
type UnitKind string

const (
	UnitFunction UnitKind = "function"
	UnitMethod   UnitKind = "method"
	UnitClass    UnitKind = "class"
)

// UnitMetrics contains the signature metrics adapters compute per unit
type UnitMetrics struct {
	Lines    int `json:"lines"`
	Params   int `json:"params"`
	Branches int `json:"branches"`
	Nesting  int `json:"nesting"`
	Methods  int `json:"methods,omitempty"`
	Fields   int `json:"fields,omitempty"`
}

// Unit is a named code element (function, method, class) extracted by a
// language adapter. NormalizedBody has comments and blank lines stripped;
// Tokens is the identifier/operator stream used for similarity hashing.
type Unit struct {
	ID             string      `json:"id"` // file:name, unique within one scan
	File           string      `json:"file"`
	Name           string      `json:"name"` // qualified, e.g. Parser.consume
	Kind           UnitKind    `json:"kind"`
	StartLine      int         `json:"start_line"`
	EndLine        int         `json:"end_line"`
	NormalizedBody string      `json:"-"`
	Tokens         []string    `json:"-"`
	Metrics        UnitMetrics `json:"metrics"`
}

// Edge is a directed dependency between two graph nodes. Node labels are
// opaque to the core: files for TypeScript, package dirs for Go.
type Edge struct {
	FromFile string `json:"from_file"`
	ToFile   string `json:"to_file"`
	Kind     string `json:"kind"` // import, require
}

// FileInfo summarizes one successfully extracted source file. Node is
// the dependency-graph node the file belongs to.
type FileInfo struct {
	Path      string `json:"path"`
	Node      string `json:"node"`
	Lines     int    `json:"lines"`
	UnitCount int    `json:"unit_count"`
}

// ExtractWarning records a source file the adapter had to skip
type ExtractWarning struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// SymbolModel is the normalized, language-agnostic view of a codebase.
// Detectors consume it read-only; a non-empty Warnings list marks the
// scan's results as partial.
type SymbolModel struct {
	Root     string           `json:"root"`
	Language string           `json:"language"`
	Files    []FileInfo       `json:"files"`
	Units    []Unit           `json:"units"`
	Edges    []Edge           `json:"edges"`
	Warnings []ExtractWarning `json:"warnings,omitempty"`
}
