package scanner

// FindingKind discriminates the finding variants.
type FindingKind string

const (
	KindString          FindingKind = "string"
	KindHeredoc         FindingKind = "heredoc"
	KindCall            FindingKind = "call"
	KindMissingVariable FindingKind = "missing_variable"
)

// Finding is one detected event in a file. Kind selects which fields are
// meaningful: string/heredoc findings carry Snippet and possibly Variable,
// call findings carry Verb and Context, missing-variable findings carry
// Variable, Context and Note. Name is synthesized later for findings with
// a resolved variable. All retained text is copied out of the scanned
// buffer, so findings outlive the file's tree.
type Finding struct {
	Kind     FindingKind `json:"type" yaml:"type"`
	Line     int         `json:"line,omitempty" yaml:"line,omitempty"`
	Variable string      `json:"variable,omitempty" yaml:"variable,omitempty"`
	Snippet  string      `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	Verb     string      `json:"verb,omitempty" yaml:"verb,omitempty"`
	Context  string      `json:"context,omitempty" yaml:"context,omitempty"`
	Note     string      `json:"note,omitempty" yaml:"note,omitempty"`
	Name     string      `json:"name,omitempty" yaml:"name,omitempty"`
}

// FileFindings holds the two raw finding sets one file scan produces,
// before correlation: literal findings from the token stream and call-site
// findings from the raw text.
type FileFindings struct {
	Path     string
	Literals []Finding
	Calls    []Finding
}
