// Package model defines the judge's core data types: Language, Request,
// Execution, and Verdict, as named in the judge pipeline's data model.
package model

// Language is one of the closed (but extensible-by-registration) set of
// languages the judge accepts.
type Language string

const (
	Java   Language = "JAVA"
	Python Language = "PYTHON"
	C      Language = "C"
	Cpp    Language = "CPP"
	Go     Language = "GO"
	CSharp Language = "CS"
)

// LanguagePolicy is the per-language recipe the Language Policy Table (C2)
// looks up: how to name the source file, how to build it, and how to run
// the result.
type LanguagePolicy struct {
	Language Language

	DisplayName             string
	SourceFilenameConvention string // e.g. "Main.java", used verbatim; empty when free-form (the declared filename is kept)
	RequiresCompilation     bool
	BuildTemplate           string // "{src}", "{bin}" placeholders; empty when RequiresCompilation is false
	RunCommand              string // "{src}", "{bin}", "{extraFlags}" placeholders

	// TimeMultiplier and MemoryMultiplier scale a submission's limits before
	// they reach the sandbox, the way slower runtimes (the JVM, CPython) get
	// more wall-clock and memory headroom than C/C++ for the same declared
	// limit.
	TimeMultiplier   float64
	MemoryMultiplier float64
	Env              []string
}

// SourceFilename renders the policy's filename convention. Most languages
// have a single fixed name; Java's convention depends on the declared
// public class name, which is why it takes one.
func (p LanguagePolicy) SourceFilename(className string) string {
	if p.Language == Java && className != "" {
		return className + ".java"
	}
	return p.SourceFilenameConvention
}
