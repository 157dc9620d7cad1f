package policy

import "codejudge/internal/model"

// DefaultRegistry returns a Registry pre-populated with the built-in
// policy for each language named in the closed Language enumeration.
// Applications that need another language call Register directly; this
// function is not the only way to populate a Registry.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, p := range defaultPolicies {
		r.Register(p)
	}
	return r
}

var defaultPolicies = []model.LanguagePolicy{
	{
		Language:                 model.Java,
		DisplayName:              "Java",
		SourceFilenameConvention: "Main.java",
		RequiresCompilation:      true,
		BuildTemplate:            "javac -d {bindir} {src}",
		RunCommand:               "java -cp {bindir} {class}",
		TimeMultiplier:           3.0,
		MemoryMultiplier:         2.0,
	},
	{
		Language:                 model.Python,
		DisplayName:              "Python 3",
		SourceFilenameConvention: "main.py",
		RequiresCompilation:      false,
		RunCommand:               "python3 {src}",
		TimeMultiplier:           3.0,
		MemoryMultiplier:         1.5,
	},
	{
		Language:                 model.C,
		DisplayName:              "C",
		SourceFilenameConvention: "main.c",
		RequiresCompilation:      true,
		BuildTemplate:            "gcc -std=gnu11 -O2 -pipe -o {bin} {src}",
		RunCommand:               "{bin}",
		TimeMultiplier:           1.0,
		MemoryMultiplier:         1.0,
	},
	{
		Language:                 model.Cpp,
		DisplayName:              "C++",
		SourceFilenameConvention: "main.cpp",
		RequiresCompilation:      true,
		BuildTemplate:            "g++ -std=gnu++17 -O2 -pipe -o {bin} {src}",
		RunCommand:               "{bin}",
		TimeMultiplier:           1.0,
		MemoryMultiplier:         1.0,
	},
	{
		Language:                 model.Go,
		DisplayName:              "Go",
		SourceFilenameConvention: "main.go",
		RequiresCompilation:      true,
		BuildTemplate:            "go build -o {bin} {src}",
		RunCommand:               "{bin}",
		TimeMultiplier:           1.5,
		MemoryMultiplier:         1.5,
	},
	{
		Language:                 model.CSharp,
		DisplayName:              "C#",
		SourceFilenameConvention: "Main.cs",
		RequiresCompilation:      true,
		BuildTemplate:            "mcs -out:{bin} {src}",
		RunCommand:               "mono {bin}",
		TimeMultiplier:           2.5,
		MemoryMultiplier:         2.0,
	},
}
