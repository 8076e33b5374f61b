package config

// DefaultCleanupExtensions are the auxiliary files LaTeX toolchains leave behind.
var DefaultCleanupExtensions = []string{
	".aux", ".log", ".toc", ".out", ".bbl", ".blg",
	".fls", ".fdb_latexmk", ".synctex.gz",
}

// DefaultWatchPatterns are the source globs watch mode reacts to.
var DefaultWatchPatterns = []string{"*.tex", "*.bib"}

const defaultDebounceMillis = 500

// latexArgs are the standard non-interactive pdflatex arguments for a source file.
func latexArgs(source string) []string {
	return []string{"-interaction=nonstopmode", "-halt-on-error", source}
}

// Default returns the compiled-in configuration: a full report build
// (three compile passes with a best-effort bibliography pass after the
// first) and a single-pass presentation.
func Default() *Config {
	return &Config{
		Documents: []Document{
			{
				Name:     "report",
				Artifact: "report.pdf",
				Steps: []Step{
					{Command: "pdflatex", Args: latexArgs("report.tex"), Class: StepRequired},
					{Command: "bibtex", Args: []string{"report"}, Class: StepBestEffort},
					{Command: "pdflatex", Args: latexArgs("report.tex"), Class: StepRequired},
					{Command: "pdflatex", Args: latexArgs("report.tex"), Class: StepRequired},
				},
				Quick: []Step{
					{Command: "pdflatex", Args: latexArgs("report.tex"), Class: StepRequired},
				},
			},
			{
				Name:     "presentation",
				Artifact: "presentation.pdf",
				Steps: []Step{
					{Command: "pdflatex", Args: latexArgs("presentation.tex"), Class: StepRequired},
				},
			},
		},
		Cleanup: CleanupConfig{Extensions: DefaultCleanupExtensions},
		Journal: JournalConfig{Enabled: true, Path: ".texbuild/journal.db"},
		Watch: WatchConfig{
			DebounceMillis: defaultDebounceMillis,
			Patterns:       DefaultWatchPatterns,
		},
	}
}
