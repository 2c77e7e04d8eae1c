package config

const (
	defaultLatexDir          = "~/.local/share/gazette/latex"
	defaultPDFDir            = "~/.local/share/gazette/papers"
	defaultLogDir            = "~/.local/share/gazette/logs"
	defaultArxivBaseURL      = "https://export.arxiv.org/api/query"
	defaultDaysBack          = 1
	defaultMaxResults        = 100
	defaultRequestTimeout    = 30
	defaultRequestDelay      = 1
	defaultEngine            = "pdflatex"
	defaultCompileTimeout    = 60
	defaultAttempts          = 2
	defaultMaxPapers         = 50
	defaultAbstractMaxLength = 1000
	defaultScheduleHour      = 10
	defaultScheduleMinute    = 0
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LatexDir: defaultLatexDir,
			PDFDir:   defaultPDFDir,
			LogDir:   defaultLogDir,
		},
		Arxiv: Arxiv{
			BaseURL:        defaultArxivBaseURL,
			Categories:     []string{"physics.comp-ph", "physics.chem-ph", "cs.LG", "cs.AI"},
			DaysBack:       defaultDaysBack,
			MaxResults:     defaultMaxResults,
			RequestTimeout: defaultRequestTimeout,
			RequestDelay:   defaultRequestDelay,
		},
		Groups: []Group{
			{
				Name:     "electronic_structure",
				Patterns: []string{"electronic structure", "DFT", "quantum chemistry", "ab initio", "first-principles"},
			},
			{
				Name:     "artificial_intelligence",
				Patterns: []string{"machine learning", "neural network", "deep learning", "transformer"},
			},
		},
		Latex: Latex{
			Engine:            defaultEngine,
			CompileTimeout:    defaultCompileTimeout,
			Attempts:          defaultAttempts,
			MaxPapers:         defaultMaxPapers,
			AbstractMaxLength: defaultAbstractMaxLength,
		},
		Schedule: Schedule{
			Hour:   defaultScheduleHour,
			Minute: defaultScheduleMinute,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
