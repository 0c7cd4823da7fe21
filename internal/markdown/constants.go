package markdown

const (
	// UntitledTitle is returned by ExtractTitle when a document has no H1
	UntitledTitle = "Untitled"

	// DefaultCodeLanguage is used for fences without a language token
	DefaultCodeLanguage = "text"

	// MaxHeaderLevel is the deepest ATX heading recognised
	MaxHeaderLevel = 6

	fence = "```"
)
