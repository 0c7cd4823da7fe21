package markdown

// Header is a markdown ATX heading with its 1-based line number
type Header struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Line  int    `json:"line"`
}

// CodeBlock is the body of a fenced code block
type CodeBlock struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Link is a relative link from one markdown page to another
type Link struct {
	Text        string `json:"text"`
	Destination string `json:"destination"`
}
