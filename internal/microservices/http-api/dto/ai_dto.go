package dto

// BookSummaryRequest: title/author pair to summarize. Fields are checked by the
// generator so that blank values get the same error as missing ones.
type BookSummaryRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// BookSummaryResponse: generated summary; note is only present on the fallback path
type BookSummaryResponse struct {
	AISummary string   `json:"ai_summary"`
	AITags    []string `json:"ai_tags"`
	Note      string   `json:"note,omitempty"`
}

// ErrorResponse: body of every failed request
type ErrorResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}
