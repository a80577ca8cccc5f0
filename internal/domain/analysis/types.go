package analysis

// Turn is one prior exchange passed as conversational context.
type Turn struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// QueryRequest asks the analysis engine a question about a company's
// documents, optionally with conversation history.
type QueryRequest struct {
	CompanySlug        string `json:"company_slug,omitempty"`
	CompanyName        string `json:"company_name,omitempty"`
	CompanyDescription string `json:"company_description,omitempty"`
	Question           string `json:"question"`
	History            []Turn `json:"history,omitempty"`
	Mode               string `json:"mode,omitempty"`
}

// QueryResponse is the engine's markdown answer.
type QueryResponse struct {
	Answer string `json:"answer"`
	Model  string `json:"model,omitempty"`
}

// IngestRequest forwards an uploaded document for analysis.
type IngestRequest struct {
	FileName           string
	ContentType        string
	Data               []byte
	CompanyName        string
	CompanyDescription string
	ConversationID     string
}

// IngestResult reports the outcome of a document ingest.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}
