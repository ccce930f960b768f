package models

type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse carries either a classification or a server-side error.
type AnalyzeResponse struct {
	Tweet     string `json:"tweet"`
	Sentiment string `json:"sentiment"`
	Error     string `json:"error,omitempty"`
}

// ErrorResponse is the body shape the remote service uses for failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
