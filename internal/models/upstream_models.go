package models

// AnalysisRequest is the upstream request envelope: a single field carrying
// the serialized array of review items.
type AnalysisRequest struct {
	Inputs string `json:"inputs"`
}

// AnalysisResponse is the upstream response envelope. GeneratedText holds the
// model's free-text answer, which usually (but not always) embeds a
// structured block.
type AnalysisResponse struct {
	GeneratedText string `json:"generated_text"`
}
