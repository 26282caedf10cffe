package model

// Instance is one latest-relation question about one graph.
type Instance struct {
	GraphID      int    `json:"graph_id"`
	RelationName string `json:"relation_name"`
	TargetEntity string `json:"target_entity"`
	Context      string `json:"context"`
}

// QARequest is what the answering model receives.
type QARequest struct {
	Context  string `json:"context"`
	Question string `json:"question"`
}

// QAResponse is what the answering model returns. Score is only set by
// extractive question-answering models.
type QAResponse struct {
	Answer string   `json:"answer"`
	Score  *float64 `json:"score,omitempty"`
}

// StructuredAnswer is the shape accepted when a chat model answers in JSON.
type StructuredAnswer struct {
	Answer string `json:"answer"`
	Entity string `json:"entity"`
}
