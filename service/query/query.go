package query

import "legal-search/answer"

// RequestPayload is the POST /query body. Question is a pointer so a missing field can be told
// apart from an empty string.
type RequestPayload struct {
	Question *string `json:"question"`
	TopK     *int    `json:"top_k"`
}

type ErrorBody struct {
	Detail string `json:"detail"`
}

type MessageBody struct {
	Message string `json:"message"`
}

type StatusBody struct {
	Status string `json:"status"`
}

var (
	RootBody   = MessageBody{Message: "Backend is running."}
	HealthBody = StatusBody{Status: "ok"}
)

// ToQuery applies the default top_k when the field was omitted.
func (p RequestPayload) ToQuery(defaultTopK int) answer.Query {
	q := answer.Query{TopK: defaultTopK}
	if p.Question != nil {
		q.Question = *p.Question
	}
	if p.TopK != nil {
		q.TopK = *p.TopK
	}
	return q
}
