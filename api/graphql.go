package api

// GraphQLRequest is the body of POST /graphql. GET requests carry the same
// fields as query parameters, with variables JSON encoded.
type GraphQLRequest struct {
	Query         string         `json:"query" form:"query"`
	OperationName string         `json:"operationName,omitempty" form:"operationName"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
