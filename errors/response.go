package errors

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToResponse converts an AppError to its wire form.
func (e *AppError) ToResponse() ErrorResponse {
	msg := e.Message
	if msg == "" {
		msg = DefaultInternalMessage
	}
	return ErrorResponse{Error: msg}
}
