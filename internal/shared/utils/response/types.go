package response

// Envelope is the response shape shared by every endpoint in every
// service, including proxy-generated errors at the gateway.
type Envelope struct {
	Success bool        `json:"success"`           // true for 2xx responses
	Message string      `json:"message"`           // Human-readable message
	Data    interface{} `json:"data,omitempty"`    // Payload for success
	Error   interface{} `json:"error,omitempty"`   // Validation or error details
}
