package provision

// Request represents the payload for provisioning credentials.
// Both fields are required; the email is intentionally not checked for
// format, only presence, matching the contract of the endpoint.
type Request struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// Response represents the payload after successful provisioning.
type Response struct {
	Message string
}
