package models

// OutboundMessageRequest is a text message pushed to an operator's WhatsApp.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}
