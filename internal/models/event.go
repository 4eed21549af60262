// Package models defines the data structures accepted by the ingress API.
//
// The `json` tag names the wire property; the `schema` tag declares the
// validation constraints the schema registry compiles for the field.
package models

// Participant identifies a party attached to an interaction.
// The password field is only present on join events coming from legacy
// dial-in bridges and must never leave the service unmasked.
type Participant struct {
	ID          string `json:"id" schema:"required"`
	DisplayName string `json:"displayName" schema:"maxLength=128"`
	Email       string `json:"email" schema:"format=email"`
	Role        string `json:"role" schema:"enum=agent|customer|supervisor"`
	Password    string `json:"password" schema:"sensitive"`
}

// InteractionEvent is the envelope every ingress endpoint accepts.
type InteractionEvent struct {
	EventType     string       `json:"eventType" schema:"required"`
	InteractionID string       `json:"interactionId" schema:"required,minLength=1"`
	TenantID      string       `json:"tenantId" schema:"required"`
	Timestamp     int64        `json:"timestamp" schema:"minimum=0"`
	Participant   *Participant `json:"participant"`
	Confidence    float64      `json:"confidence" schema:"minimum=0,maximum=1"`
	Tags          []string     `json:"tags" schema:"maxItems=16"`
	Attributes    map[string]string `json:"attributes"`
}

// AcceptedEvent is the record published to the accepted topic after
// validation. EventID is assigned by the server.
type AcceptedEvent struct {
	EventID       string `json:"eventId"`
	Sequence      uint64 `json:"sequence"`
	EventType     string `json:"eventType"`
	InteractionID string `json:"interactionId"`
	TenantID      string `json:"tenantId"`
	Timestamp     int64  `json:"timestamp"`
	Payload       any    `json:"payload"`
}

// RejectedEvent is the audit record published when a request fails
// validation. Errors carries the redacted validator output.
type RejectedEvent struct {
	Param         string `json:"param"`
	InteractionID string `json:"interactionId,omitempty"`
	Timestamp     int64  `json:"timestamp"`
	Message       string `json:"message"`
	Errors        any    `json:"errors"`
}
