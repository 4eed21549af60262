package models

import "event-ingress-service/internal/schema"

// ModelInteractionEvent and ModelParticipant are the registry names the
// API endpoints bind parameters to.
const (
	ModelInteractionEvent = "InteractionEvent"
	ModelParticipant      = "Participant"
)

// Register registers every ingress model with the registry.
func Register(r *schema.Registry) error {
	if _, err := r.Register(ModelInteractionEvent, InteractionEvent{}); err != nil {
		return err
	}
	if _, err := r.Register(ModelParticipant, Participant{}); err != nil {
		return err
	}
	return nil
}
