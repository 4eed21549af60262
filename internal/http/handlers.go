// Package http exposes the ingress REST API. Every request parameter is
// declared as pipe metadata and runs through the validation pipe before
// a handler touches it.
package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"event-ingress-service/internal/app"
	"event-ingress-service/internal/models"
	"event-ingress-service/internal/observability/logging"
	"event-ingress-service/internal/observability/metrics"
	"event-ingress-service/internal/pipe"
	"event-ingress-service/internal/service/recent"
	"event-ingress-service/internal/service/sequence"
)

type handlers struct {
	app *app.Application
}

// errorResponse is the wire shape of a rejected request.
type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Errors  any    `json:"errors"`
}

func (h *handlers) postInteraction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, ok := h.readBody(w, r, "post_interaction", start)
	if !ok {
		return
	}

	param := pipe.Param{
		Source:     pipe.SourceBody,
		Model:      models.ModelInteractionEvent,
		Collection: pipe.CollectionSingle,
		Required:   true,
	}
	if _, err := h.app.Pipe.Transform(r.Context(), bodyValue(body), param); err != nil {
		h.reject(w, r, "post_interaction", err, start)
		return
	}

	var ev models.InteractionEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		// pipe already accepted the payload; this is a shape mismatch bug
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	accepted := h.accept(r, ev.EventType, ev.InteractionID, ev.TenantID, ev.Timestamp, ev)
	h.respond(w, http.StatusAccepted, map[string]any{
		"eventId":  accepted.EventID,
		"sequence": accepted.Sequence,
	})
	metrics.DefaultMetrics.RecordRequest("post_interaction", "accepted", time.Since(start).Seconds())
}

func (h *handlers) postInteractionBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, ok := h.readBody(w, r, "post_interaction_batch", start)
	if !ok {
		return
	}

	param := pipe.Param{
		Source:     pipe.SourceBody,
		Model:      models.ModelInteractionEvent,
		Collection: pipe.CollectionArray,
		Required:   true,
	}
	if _, err := h.app.Pipe.Transform(r.Context(), bodyValue(body), param); err != nil {
		h.reject(w, r, "post_interaction_batch", err, start)
		return
	}

	var evs []models.InteractionEvent
	if err := json.Unmarshal(body, &evs); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ids := make([]string, 0, len(evs))
	for _, ev := range evs {
		accepted := h.accept(r, ev.EventType, ev.InteractionID, ev.TenantID, ev.Timestamp, ev)
		ids = append(ids, accepted.EventID)
	}
	h.respond(w, http.StatusAccepted, map[string]any{
		"accepted": len(ids),
		"eventIds": ids,
	})
	metrics.DefaultMetrics.RecordRequest("post_interaction_batch", "accepted", time.Since(start).Seconds())
}

func (h *handlers) putParticipants(w http.ResponseWriter, r *http.Request) {
	h.putParticipantCollection(w, r, "put_participants", pipe.CollectionMap, "interaction.participants.updated")
}

func (h *handlers) putWatchers(w http.ResponseWriter, r *http.Request) {
	h.putParticipantCollection(w, r, "put_watchers", pipe.CollectionSet, "interaction.watchers.updated")
}

func (h *handlers) putParticipantCollection(w http.ResponseWriter, r *http.Request, endpoint string, collection pipe.Collection, eventType string) {
	start := time.Now()

	idParam := pipe.Param{
		Name:     "interactionId",
		Source:   pipe.SourcePath,
		Kind:     pipe.KindString,
		Required: true,
	}
	interactionId, err := h.app.Pipe.Transform(r.Context(), pathValue(r, "interactionId"), idParam)
	if err != nil {
		h.reject(w, r, endpoint, err, start)
		return
	}

	body, ok := h.readBody(w, r, endpoint, start)
	if !ok {
		return
	}
	param := pipe.Param{
		Source:     pipe.SourceBody,
		Model:      models.ModelParticipant,
		Collection: collection,
		Required:   true,
	}
	if _, err := h.app.Pipe.Transform(r.Context(), bodyValue(body), param); err != nil {
		h.reject(w, r, endpoint, err, start)
		return
	}

	var payload any
	_ = json.Unmarshal(body, &payload)

	id, _ := interactionId.(string)
	accepted := h.accept(r, eventType, id, "", time.Now().UnixMilli(), payload)
	h.respond(w, http.StatusAccepted, map[string]any{
		"eventId":  accepted.EventID,
		"sequence": accepted.Sequence,
	})
	metrics.DefaultMetrics.RecordRequest(endpoint, "accepted", time.Since(start).Seconds())
}

func (h *handlers) listInteractions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	includePayload, err := h.app.Pipe.Transform(ctx, queryValue(r, "includePayload"), pipe.Param{
		Name: "includePayload", Source: pipe.SourceQuery, Kind: pipe.KindBoolean,
	})
	if err != nil {
		h.reject(w, r, "list_interactions", err, start)
		return
	}
	limit, err := h.app.Pipe.Transform(ctx, queryValue(r, "limit"), pipe.Param{
		Name: "limit", Source: pipe.SourceQuery, Kind: pipe.KindInteger,
	})
	if err != nil {
		h.reject(w, r, "list_interactions", err, start)
		return
	}
	minConfidence, err := h.app.Pipe.Transform(ctx, queryValue(r, "minConfidence"), pipe.Param{
		Name: "minConfidence", Source: pipe.SourceQuery, Kind: pipe.KindNumber,
	})
	if err != nil {
		h.reject(w, r, "list_interactions", err, start)
		return
	}
	tenantId, err := h.app.Pipe.Transform(ctx, queryValue(r, "tenantId"), pipe.Param{
		Name: "tenantId", Source: pipe.SourceQuery, Kind: pipe.KindString,
	})
	if err != nil {
		h.reject(w, r, "list_interactions", err, start)
		return
	}

	filter := recent.Filter{}
	if n, ok := limit.(int64); ok {
		filter.Limit = int(n)
	}
	if f, ok := minConfidence.(float64); ok {
		filter.MinConfidence = f
	}
	if t, ok := tenantId.(string); ok {
		filter.TenantID = t
	}

	events := h.app.Recent.List(filter)
	if b, ok := includePayload.(bool); !ok || !b {
		for i := range events {
			events[i].Payload = nil
		}
	}

	h.respond(w, http.StatusOK, map[string]any{
		"count":  len(events),
		"events": events,
	})
	metrics.DefaultMetrics.RecordRequest("list_interactions", "ok", time.Since(start).Seconds())
}

// accept assigns identity to a validated event, buffers it and
// publishes it to the accepted topic.
func (h *handlers) accept(r *http.Request, eventType, interactionId, tenantId string, timestamp int64, payload any) models.AcceptedEvent {
	accepted := models.AcceptedEvent{
		EventID:       uuid.NewString(),
		Sequence:      h.app.Sequence.Next(),
		EventType:     eventType,
		InteractionID: interactionId,
		TenantID:      tenantId,
		Timestamp:     timestamp,
		Payload:       payload,
	}
	h.app.Recent.Add(accepted)
	metrics.DefaultMetrics.RecordEventAccepted()

	key := sequence.Key(interactionId, accepted.Sequence)

	if err := h.app.Publisher.PublishAccepted(r.Context(), key, accepted); err != nil {
		eventLogger := logging.WithInteraction(interactionId, tenantId)
		eventLogger.Error().Err(err).
			Msg("Failed to publish accepted event")
	}
	return accepted
}

// reject writes the 400 response and publishes the redacted rejection
// record to the audit topic.
func (h *handlers) reject(w http.ResponseWriter, r *http.Request, endpoint string, err error, start time.Time) {
	perr, ok := err.(*pipe.ParamError)
	if !ok {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		metrics.DefaultMetrics.RecordRequest(endpoint, "error", time.Since(start).Seconds())
		return
	}

	metrics.DefaultMetrics.RecordEventRejected()
	rejection := models.RejectedEvent{
		Param:     perr.Param,
		Timestamp: time.Now().UnixMilli(),
		Message:   perr.Error(),
		Errors:    perr.Errors,
	}
	if err := h.app.Publisher.PublishRejected(r.Context(), perr.Param, rejection); err != nil {
		h.app.Logger.Error().Err(err).
			Str("param", perr.Param).
			Msg("Failed to publish rejection record")
	}

	h.respond(w, perr.Status(), errorResponse{
		Status:  perr.Status(),
		Message: perr.Error(),
		Errors:  perr.Errors,
	})
	metrics.DefaultMetrics.RecordRequest(endpoint, "rejected", time.Since(start).Seconds())
}

func (h *handlers) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.app.Logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// readBody drains the request body, answering 400 on a read failure so
// a broken stream is not mistaken for an absent parameter.
func (h *handlers) readBody(w http.ResponseWriter, r *http.Request, endpoint string, start time.Time) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.app.Logger.Error().Err(err).
			Str("endpoint", endpoint).
			Msg("Failed to read request body")
		h.respond(w, http.StatusBadRequest, errorResponse{
			Status:  http.StatusBadRequest,
			Message: "Unable to read request body.",
		})
		metrics.DefaultMetrics.RecordRequest(endpoint, "error", time.Since(start).Seconds())
		return nil, false
	}
	return body, true
}

// bodyValue maps an empty body to the pipe's absent sentinel.
func bodyValue(body []byte) any {
	if len(body) == 0 {
		return pipe.Undefined
	}
	return body
}

// queryValue returns the raw query string value, or Undefined when the
// parameter is not present at all.
func queryValue(r *http.Request, name string) any {
	values, ok := r.URL.Query()[name]
	if !ok || len(values) == 0 {
		return pipe.Undefined
	}
	return values[0]
}

// pathValue returns the raw path parameter, or Undefined when empty.
func pathValue(r *http.Request, name string) any {
	v := chi.URLParam(r, name)
	if v == "" {
		return pipe.Undefined
	}
	return v
}
