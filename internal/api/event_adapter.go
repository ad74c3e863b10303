package api

import (
	dcritique "geoverify/domain/critique"
	"geoverify/internal/critique"
)

// EventBroadcaster receives critique session events
type EventBroadcaster interface {
	Broadcast(event SessionEvent)
}

// processEvents converts the outcome of one graded response into the events
// watchers see, in order
func processEvents(r *critique.ProcessResult) []SessionEvent {
	id := r.SessionID.String()
	events := []SessionEvent{{
		SessionID: id,
		EventType: EventIterationGraded,
		Iteration: r.IterationNumber,
		Data: map[string]any{
			"stage":             r.Stage.String(),
			"result":            r.Result.String(),
			"confidence_rating": r.Confidence,
			"red_flags":         r.RedFlags,
		},
	}}

	if r.NextIteration != nil {
		events = append(events, SessionEvent{
			SessionID: id,
			EventType: EventIterationIssued,
			Iteration: r.NextIteration.Number,
			Data:      map[string]any{"stage": r.NextIteration.Stage.String()},
		})
	}

	if r.SessionComplete {
		events = append(events, SessionEvent{
			SessionID: id,
			EventType: EventSessionCompleted,
			Data: map[string]any{
				"overall_result":          r.OverallResult.String(),
				"plausibility_trap_score": r.PlausibilityTrapScore,
				"iteration_cap_reached":   r.IterationCapReached,
			},
		})
	}
	return events
}

// statusEvent reports a status snapshot under eventType
func statusEvent(eventType string, s *dcritique.Status) SessionEvent {
	return SessionEvent{
		SessionID: s.SessionID.String(),
		EventType: eventType,
		Iteration: s.PendingIteration,
		Data: map[string]any{
			"current_stage":  s.CurrentStage.String(),
			"overall_result": s.OverallResult.String(),
			"is_complete":    s.IsComplete,
		},
	}
}
