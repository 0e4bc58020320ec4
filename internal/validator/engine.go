// Package validator drives the per-field submission state machine. Each
// submission is a pure transition from the prior attempt state, so callers
// own persistence and atomicity.
package validator

import (
	"fmt"
	"sync"
	"time"

	"docfill/internal/domain"
)

const (
	// ConfirmThreshold is the minimum normalization confidence required to
	// offer an alternative instead of rejecting outright.
	ConfirmThreshold = 0.6
	// autoAcceptAfter caps retry loops. The submission that accumulates
	// this many consecutive identical rejections is taken as-is.
	autoAcceptAfter = 3
)

// Engine validates submitted field values. It is stateless and safe for
// concurrent use.
type Engine struct{}

// New returns a validation Engine.
func New() *Engine {
	return &Engine{}
}

// Submit runs one submission through the state machine and returns the new
// attempt state. The prior attempt may be nil for a first submission; a
// terminal prior is returned unchanged.
func (e *Engine) Submit(field domain.FieldSchema, value string, prior *domain.ValidationAttempt) domain.ValidationAttempt {
	if prior != nil && prior.Status.Terminal() {
		return *prior
	}

	now := time.Now().UTC()

	if value == "" {
		if field.Required {
			return e.rejected(field, value, ReasonRequired, prior, now)
		}
		return domain.ValidationAttempt{
			FieldID:        field.FieldID,
			Status:         domain.StatusAccepted,
			SubmittedValue: value,
			AcceptedValue:  value,
			UpdatedAt:      now,
		}
	}

	out := checkValue(field.DataType, value)
	switch {
	case out.valid:
		return domain.ValidationAttempt{
			FieldID:        field.FieldID,
			Status:         domain.StatusAccepted,
			SubmittedValue: value,
			AcceptedValue:  out.canonical,
			UpdatedAt:      now,
		}
	case out.proposal != "" && out.confidence >= ConfirmThreshold:
		return domain.ValidationAttempt{
			FieldID:        field.FieldID,
			Status:         domain.StatusAwaitingConfirmation,
			SubmittedValue: value,
			ProposedValue:  out.proposal,
			Confidence:     out.confidence,
			UpdatedAt:      now,
		}
	default:
		reason := out.reason
		if reason == "" {
			reason = fmt.Sprintf("invalid %s value", field.DataType)
		}
		return e.rejected(field, value, reason, prior, now)
	}
}

// rejected records a rejection, tracking the consecutive-identical-reason
// streak. A different reason starts a new streak at 1. Hitting the cap
// flips the attempt to auto-accepted with the submitted value.
func (e *Engine) rejected(field domain.FieldSchema, value, reason string, prior *domain.ValidationAttempt, now time.Time) domain.ValidationAttempt {
	count := 1
	if prior != nil && prior.RejectionReason == reason {
		count = prior.RejectionCount + 1
	}

	if count >= autoAcceptAfter {
		return domain.ValidationAttempt{
			FieldID:         field.FieldID,
			Status:          domain.StatusAutoAccepted,
			SubmittedValue:  value,
			AcceptedValue:   value,
			RejectionReason: reason,
			RejectionCount:  count,
			UpdatedAt:       now,
		}
	}

	return domain.ValidationAttempt{
		FieldID:         field.FieldID,
		Status:          domain.StatusPending,
		SubmittedValue:  value,
		RejectionReason: reason,
		RejectionCount:  count,
		UpdatedAt:       now,
	}
}

// Confirm resolves an awaiting-confirmation attempt. Accepting takes the
// proposed value; declining returns the field to pending with its
// rejection streak intact.
func (e *Engine) Confirm(prior *domain.ValidationAttempt, accepted bool) (domain.ValidationAttempt, error) {
	if prior == nil || prior.Status != domain.StatusAwaitingConfirmation {
		return domain.ValidationAttempt{}, fmt.Errorf("field is not awaiting confirmation")
	}

	now := time.Now().UTC()
	if accepted {
		return domain.ValidationAttempt{
			FieldID:        prior.FieldID,
			Status:         domain.StatusAccepted,
			SubmittedValue: prior.SubmittedValue,
			AcceptedValue:  prior.ProposedValue,
			UpdatedAt:      now,
		}, nil
	}
	return domain.ValidationAttempt{
		FieldID:         prior.FieldID,
		Status:          domain.StatusPending,
		SubmittedValue:  prior.SubmittedValue,
		RejectionReason: prior.RejectionReason,
		RejectionCount:  prior.RejectionCount,
		UpdatedAt:       now,
	}, nil
}

// BatchItem is one entry of a stateless batch validation request.
type BatchItem struct {
	FieldID  string          `json:"field_id"`
	Value    string          `json:"value"`
	DataType domain.DataType `json:"data_type"`
	Name     string          `json:"name"`
}

// SubmitBatch validates items independently and concurrently. Results are
// positionally aligned with the input; ordering carries no meaning.
func (e *Engine) SubmitBatch(items []BatchItem) []domain.ValidationAttempt {
	results := make([]domain.ValidationAttempt, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()
			dt := item.DataType
			if !dt.Valid() {
				dt = domain.DataTypeText
			}
			field := domain.FieldSchema{
				FieldID:  item.FieldID,
				Label:    item.Name,
				DataType: dt,
				Required: true,
			}
			results[i] = e.Submit(field, item.Value, nil)
		}(i, item)
	}
	wg.Wait()
	return results
}
