package lifecycle

import "github.com/jhoicas/municipal-ops-api/internal/domain/entity"

var requestTransitions = map[string][]string{
	entity.RequestStatusDraft:     {entity.RequestStatusSubmitted, entity.RequestStatusCancelled},
	entity.RequestStatusSubmitted: {entity.RequestStatusApproved, entity.RequestStatusRejected, entity.RequestStatusCancelled},
	entity.RequestStatusApproved:  {entity.RequestStatusFulfilled},
}

// CanTransitionRequest informa si la requisición puede pasar de from a to.
func CanTransitionRequest(from, to string) bool {
	return contains(requestTransitions[from], to)
}
