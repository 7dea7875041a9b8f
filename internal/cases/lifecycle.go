package cases

import "github.com/aldoetobex/legal-case-backend/pkg/models"

// Pending -> Assigned only happens through Accept. The status-update call
// moves an assigned case between InProgress and OnHold, or closes it.
var updateTargets = map[models.CaseStatus]bool{
	models.StatusInProgress: true,
	models.StatusOnHold:     true,
	models.StatusClosed:     true,
}

// updatableFrom lists the states a status update may start from.
var updatableFrom = []models.CaseStatus{
	models.StatusAssigned,
	models.StatusInProgress,
	models.StatusOnHold,
}

// IsUpdateTarget reports whether s may be requested through a status update.
func IsUpdateTarget(s models.CaseStatus) bool { return updateTargets[s] }

// CanTransition reports whether a status update may move a case from -> to.
func CanTransition(from, to models.CaseStatus) bool {
	if !IsUpdateTarget(to) {
		return false
	}
	for _, s := range updatableFrom {
		if s == from {
			return true
		}
	}
	return false
}

// IsTerminal is true for Closed.
func IsTerminal(s models.CaseStatus) bool { return s == models.StatusClosed }
