package domain

// CaseStatusName is the wire identifier of a lifecycle stage.
type CaseStatusName string

const (
	CaseStatusToBeReviewed    CaseStatusName = "TO_BE_REVIEWED"
	CaseStatusReviewSubmitted CaseStatusName = "REVIEW_SUBMITTED"
	CaseStatusObservation     CaseStatusName = "OBSERVATION"
	CaseStatusComplete        CaseStatusName = "COMPLETE"
)

// CaseStatusNames lists the lifecycle in progress order.
var CaseStatusNames = []CaseStatusName{
	CaseStatusToBeReviewed,
	CaseStatusReviewSubmitted,
	CaseStatusObservation,
	CaseStatusComplete,
}

// ParseCaseStatusName reports whether value names a known status.
func ParseCaseStatusName(value string) (CaseStatusName, bool) {
	switch CaseStatusName(value) {
	case CaseStatusToBeReviewed, CaseStatusReviewSubmitted, CaseStatusObservation, CaseStatusComplete:
		return CaseStatusName(value), true
	default:
		return "", false
	}
}

// Step returns the zero-based position of n in the lifecycle, or -1.
func (n CaseStatusName) Step() int {
	for i, candidate := range CaseStatusNames {
		if candidate == n {
			return i
		}
	}
	return -1
}

// CaseStatus is a seeded lifecycle stage.
type CaseStatus struct {
	ID   int
	Name CaseStatusName
}

// FindStatus returns the status named name from statuses.
func FindStatus(statuses []CaseStatus, name CaseStatusName) (CaseStatus, bool) {
	for _, status := range statuses {
		if status.Name == name {
			return status, true
		}
	}
	return CaseStatus{}, false
}
