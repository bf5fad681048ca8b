package lifecycle

import "github.com/slabworks/slabdesk-backend/pkg/enums"

// GroupTargetFor maps a submission status onto the group status it implies.
// Statuses with no group-level meaning return ok=false and imply no transition.
func GroupTargetFor(status enums.SubmissionStatus) (enums.GroupStatus, bool) {
	switch status {
	case enums.SubmissionStatusShippedToPSA,
		enums.SubmissionStatusInGrading,
		enums.SubmissionStatusGraded:
		return enums.GroupStatusAtPSA, true
	case enums.SubmissionStatusShippedBackToUs,
		enums.SubmissionStatusReceivedFromPSA,
		enums.SubmissionStatusBalanceDue,
		enums.SubmissionStatusPaid,
		enums.SubmissionStatusShippedToCustomer:
		return enums.GroupStatusReturned, true
	case enums.SubmissionStatusDelivered:
		return enums.GroupStatusClosed, true
	default:
		return "", false
	}
}
