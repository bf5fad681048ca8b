package enums

import "fmt"

// SubmissionStatus is the lifecycle status of a grading submission and its cards.
// The declaration order is the canonical forward progression; a submission's
// rank never decreases outside an explicit reopen correction.
type SubmissionStatus string

const (
	SubmissionStatusPendingPayment    SubmissionStatus = "pending_payment"
	SubmissionStatusSubmitted         SubmissionStatus = "submitted"
	SubmissionStatusSubmittedPaid     SubmissionStatus = "submitted_paid"
	SubmissionStatusReceived          SubmissionStatus = "received"
	SubmissionStatusShippedToPSA      SubmissionStatus = "shipped_to_psa"
	SubmissionStatusInGrading         SubmissionStatus = "in_grading"
	SubmissionStatusGraded            SubmissionStatus = "graded"
	SubmissionStatusShippedBackToUs   SubmissionStatus = "shipped_back_to_us"
	SubmissionStatusReceivedFromPSA   SubmissionStatus = "received_from_psa"
	SubmissionStatusBalanceDue        SubmissionStatus = "balance_due"
	SubmissionStatusPaid              SubmissionStatus = "paid"
	SubmissionStatusShippedToCustomer SubmissionStatus = "shipped_to_customer"
	SubmissionStatusDelivered         SubmissionStatus = "delivered"
)

// SubmissionStatusOrder is the total order over submission statuses. Index is rank.
var SubmissionStatusOrder = []SubmissionStatus{
	SubmissionStatusPendingPayment,
	SubmissionStatusSubmitted,
	SubmissionStatusSubmittedPaid,
	SubmissionStatusReceived,
	SubmissionStatusShippedToPSA,
	SubmissionStatusInGrading,
	SubmissionStatusGraded,
	SubmissionStatusShippedBackToUs,
	SubmissionStatusReceivedFromPSA,
	SubmissionStatusBalanceDue,
	SubmissionStatusPaid,
	SubmissionStatusShippedToCustomer,
	SubmissionStatusDelivered,
}

var submissionStatusRanks = buildSubmissionRanks()

func buildSubmissionRanks() map[SubmissionStatus]int {
	ranks := make(map[SubmissionStatus]int, len(SubmissionStatusOrder))
	for i, status := range SubmissionStatusOrder {
		ranks[status] = i
	}
	return ranks
}

// String implements fmt.Stringer.
func (s SubmissionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SubmissionStatus.
func (s SubmissionStatus) IsValid() bool {
	_, ok := submissionStatusRanks[s]
	return ok
}

// Rank returns the integer position of the status in the forward progression.
func (s SubmissionStatus) Rank() (int, error) {
	rank, ok := submissionStatusRanks[s]
	if !ok {
		return 0, fmt.Errorf("unknown submission status %q", s)
	}
	return rank, nil
}

// ParseSubmissionStatus converts raw input into a SubmissionStatus.
func ParseSubmissionStatus(value string) (SubmissionStatus, error) {
	status := SubmissionStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid submission status %q", value)
	}
	return status, nil
}

// IsForwardSubmissionMove reports whether moving from -> to does not regress
// rank. A nil from (submission never ranked) sits below every real status.
func IsForwardSubmissionMove(from *SubmissionStatus, to SubmissionStatus) bool {
	toRank, err := to.Rank()
	if err != nil {
		return false
	}
	fromRank := -1
	if from != nil {
		rank, err := from.Rank()
		if err != nil {
			return false
		}
		fromRank = rank
	}
	return toRank >= fromRank
}

// SubmissionStatusesBelow returns every status ranked strictly below target.
// Used to express the forward-only advance as a single conditional UPDATE.
func SubmissionStatusesBelow(target SubmissionStatus) ([]SubmissionStatus, error) {
	targetRank, err := target.Rank()
	if err != nil {
		return nil, err
	}
	below := make([]SubmissionStatus, 0, targetRank)
	for _, status := range SubmissionStatusOrder[:targetRank] {
		below = append(below, status)
	}
	return below, nil
}
