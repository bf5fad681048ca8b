package enums

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubmissionStatusRanksAreDenseAndOrdered(t *testing.T) {
	require.Len(t, SubmissionStatusOrder, 13)
	for i, status := range SubmissionStatusOrder {
		rank, err := status.Rank()
		require.NoError(t, err)
		require.Equal(t, i, rank)
	}
}

func TestSubmissionStatusRankUnknown(t *testing.T) {
	_, err := SubmissionStatus("melted").Rank()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown submission status")
}

func TestIsForwardSubmissionMove(t *testing.T) {
	graded := SubmissionStatusGraded

	require.True(t, IsForwardSubmissionMove(nil, SubmissionStatusPendingPayment))
	require.True(t, IsForwardSubmissionMove(&graded, SubmissionStatusGraded))
	require.True(t, IsForwardSubmissionMove(&graded, SubmissionStatusDelivered))
	require.False(t, IsForwardSubmissionMove(&graded, SubmissionStatusReceived))

	unknown := SubmissionStatus("nope")
	require.False(t, IsForwardSubmissionMove(&unknown, SubmissionStatusGraded))
	require.False(t, IsForwardSubmissionMove(nil, unknown))
}

func TestSubmissionStatusesBelow(t *testing.T) {
	below, err := SubmissionStatusesBelow(SubmissionStatusReceived)
	require.NoError(t, err)
	require.Equal(t, []SubmissionStatus{
		SubmissionStatusPendingPayment,
		SubmissionStatusSubmitted,
		SubmissionStatusSubmittedPaid,
	}, below)

	below, err = SubmissionStatusesBelow(SubmissionStatusPendingPayment)
	require.NoError(t, err)
	require.Empty(t, below)

	_, err = SubmissionStatusesBelow(SubmissionStatus("bogus"))
	require.Error(t, err)
}

func TestGroupStatusRankAndEditability(t *testing.T) {
	require.Len(t, GroupStatusOrder, 5)
	prev := -1
	for _, status := range GroupStatusOrder {
		rank, err := status.Rank()
		require.NoError(t, err)
		require.Greater(t, rank, prev)
		prev = rank
	}

	require.True(t, GroupStatusDraft.IsEditable())
	require.True(t, GroupStatusReadyToShip.IsEditable())
	require.False(t, GroupStatusAtPSA.IsEditable())
	require.False(t, GroupStatusReturned.IsEditable())
	require.False(t, GroupStatusClosed.IsEditable())
}

func TestInvoiceStatusOpen(t *testing.T) {
	require.True(t, InvoiceStatusPending.IsOpen())
	require.True(t, InvoiceStatusDraft.IsOpen())
	require.True(t, InvoiceStatusSent.IsOpen())
	require.False(t, InvoiceStatusPaid.IsOpen())
	require.False(t, InvoiceStatusClosed.IsOpen())
	require.False(t, InvoiceStatusSuperseded.IsOpen())
}
