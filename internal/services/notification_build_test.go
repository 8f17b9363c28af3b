package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexus-backend/internal/models"
)

func TestBuildRejectionCarriesTheNotes(t *testing.T) {
	_, msg, err := BuildTitleMessage(NotiApplicationRejected, NotiParams{Notes: "insufficient GPA"})
	require.NoError(t, err)
	assert.Contains(t, msg, "insufficient GPA")
}

func TestBuildRejectionRequiresNotes(t *testing.T) {
	_, _, err := BuildTitleMessage(NotiApplicationRejected, NotiParams{})
	require.Error(t, err)
}

func TestBuildWelcomeCarriesMemberID(t *testing.T) {
	_, msg, err := BuildTitleMessage(NotiMemberWelcome, NotiParams{MemberID: "NI-2025-0007"})
	require.NoError(t, err)
	assert.Contains(t, msg, "NI-2025-0007")
}

func TestBuildDocumentMessages(t *testing.T) {
	_, msg, err := BuildTitleMessage(NotiDocumentRejected, NotiParams{DocType: "transcript", Reason: "unreadable scan"})
	require.NoError(t, err)
	assert.Contains(t, msg, "transcript")
	assert.Contains(t, msg, "unreadable scan")

	_, _, err = BuildTitleMessage(NotiDocumentRejected, NotiParams{DocType: "transcript"})
	require.Error(t, err, "document rejection without a reason is not a valid state")

	_, msg, err = BuildTitleMessage(NotiDocumentVerified, NotiParams{DocType: "id-card"})
	require.NoError(t, err)
	assert.Contains(t, msg, "id-card")
}

func TestBuildAllTypesRender(t *testing.T) {
	full := NotiParams{
		Notes: "n", Reason: "r", DocType: "d", MemberID: "NI-2025-0001",
		Level: models.LevelGold, Status: models.MemberSuspended,
		Role: "granted", Title: "t", Message: "m",
	}
	types := []models.NotiType{
		NotiApplicationSubmitted, NotiApplicationApproved, NotiApplicationRejected,
		NotiDocumentVerified, NotiDocumentRejected, NotiDocumentInfoRequested,
		NotiMemberWelcome, NotiMemberLevelChanged, NotiMemberStatusChanged,
		NotiRoleChanged, NotiAnnouncement,
	}
	for _, typ := range types {
		title, msg, err := BuildTitleMessage(typ, full)
		require.NoError(t, err, "type %s", typ)
		assert.NotEmpty(t, title)
		assert.NotEmpty(t, msg)
	}
}

func TestBuildUnknownType(t *testing.T) {
	_, _, err := BuildTitleMessage(models.NotiType("mystery"), NotiParams{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown noti type"))
}

func TestDefaultPriorities(t *testing.T) {
	assert.Equal(t, models.PriorityHigh, DefaultPriority(NotiApplicationApproved))
	assert.Equal(t, models.PriorityHigh, DefaultPriority(NotiApplicationRejected))
	assert.Equal(t, models.PriorityHigh, DefaultPriority(NotiMemberWelcome))
	assert.Equal(t, models.PriorityLow, DefaultPriority(NotiAnnouncement))
	assert.Equal(t, models.PriorityMedium, DefaultPriority(NotiApplicationSubmitted))
}
