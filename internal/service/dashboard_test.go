package service

import (
	"context"
	"testing"
	"time"

	"team-tracker/internal/models"

	"github.com/stretchr/testify/require"
)

func TestIsOverdue(t *testing.T) {
	past := baseTime.Add(-time.Minute)
	require.True(t, IsOverdue(models.Task{DueDate: &past, Status: models.StatusNew}, baseTime))
	require.False(t, IsOverdue(models.Task{DueDate: &past, Status: models.StatusCompleted}, baseTime))
	require.False(t, IsOverdue(models.Task{Status: models.StatusNew}, baseTime))
}

func TestDashboardSummary(t *testing.T) {
	svc, db, _ := testSetup(t)
	ctx := context.Background()
	manager := createUser(t, db, "manager", models.RoleManager)
	alice := createUser(t, db, "alice", models.RoleMember)
	bob := createUser(t, db, "bob", models.RoleMember)

	soon := createTask(t, db, manager, alice, timePtr(baseTime.Add(48*time.Hour)))
	late := createTask(t, db, manager, bob, timePtr(baseTime.Add(-48*time.Hour)))
	createTask(t, db, manager, alice, timePtr(baseTime.Add(30*24*time.Hour)))
	review := createTask(t, db, manager, nil, nil)
	require.NoError(t, db.Model(review).Update("status", models.StatusUnderReview).Error)

	sum, err := svc.Dashboard.Summary(ctx, manager, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultUpcomingDays, sum.UpcomingDays)
	require.Equal(t, int64(3), sum.CountsByStatus[models.StatusInProgress])
	require.Equal(t, int64(1), sum.CountsByStatus[models.StatusUnderReview])
	require.Equal(t, int64(0), sum.CountsByStatus[models.StatusCompleted])
	require.Len(t, sum.Upcoming, 1)
	require.Equal(t, soon.ID, sum.Upcoming[0].ID)
	require.Len(t, sum.Overdue, 1)
	require.Equal(t, late.ID, sum.Overdue[0].ID)
	require.Len(t, sum.NeedsReview, 1)
	require.Equal(t, []PersonCount{
		{UserID: alice.ID, Name: "alice", Count: 2},
		{UserID: bob.ID, Name: "bob", Count: 1},
		{UserID: manager.ID, Name: "manager", Count: 0},
	}, sum.CountsByPerson)

	mine, err := svc.Dashboard.Summary(ctx, bob, 7)
	require.NoError(t, err)
	require.Empty(t, mine.Upcoming)
	require.Len(t, mine.Overdue, 1)
	require.Nil(t, mine.CountsByPerson)
}
