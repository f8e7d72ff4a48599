package service

import (
	"context"
	"testing"
	"time"

	"team-tracker/internal/activity"
	"team-tracker/internal/models"

	"github.com/stretchr/testify/require"
)

func TestHistoryVisibility(t *testing.T) {
	svc, db, _ := testSetup(t)
	ctx := context.Background()
	manager := createUser(t, db, "manager", models.RoleManager)
	alice := createUser(t, db, "alice", models.RoleMember)
	bob := createUser(t, db, "bob", models.RoleMember, models.PermCreateTasks)

	aliceTask := createTask(t, db, manager, alice, nil)
	otherTask := createTask(t, db, manager, bob, nil)

	// manager acts on alice's task, bob acts on his own, alice comments on bob's
	_, err := svc.Tasks.UpdateStatus(ctx, manager, aliceTask.ID, models.StatusUnderReview)
	require.NoError(t, err)
	_, err = svc.Tasks.UpdateStatus(ctx, bob, otherTask.ID, models.StatusUnderReview)
	require.NoError(t, err)
	_, err = svc.Tasks.AddComment(ctx, alice, otherTask.ID, "looks good")
	require.NoError(t, err)

	all, err := svc.History.Entries(ctx, manager, activity.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	mine, err := svc.History.Entries(ctx, alice, activity.Filter{})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, e := range mine {
		require.True(t, e.UserID == alice.ID || *e.TaskID == aliceTask.ID)
	}

	filtered, err := svc.History.Entries(ctx, manager, activity.Filter{UserID: bob.ID})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "bob", filtered[0].User.Name)
}

func TestHistoryViewStatsForManagersOnly(t *testing.T) {
	svc, db, _ := testSetup(t)
	ctx := context.Background()
	manager := createUser(t, db, "manager", models.RoleManager)
	member := createUser(t, db, "member", models.RoleMember)
	task := createTask(t, db, manager, member, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Tasks.AddComment(ctx, member, task.ID, "note")
		require.NoError(t, err)
	}

	view, err := svc.History.View(ctx, manager, activity.Filter{})
	require.NoError(t, err)
	require.Equal(t, 3, view.Total)
	require.Len(t, view.Groups, 1)
	require.Len(t, view.Groups[0].Items, 3)
	require.NotNil(t, view.Stats)
	require.Equal(t, int64(3), view.Stats.TotalActivities)
	require.Equal(t, "member", view.Stats.TopContributors[0].Name)
	require.Len(t, view.Members, 2)

	memberView, err := svc.History.View(ctx, member, activity.Filter{})
	require.NoError(t, err)
	require.Nil(t, memberView.Stats)
	require.Empty(t, memberView.Members)
}

func TestHistoryProfile(t *testing.T) {
	svc, db, _ := testSetup(t)
	ctx := context.Background()
	manager := createUser(t, db, "manager", models.RoleManager)
	member := createUser(t, db, "member", models.RoleMember)
	other := createUser(t, db, "other", models.RoleMember)
	createTask(t, db, manager, member, timePtr(baseTime.Add(time.Hour)))

	p, err := svc.Projects.Create(ctx, manager, CreateProjectRequest{Title: "Launch", AssigneeIDs: []string{member.ID}})
	require.NoError(t, err)

	profile, err := svc.History.Profile(ctx, manager, member.ID)
	require.NoError(t, err)
	require.Equal(t, "member", profile.User.Name)
	require.Len(t, profile.AssignedTasks, 1)
	require.Len(t, profile.AssignedProjects, 1)
	require.Equal(t, p.ID, profile.AssignedProjects[0].ID)
	require.Empty(t, profile.Activity)

	_, err = svc.History.Profile(ctx, other, member.ID)
	require.ErrorIs(t, err, ErrForbidden)

	own, err := svc.History.Profile(ctx, manager, manager.ID)
	require.NoError(t, err)
	require.Len(t, own.Activity, 1)
	require.Equal(t, models.ActionCreateProject, own.Activity[0].Action)

	_, err = svc.History.Profile(ctx, manager, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryViewGroupsOnlyFilteredEntries(t *testing.T) {
	svc, db, _ := testSetup(t)
	ctx := context.Background()
	manager := createUser(t, db, "manager", models.RoleManager)
	member := createUser(t, db, "member", models.RoleMember)
	task := createTask(t, db, manager, member, nil)

	// member, manager, member on the same task, a minute apart
	for i, author := range []*models.User{member, manager, member} {
		require.NoError(t, db.Create(&models.ActivityLog{
			CreatedAt:  baseTime.Add(time.Duration(i) * time.Minute),
			UserID:     author.ID,
			Action:     models.ActionAddComment,
			EntityType: models.EntityTask,
			EntityID:   task.ID,
			Details:    models.PlainDetails("Comment added"),
			TaskID:     &task.ID,
		}).Error)
	}

	all, err := svc.History.View(ctx, manager, activity.Filter{})
	require.NoError(t, err)
	require.Equal(t, 3, all.Total)
	require.Len(t, all.Groups, 3)

	view, err := svc.History.View(ctx, manager, activity.Filter{UserID: member.ID})
	require.NoError(t, err)
	require.Equal(t, 2, view.Total)
	require.Len(t, view.Groups, 1)
	require.Len(t, view.Groups[0].Items, 2)
	require.Equal(t, member.ID, view.Groups[0].UserID)
	require.True(t, view.Groups[0].StartTime.Equal(baseTime))
	require.True(t, view.Groups[0].EndTime.Equal(baseTime.Add(2*time.Minute)))
}
