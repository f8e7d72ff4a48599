package service

import (
	"context"
	"testing"

	"team-tracker/internal/models"

	"github.com/stretchr/testify/require"
)

func TestRequestApproveCreatesTask(t *testing.T) {
	svc, db, sink := testSetup(t)
	ctx := context.Background()
	manager := createUser(t, db, "manager", models.RoleManager)
	member := createUser(t, db, "member", models.RoleMember)

	r, err := svc.Requests.Create(ctx, member, CreateRequestRequest{Title: "New laptop", IsUrgent: true})
	require.NoError(t, err)
	require.Equal(t, models.RequestPending, r.Status)
	require.Equal(t, "URGENT: New request from member", sink.to(manager.ID)[0].Message)

	_, _, err = svc.Requests.Decide(ctx, member, r.ID, Decision{Status: models.RequestApproved})
	require.ErrorIs(t, err, ErrForbidden)

	decided, task, err := svc.Requests.Decide(ctx, manager, r.ID, Decision{Status: models.RequestApproved, Comment: "ok"})
	require.NoError(t, err)
	require.Equal(t, models.RequestApproved, decided.Status)
	require.NotNil(t, task)
	require.True(t, task.IsAssignedTo(member.ID))
	require.Equal(t, models.PriorityUrgent, task.Priority)
	require.Equal(t, "From Request: New laptop", task.Description)

	require.ElementsMatch(t, []models.Action{models.ActionCreateRequest, models.ActionApproveRequest}, actionsOf(logsFor(t, db, r.ID)))
	approved := logWithAction(t, db, r.ID, models.ActionApproveRequest)
	require.Equal(t, "Converted to Task "+task.ID+" | Comment: ok", approved.Details.Text)
	require.Nil(t, approved.TaskID)
	require.Len(t, logsFor(t, db, task.ID), 1)

	require.Equal(t, `Your request "New laptop" was APPROVED: ok`, sink.to(member.ID)[0].Message)

	_, _, err = svc.Requests.Decide(ctx, manager, r.ID, Decision{Status: models.RequestRejected})
	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestRequestReject(t *testing.T) {
	svc, db, _ := testSetup(t)
	ctx := context.Background()
	manager := createUser(t, db, "manager", models.RoleManager)
	member := createUser(t, db, "member", models.RoleMember)

	r, err := svc.Requests.Create(ctx, member, CreateRequestRequest{Title: "Day off"})
	require.NoError(t, err)

	_, task, err := svc.Requests.Decide(ctx, manager, r.ID, Decision{Status: models.RequestRejected})
	require.NoError(t, err)
	require.Nil(t, task)

	require.ElementsMatch(t, []models.Action{models.ActionCreateRequest, models.ActionRejectRequest}, actionsOf(logsFor(t, db, r.ID)))
	require.Equal(t, "Rejected: No reason", logWithAction(t, db, r.ID, models.ActionRejectRequest).Details.Text)

	_, _, err = svc.Requests.Decide(ctx, manager, r.ID, Decision{Status: models.RequestPending})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRequestCancel(t *testing.T) {
	svc, db, _ := testSetup(t)
	ctx := context.Background()
	manager := createUser(t, db, "manager", models.RoleManager)
	member := createUser(t, db, "member", models.RoleMember)
	other := createUser(t, db, "other", models.RoleMember)

	r, err := svc.Requests.Create(ctx, member, CreateRequestRequest{Title: "Monitor"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Requests.Cancel(ctx, other, r.ID), ErrForbidden)
	require.ErrorIs(t, svc.Requests.Cancel(ctx, manager, r.ID), ErrForbidden)
	require.NoError(t, svc.Requests.Cancel(ctx, member, r.ID))
	require.ErrorIs(t, svc.Requests.Cancel(ctx, member, r.ID), ErrNotFound)

	require.ElementsMatch(t, []models.Action{models.ActionCreateRequest, models.ActionCancelRequest}, actionsOf(logsFor(t, db, r.ID)))
	require.Equal(t, "Cancelled request: Monitor", logWithAction(t, db, r.ID, models.ActionCancelRequest).Details.Text)

	mine, err := svc.Requests.List(ctx, member)
	require.NoError(t, err)
	require.Empty(t, mine)
}

func TestRequestCancelOnlyPending(t *testing.T) {
	svc, db, _ := testSetup(t)
	ctx := context.Background()
	manager := createUser(t, db, "manager", models.RoleManager)
	member := createUser(t, db, "member", models.RoleMember)

	r, err := svc.Requests.Create(ctx, member, CreateRequestRequest{Title: "Chair"})
	require.NoError(t, err)
	_, _, err = svc.Requests.Decide(ctx, manager, r.ID, Decision{Status: models.RequestRejected, Comment: "budget"})
	require.NoError(t, err)

	var cerr *ConflictError
	require.ErrorAs(t, svc.Requests.Cancel(ctx, member, r.ID), &cerr)

	all, err := svc.Requests.List(ctx, manager)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "member", all[0].Requester.Name)
}

func TestRequestCreateIsLogged(t *testing.T) {
	svc, db, _ := testSetup(t)
	ctx := context.Background()
	createUser(t, db, "manager", models.RoleManager)
	member := createUser(t, db, "member", models.RoleMember)

	r, err := svc.Requests.Create(ctx, member, CreateRequestRequest{Title: "Need VPN"})
	require.NoError(t, err)

	logs := logsFor(t, db, r.ID)
	require.Len(t, logs, 1)
	require.Equal(t, models.ActionCreateRequest, logs[0].Action)
	require.Equal(t, models.EntityRequest, logs[0].EntityType)
	require.Equal(t, member.ID, logs[0].UserID)
	require.Equal(t, "Created request: Need VPN", logs[0].Details.Text)
	require.Nil(t, logs[0].TaskID)
	require.Nil(t, logs[0].ProjectID)

	_, err = svc.Requests.Create(ctx, member, CreateRequestRequest{Title: "  "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, logsWithAction(t, db, models.ActionCreateRequest), 1)
}
