package service

import (
	"errors"
	"testing"

	"github.com/levpat/marketplace-blog/internal/constants"
	"github.com/levpat/marketplace-blog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLoginLogServiceRecord(t *testing.T) {
	db := setupPostServiceTest(t).db
	svc := NewUserLoginLogService(repository.NewUserLoginLogRepository(db))

	require.NoError(t, svc.Record(RecordUserLoginInput{UserID: 3, Username: " alice ", Status: "SUCCESS", FailReason: "ignored"}))
	require.NoError(t, svc.Record(RecordUserLoginInput{Username: "ghost", Status: "weird"}))

	logs, total, err := svc.ListForAdmin(repository.UserLoginLogListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	assert.Equal(t, "ghost", logs[0].Username)
	assert.Equal(t, constants.LoginLogStatusFailed, logs[0].Status)
	assert.Equal(t, constants.LoginLogFailReasonInternalError, logs[0].FailReason)
	assert.Equal(t, "alice", logs[1].Username)
	assert.Equal(t, constants.LoginLogStatusSuccess, logs[1].Status)
	assert.Empty(t, logs[1].FailReason)

	mine, total, err := svc.ListByUser(3, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, mine, 1)

	_, _, err = svc.ListByUser(3, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidPagination)
}

func TestLoginFailReason(t *testing.T) {
	assert.Equal(t, "", LoginFailReason(nil))
	assert.Equal(t, constants.LoginLogFailReasonInvalidCredentials, LoginFailReason(ErrInvalidCredentials))
	assert.Equal(t, constants.LoginLogFailReasonUserDisabled, LoginFailReason(ErrUserDisabled))
	assert.Equal(t, constants.LoginLogFailReasonInternalError, LoginFailReason(errors.New("db down")))
}

func TestAuthzAuditServiceRecord(t *testing.T) {
	db := setupPostServiceTest(t).db
	svc := NewAuthzAuditService(repository.NewAuthzAuditLogRepository(db))

	require.NoError(t, svc.Record(AuthzAuditRecordInput{Action: constants.AuthzAuditActionRoleCreate}))
	require.NoError(t, svc.Record(AuthzAuditRecordInput{
		OperatorUserID: 1,
		Action:         constants.AuthzAuditActionPolicyGrant,
		Role:           "role:editor",
		Object:         "/posts/",
		Method:         "get",
	}))

	logs, total, err := svc.ListForAdmin(repository.AuthzAuditLogListFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "GET", logs[0].Method)
}
