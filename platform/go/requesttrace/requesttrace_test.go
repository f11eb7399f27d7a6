package requesttrace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntoContextAndFromContext(t *testing.T) {
	audit := AuditInfo{ActorKind: ActorKindTeacher, TeacherEmail: ptr("teacher@school.edu"), RequestID: "req-abc"}

	ctx := IntoContext(context.Background(), audit)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, audit, got)
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)
}

func TestFromTeacherEmail(t *testing.T) {
	audit, err := FromTeacherEmail("Teacher@School.EDU", "req-xyz")
	require.NoError(t, err)
	require.Equal(t, ActorKindTeacher, audit.ActorKind)
	require.NotNil(t, audit.TeacherEmail)
	require.Equal(t, "teacher@school.edu", *audit.TeacherEmail)
	require.Equal(t, "req-xyz", audit.RequestID)
}

func TestFromTeacherEmailMissing(t *testing.T) {
	_, err := FromTeacherEmail("   ", "req-1")
	require.Error(t, err)
}

func TestAnonymous(t *testing.T) {
	audit := Anonymous("req-anon")
	require.Equal(t, ActorKindAnonymous, audit.ActorKind)
	require.Nil(t, audit.TeacherEmail)
	require.Equal(t, "req-anon", audit.RequestID)
}

func TestSystem(t *testing.T) {
	audit := System("req-sys")
	require.Equal(t, ActorKindSystem, audit.ActorKind)
	require.Nil(t, audit.TeacherEmail)
}

func ptr[T any](v T) *T { return &v }
