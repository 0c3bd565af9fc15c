package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "o@x.com"

func TestReconcile_OwnerAppend(t *testing.T) {
	res, err := Reconcile([]string{"a@x.com"}, []string{"b@x.com"}, owner, owner, ModeAppend)
	require.NoError(t, err)
	assert.False(t, res.NoOp)
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, res.Users)
}

func TestReconcile_OwnerStrippedFromProposal(t *testing.T) {
	res, err := Reconcile(nil, []string{"a@x.com", owner}, owner, owner, ModeAppend)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, res.Users)

	// stripping alone never errors, even when the owner is the only entry
	res, err = Reconcile(nil, []string{owner}, owner, owner, ModeAppend)
	require.NoError(t, err)
	assert.True(t, res.NoOp)
}

func TestReconcile_Idempotent(t *testing.T) {
	existing := []string{"a@x.com", "b@x.com"}

	for _, actor := range []string{owner, "a@x.com"} {
		res, err := Reconcile(existing, existing, owner, actor, ModeAppend)
		require.NoError(t, err)
		assert.True(t, res.NoOp, "actor %s", actor)
		assert.Equal(t, existing, res.Users)
	}
}

func TestReconcile_OverwriteReplaces(t *testing.T) {
	res, err := Reconcile([]string{"a@x.com", "b@x.com"}, []string{"c@x.com"}, owner, owner, ModeOverwrite)
	require.NoError(t, err)
	assert.Equal(t, []string{"c@x.com"}, res.Users)
}

func TestReconcile_NonOwnerMustBeShared(t *testing.T) {
	_, err := Reconcile([]string{"a@x.com"}, []string{"b@x.com"}, owner, "b@x.com", ModeAppend)
	assert.ErrorIs(t, err, ErrNotShared)
}

func TestReconcile_NonOwnerRemovesSelf(t *testing.T) {
	res, err := Reconcile([]string{"a@x.com", "b@x.com"}, []string{"b@x.com"}, owner, "a@x.com", ModeOverwrite)
	require.NoError(t, err)
	assert.False(t, res.NoOp)
	assert.Equal(t, []string{"b@x.com"}, res.Users)
}

func TestReconcile_NonOwnerCannotRemoveOthers(t *testing.T) {
	_, err := Reconcile([]string{"a@x.com", "b@x.com"}, []string{"c@x.com"}, owner, "a@x.com", ModeOverwrite)
	assert.ErrorIs(t, err, ErrNotSelfRemoval)

	// removing self and someone else at once is still forbidden
	_, err = Reconcile([]string{"a@x.com", "b@x.com"}, nil, owner, "a@x.com", ModeOverwrite)
	assert.ErrorIs(t, err, ErrNotSelfRemoval)
}

func TestReconcile_NonOwnerCannotAdd(t *testing.T) {
	_, err := Reconcile([]string{"a@x.com"}, []string{"c@x.com"}, owner, "a@x.com", ModeAppend)
	assert.ErrorIs(t, err, ErrNotSelfRemoval)
}

func TestReconcile_DuplicatesCollapse(t *testing.T) {
	res, err := Reconcile(nil, []string{"a@x.com", "a@x.com"}, owner, owner, ModeAppend)
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, res.Users)
}
