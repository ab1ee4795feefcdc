package cascade_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhive/internal/core/apperror"
	appctx "taskhive/internal/core/context"
	"taskhive/internal/domain"
	"taskhive/internal/domain/cascade"
	"taskhive/internal/domain/domaintest"
)

func TestRequireTx(t *testing.T) {
	ctx := context.Background()

	open := &domaintest.TxChecker{Open: true}
	require.NoError(t, cascade.RequireTx(ctx, open, "cascade delete"))

	closed := &domaintest.TxChecker{Open: false}
	err := cascade.RequireTx(ctx, closed, "cascade delete")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeTransactionRequired))
}

func TestSoftDeleteManyPagesThroughMatches(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	other := f.SeedDept(org, "ops")

	const n = 7
	for i := 0; i < n; i++ {
		f.SeedUser(d, fmt.Sprintf("u%d@acme.test", i), appctx.RoleMember)
	}
	survivor := f.SeedUser(other, "keep@acme.test", appctx.RoleMember)

	// Batch size smaller than the match count forces multiple pages.
	total, err := cascade.SoftDeleteMany(ctx, f.Txc, f.Users, f.UserSvc,
		domain.Where{"dept_id": d.ID}, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(n), total)

	for _, u := range f.Users.Items {
		if u.ID == survivor.ID {
			assert.False(t, u.Deleted())
			continue
		}
		assert.True(t, u.Deleted())
	}
}

func TestSoftDeleteManyIsIdempotentOnTombstones(t *testing.T) {
	f := domaintest.NewFixture()
	ctx := context.Background()

	org := f.SeedOrg("acme", false)
	d := f.SeedDept(org, "eng")
	f.SeedUser(d, "a@acme.test", appctx.RoleMember)
	f.SeedUser(d, "b@acme.test", appctx.RoleMember)

	where := domain.Where{"dept_id": d.ID}
	total, err := cascade.SoftDeleteMany(ctx, f.Txc, f.Users, f.UserSvc, where, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// Already-deleted rows are filtered out, not errors.
	total, err = cascade.SoftDeleteMany(ctx, f.Txc, f.Users, f.UserSvc, where, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSoftDeleteManyRequiresTransaction(t *testing.T) {
	f := domaintest.NewFixture()

	f.Txc.Open = false
	_, err := cascade.SoftDeleteMany(context.Background(), f.Txc, f.Users, f.UserSvc,
		domain.Where{}, 0)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeTransactionRequired))
}

func TestRegistryUnknownType(t *testing.T) {
	f := domaintest.NewFixture()

	err := f.Registry.SoftDelete(context.Background(), "widget", f.SeedOrg("acme", false).ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}
