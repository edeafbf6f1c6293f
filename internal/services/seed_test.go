package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tenaflow/tena-api/internal/models"
	"github.com/tenaflow/tena-api/internal/store/sqlstore"
	"github.com/tenaflow/tena-api/internal/utils"
)

func memoryStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	st, err := sqlstore.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	st := memoryStore(t)

	n, err := Seed(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	doctors, err := st.ListDoctors(ctx, models.DoctorFilter{Specialties: []string{"Cardiologist"}})
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	h, err := st.FindHospital(ctx, doctors[0].Hospital)
	require.NoError(t, err)
	assert.Equal(t, "Black Lion Hospital", h.Name)

	_, err = Seed(ctx, st)
	assert.ErrorIs(t, err, ErrAlreadySeeded)
}

func TestEnsureSuperAdmin(t *testing.T) {
	ctx := context.Background()
	st := memoryStore(t)

	require.NoError(t, EnsureSuperAdmin(ctx, st, "Root", "Root@Example.com", "changeme", zap.NewNop()))
	require.NoError(t, EnsureSuperAdmin(ctx, st, "Root", "root@example.com", "other", zap.NewNop()))

	admins, err := st.ListUsers(ctx, models.RoleSuperAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 1)

	u, err := st.FindUserByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("changeme", u.Password))
}
