package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/repository"
)

func TestDashboardService_Summary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	env := f.createEnvelope(t, 2)
	f.createEnvelope(t, 1)
	_, err := f.requestSvc.Assign(ctx, env.Children[0].ID, f.alice.ID, f.admin)
	require.NoError(t, err)
	f.markGenerated(t, env.Children[0].ID)

	_, err = f.templateSvc.Create(ctx, model.CreateTemplateDTO{PartNumber: "PN-1"}, "", nil)
	require.NoError(t, err)
	_, err = f.responsibilitySvc.Create(ctx, model.CreateResponsibilityDTO{UserID: f.alice.ID, PartNumber: "PN-1", PlantID: "PLT-AUS"})
	require.NoError(t, err)

	sum, err := f.dashboardSvc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Requests)
	assert.Equal(t, 3, sum.Documents)
	assert.Equal(t, 2, sum.RequestsByStatus["pending"])
	assert.Equal(t, 1, sum.RequestsByOwnerStatus["assigned"])
	assert.Equal(t, 2, sum.DocumentsByRequestStatus["queued"])
	assert.Equal(t, 1, sum.AwaitingApproval)
	assert.Equal(t, 1, sum.TemplatesByStatus["active"])
	assert.Equal(t, 1, sum.ActiveResponsibilities)
	assert.Equal(t, 2, sum.UsersByRole["User"])
}

type failingRepo[T repository.Entity] struct {
	repository.Repository[T]
}

func (failingRepo[T]) List(context.Context) ([]T, error) {
	return nil, errors.New("connection refused")
}

func TestDashboardService_SummaryError(t *testing.T) {
	f := newFixture(t)
	svc := NewDashboardService(f.requests, failingRepo[model.Template]{}, f.responsibilities, f.users)
	_, err := svc.Summary(context.Background())
	assert.ErrorContains(t, err, "failed to count templates")
}
