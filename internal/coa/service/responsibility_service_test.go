package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
)

func TestResponsibilityService_SingleActiveBinding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.responsibilitySvc.Create(ctx, model.CreateResponsibilityDTO{UserID: f.alice.ID, PartNumber: "PN-1", PlantID: "PLT-AUS"})
	require.NoError(t, err)
	assert.Equal(t, model.RecordStatusActive, r.Status)
	require.NotNil(t, r.User)
	assert.Equal(t, "Alice Liskov", r.User.Name)

	_, err = f.responsibilitySvc.Create(ctx, model.CreateResponsibilityDTO{UserID: f.alice.ID, PartNumber: "PN-1", PlantID: "PLT-AUS"})
	assert.ErrorIs(t, err, ErrConflict)

	inactive, err := f.responsibilitySvc.Create(ctx, model.CreateResponsibilityDTO{UserID: f.alice.ID, PartNumber: "PN-1", PlantID: "PLT-AUS", Status: "inactive"})
	require.NoError(t, err)

	active := "active"
	_, err = f.responsibilitySvc.Update(ctx, inactive.ID, model.UpdateResponsibilityDTO{Status: &active})
	assert.ErrorIs(t, err, ErrConflict)

	other := "PLT-BER"
	moved, err := f.responsibilitySvc.Update(ctx, inactive.ID, model.UpdateResponsibilityDTO{Status: &active, PlantID: &other})
	require.NoError(t, err)
	assert.Equal(t, "PLT-BER", moved.PlantID)
	assert.Equal(t, model.RecordStatusActive, moved.Status)
}

func TestResponsibilityService_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.responsibilitySvc.Create(ctx, model.CreateResponsibilityDTO{UserID: "ghost", PartNumber: "PN-1", PlantID: "PLT-AUS"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.responsibilitySvc.Create(ctx, model.CreateResponsibilityDTO{UserID: f.alice.ID, PartNumber: " ", PlantID: "PLT-AUS"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.responsibilitySvc.Create(ctx, model.CreateResponsibilityDTO{UserID: f.alice.ID, PartNumber: "PN-1", PlantID: "PLT-AUS", Status: "deleted"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestResponsibilityService_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.responsibilitySvc.Create(ctx, model.CreateResponsibilityDTO{UserID: f.alice.ID, PartNumber: "PN-1", PlantID: "PLT-AUS"})
	require.NoError(t, err)
	_, err = f.responsibilitySvc.Create(ctx, model.CreateResponsibilityDTO{UserID: f.bob.ID, PartNumber: "PN-2", PlantID: "PLT-AUS"})
	require.NoError(t, err)

	res, err := f.responsibilitySvc.List(ctx, model.ResponsibilityQuery{Search: "liskov"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, a.ID, res.Items[0].ID)
	assert.Equal(t, "alice@ecoa.example", res.Items[0].User.Email)

	res, err = f.responsibilitySvc.List(ctx, model.ResponsibilityQuery{PlantID: "plt-aus"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pagination.Total)

	assert.ErrorIs(t, f.responsibilitySvc.Delete(ctx, a.ID, false), ErrConfirmationRequired)
	require.NoError(t, f.responsibilitySvc.Delete(ctx, a.ID, true))
	_, err = f.responsibilitySvc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
