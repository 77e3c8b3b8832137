package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/metrics"
	"github.com/kpvarma/ecoas-forge-sub000/internal/repository"
)

// DashboardSummary holds the counters shown on the dashboard.
type DashboardSummary struct {
	Requests                 int            `json:"requests"`
	Documents                int            `json:"documents"`
	RequestsByStatus         map[string]int `json:"requests_by_status"`
	RequestsByOwnerStatus    map[string]int `json:"requests_by_owner_status"`
	DocumentsByRequestStatus map[string]int `json:"documents_by_request_status"`
	AwaitingApproval         int            `json:"awaiting_approval"`
	TemplatesByStatus        map[string]int `json:"templates_by_status"`
	ActiveResponsibilities   int            `json:"active_responsibilities"`
	UsersByRole              map[string]int `json:"users_by_role"`
}

// DashboardService aggregates counters across all stores.
type DashboardService struct {
	requests         repository.Repository[model.Request]
	templates        repository.Repository[model.Template]
	responsibilities repository.Repository[model.Responsibility]
	users            repository.Repository[model.User]
}

func NewDashboardService(
	requests repository.Repository[model.Request],
	templates repository.Repository[model.Template],
	responsibilities repository.Repository[model.Responsibility],
	users repository.Repository[model.User],
) *DashboardService {
	return &DashboardService{requests: requests, templates: templates, responsibilities: responsibilities, users: users}
}

// Summary counts every store concurrently and publishes the envelope status gauge.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	sum := &DashboardSummary{
		RequestsByStatus:         map[string]int{},
		RequestsByOwnerStatus:    map[string]int{},
		DocumentsByRequestStatus: map[string]int{},
		TemplatesByStatus:        map[string]int{},
		UsersByRole:              map[string]int{},
	}

	// Each goroutine writes only its own fields.
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all, err := s.requests.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to count requests: %w", err)
		}
		for _, r := range all {
			if r.IsChild() {
				sum.Documents++
				sum.DocumentsByRequestStatus[string(r.RequestStatus)]++
				if r.RequestStatus == model.RequestStatusTemplateGenerated &&
					(r.OwnerStatus == model.OwnerStatusAssigned || r.OwnerStatus == model.OwnerStatusRetried) {
					sum.AwaitingApproval++
				}
				continue
			}
			sum.Requests++
			sum.RequestsByStatus[string(r.Status)]++
			sum.RequestsByOwnerStatus[string(r.OwnerStatus)]++
		}
		return nil
	})
	g.Go(func() error {
		all, err := s.templates.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to count templates: %w", err)
		}
		for _, t := range all {
			sum.TemplatesByStatus[string(t.Status)]++
		}
		return nil
	})
	g.Go(func() error {
		all, err := s.responsibilities.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to count responsibilities: %w", err)
		}
		for _, r := range all {
			if r.Status == model.RecordStatusActive {
				sum.ActiveResponsibilities++
			}
		}
		return nil
	})
	g.Go(func() error {
		all, err := s.users.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		for _, u := range all {
			sum.UsersByRole[string(u.Role)]++
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.SetRequestsByStatus(sum.RequestsByStatus)
	return sum, nil
}
