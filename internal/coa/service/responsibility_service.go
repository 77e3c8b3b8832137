package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/listing"
	"github.com/kpvarma/ecoas-forge-sub000/internal/repository"
	"github.com/kpvarma/ecoas-forge-sub000/utils"
)

// ResponsibilityService manages which users are responsible for which part and plant.
type ResponsibilityService struct {
	repo  repository.Repository[model.Responsibility]
	users *UserService
	now   func() time.Time
}

func NewResponsibilityService(repo repository.Repository[model.Responsibility], users *UserService) *ResponsibilityService {
	return &ResponsibilityService{repo: repo, users: users, now: time.Now}
}

// List returns one page of responsibilities matching the query, with users embedded.
func (s *ResponsibilityService) List(ctx context.Context, q model.ResponsibilityQuery) (*model.ResponsibilityListResult, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list responsibilities: %w", err)
	}
	users, err := s.users.byID(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		resolveUser(&all[i], users)
	}
	matched := listing.Filter(all, q.Criteria(), model.ResponsibilityFields)
	page, size := utils.GetPageParams(q.Page, q.PageSize)
	p := listing.Paginate(matched, page, size)
	return &model.ResponsibilityListResult{Items: p.Items, Pagination: model.NewPaginationDTO(p)}, nil
}

func (s *ResponsibilityService) Get(ctx context.Context, id string) (model.Responsibility, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Responsibility{}, fmt.Errorf("responsibility %s: %w", id, err)
	}
	if err := s.resolve(ctx, &r); err != nil {
		return model.Responsibility{}, err
	}
	return r, nil
}

func (s *ResponsibilityService) Create(ctx context.Context, dto model.CreateResponsibilityDTO) (model.Responsibility, error) {
	r := model.Responsibility{
		BaseModel:  model.BaseModel{ID: uuid.NewString()},
		UserID:     strings.TrimSpace(dto.UserID),
		PartNumber: strings.TrimSpace(dto.PartNumber),
		PlantID:    strings.TrimSpace(dto.PlantID),
		Status:     model.RecordStatusActive,
	}
	if dto.Status != "" {
		st, ok := model.ParseRecordStatus(dto.Status, false)
		if !ok {
			return model.Responsibility{}, invalidf("unknown status %q", dto.Status)
		}
		r.Status = st
	}
	if err := s.validate(ctx, r); err != nil {
		return model.Responsibility{}, err
	}
	r.Touch(s.now())

	err := s.repo.Tx(ctx, func(ctx context.Context, repo repository.Repository[model.Responsibility]) error {
		if err := ensureSingleActive(ctx, repo, r); err != nil {
			return err
		}
		return repo.Create(ctx, r)
	})
	if err != nil {
		return model.Responsibility{}, fmt.Errorf("failed to create responsibility: %w", err)
	}
	if err := s.resolve(ctx, &r); err != nil {
		return model.Responsibility{}, err
	}
	return r, nil
}

func (s *ResponsibilityService) Update(ctx context.Context, id string, dto model.UpdateResponsibilityDTO) (model.Responsibility, error) {
	var out model.Responsibility
	err := s.repo.Tx(ctx, func(ctx context.Context, repo repository.Repository[model.Responsibility]) error {
		r, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if dto.UserID != nil {
			r.UserID = strings.TrimSpace(*dto.UserID)
		}
		if dto.PartNumber != nil {
			r.PartNumber = strings.TrimSpace(*dto.PartNumber)
		}
		if dto.PlantID != nil {
			r.PlantID = strings.TrimSpace(*dto.PlantID)
		}
		if dto.Status != nil {
			st, ok := model.ParseRecordStatus(*dto.Status, false)
			if !ok {
				return invalidf("unknown status %q", *dto.Status)
			}
			r.Status = st
		}
		if err := s.validate(ctx, r); err != nil {
			return err
		}
		if err := ensureSingleActive(ctx, repo, r); err != nil {
			return err
		}
		r.Touch(s.now())
		out = r
		return repo.Update(ctx, r)
	})
	if err != nil {
		return model.Responsibility{}, fmt.Errorf("failed to update responsibility %s: %w", id, err)
	}
	if err := s.resolve(ctx, &out); err != nil {
		return model.Responsibility{}, err
	}
	return out, nil
}

// Delete removes a responsibility. The caller must confirm the deletion.
func (s *ResponsibilityService) Delete(ctx context.Context, id string, confirm bool) error {
	if !confirm {
		return fmt.Errorf("%w: deleting responsibility %s", ErrConfirmationRequired, id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete responsibility %s: %w", id, err)
	}
	slog.InfoContext(ctx, "responsibility deleted", "id", id)
	return nil
}

func (s *ResponsibilityService) validate(ctx context.Context, r model.Responsibility) error {
	switch {
	case r.UserID == "":
		return invalidf("user_id is required")
	case r.PartNumber == "":
		return invalidf("part_number is required")
	case r.PlantID == "":
		return invalidf("plant_id is required")
	}
	if _, err := s.users.Get(ctx, r.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalidf("unknown user %s", r.UserID)
		}
		return err
	}
	return nil
}

func (s *ResponsibilityService) resolve(ctx context.Context, r *model.Responsibility) error {
	u, err := s.users.Get(ctx, r.UserID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	r.User = &u
	return nil
}

func resolveUser(r *model.Responsibility, users map[string]model.User) {
	if u, ok := users[r.UserID]; ok {
		r.User = &u
	}
}

// ensureSingleActive rejects a second active responsibility for the same user, part and plant.
func ensureSingleActive(ctx context.Context, repo repository.Repository[model.Responsibility], r model.Responsibility) error {
	if r.Status != model.RecordStatusActive {
		return nil
	}
	all, err := repo.List(ctx)
	if err != nil {
		return err
	}
	for _, other := range all {
		if other.ID != r.ID && other.Status == model.RecordStatusActive && other.SameBinding(r) {
			return fmt.Errorf("%w: user %s is already responsible for %s at %s", ErrConflict, r.UserID, r.PartNumber, r.PlantID)
		}
	}
	return nil
}
