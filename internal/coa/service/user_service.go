package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/listing"
	"github.com/kpvarma/ecoas-forge-sub000/internal/repository"
	"github.com/kpvarma/ecoas-forge-sub000/utils"
)

// UserService manages users and resolves their display names.
type UserService struct {
	repo repository.Repository[model.User]
	now  func() time.Time
}

func NewUserService(repo repository.Repository[model.User]) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

// List returns one page of users matching the query.
func (s *UserService) List(ctx context.Context, q model.UserQuery) (*model.UserListResult, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	matched := listing.Filter(all, q.Criteria(), model.UserFields)
	page, size := utils.GetPageParams(q.Page, q.PageSize)
	p := listing.Paginate(matched, page, size)
	return &model.UserListResult{Items: p.Items, Pagination: model.NewPaginationDTO(p)}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (model.User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.User{}, fmt.Errorf("user %s: %w", id, err)
	}
	return u, nil
}

// GetByEmail finds a user by email, ignoring case.
func (s *UserService) GetByEmail(ctx context.Context, email string) (model.User, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range all {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

func (s *UserService) Create(ctx context.Context, dto model.CreateUserDTO) (model.User, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return model.User{}, invalidf("name is required")
	}
	email := normalizeEmail(dto.Email)
	if email == "" {
		return model.User{}, invalidf("email is required")
	}
	role, ok := model.ParseRole(dto.Role)
	if !ok {
		return model.User{}, invalidf("unknown role %q", dto.Role)
	}

	u := model.User{
		BaseModel:  model.BaseModel{ID: uuid.NewString()},
		Name:       name,
		Email:      email,
		Role:       role,
		Department: strings.TrimSpace(dto.Department),
	}
	u.Touch(s.now())

	err := s.repo.Tx(ctx, func(ctx context.Context, repo repository.Repository[model.User]) error {
		if err := ensureEmailFree(ctx, repo, email, ""); err != nil {
			return err
		}
		return repo.Create(ctx, u)
	})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

func (s *UserService) Update(ctx context.Context, id string, dto model.UpdateUserDTO) (model.User, error) {
	var out model.User
	err := s.repo.Tx(ctx, func(ctx context.Context, repo repository.Repository[model.User]) error {
		u, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if dto.Name != nil {
			if u.Name = strings.TrimSpace(*dto.Name); u.Name == "" {
				return invalidf("name cannot be empty")
			}
		}
		if dto.Email != nil {
			email := normalizeEmail(*dto.Email)
			if email == "" {
				return invalidf("email cannot be empty")
			}
			if err := ensureEmailFree(ctx, repo, email, id); err != nil {
				return err
			}
			u.Email = email
		}
		if dto.Role != nil {
			role, ok := model.ParseRole(*dto.Role)
			if !ok {
				return invalidf("unknown role %q", *dto.Role)
			}
			u.Role = role
		}
		if dto.Department != nil {
			u.Department = strings.TrimSpace(*dto.Department)
		}
		u.Touch(s.now())
		out = u
		return repo.Update(ctx, u)
	})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return out, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	return nil
}

// DisplayNames maps the given user ids to names. Unknown and empty ids are left out.
func (s *UserService) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	users, err := s.byID(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if u, ok := users[id]; ok {
			names[id] = u.Name
		}
	}
	return names, nil
}

// byID loads every user keyed by id.
func (s *UserService) byID(ctx context.Context) (map[string]model.User, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make(map[string]model.User, len(all))
	for _, u := range all {
		users[u.ID] = u
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ensureEmailFree(ctx context.Context, repo repository.Repository[model.User], email, selfID string) error {
	all, err := repo.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range all {
		if u.ID != selfID && strings.EqualFold(u.Email, email) {
			return fmt.Errorf("%w: email %s is already in use", ErrConflict, email)
		}
	}
	return nil
}
