package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/listing"
	"github.com/kpvarma/ecoas-forge-sub000/internal/repository"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads"
	"github.com/kpvarma/ecoas-forge-sub000/utils"
)

// TemplateService manages CoA XML templates and their stored XML files.
type TemplateService struct {
	repo    repository.Repository[model.Template]
	users   *UserService
	uploads *uploads.UploadService
	now     func() time.Time
}

func NewTemplateService(repo repository.Repository[model.Template], users *UserService, uploadService *uploads.UploadService) *TemplateService {
	return &TemplateService{repo: repo, users: users, uploads: uploadService, now: time.Now}
}

// List returns one page of templates matching the query. Deleted templates
// are hidden unless the query asks for them.
func (s *TemplateService) List(ctx context.Context, q model.TemplateQuery) (*model.TemplateListResult, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	showDeleted := q.IncludeDeleted || strings.EqualFold(strings.TrimSpace(q.Status), string(model.RecordStatusDeleted))
	if !showDeleted {
		all = slices.DeleteFunc(all, func(t model.Template) bool { return t.Status == model.RecordStatusDeleted })
	}
	matched := listing.Filter(all, q.Criteria(), model.TemplateFields)
	page, size := utils.GetPageParams(q.Page, q.PageSize)
	p := listing.Paginate(matched, page, size)
	ptrs := make([]*model.Template, len(p.Items))
	for i := range p.Items {
		ptrs[i] = &p.Items[i]
	}
	if err := s.resolveAll(ctx, ptrs); err != nil {
		return nil, err
	}
	return &model.TemplateListResult{Items: p.Items, Pagination: model.NewPaginationDTO(p)}, nil
}

// Get returns a template that has not been deleted.
func (s *TemplateService) Get(ctx context.Context, id string) (model.Template, error) {
	t, err := s.get(ctx, s.repo, id)
	if err != nil {
		return model.Template{}, err
	}
	if err := s.resolve(ctx, &t); err != nil {
		return model.Template{}, err
	}
	return t, nil
}

// Create stores a new template. When xml is non-empty it is checked and saved
// as the template's XML file.
func (s *TemplateService) Create(ctx context.Context, dto model.CreateTemplateDTO, filename string, xml []byte) (model.Template, error) {
	t := model.Template{
		BaseModel:    model.BaseModel{ID: uuid.NewString()},
		PartNumber:   strings.TrimSpace(dto.PartNumber),
		PlantID:      strings.TrimSpace(dto.PlantID),
		HINTLEnabled: dto.HINTLEnabled,
		Status:       model.RecordStatusActive,
		OwnerIDs:     compactIDs(dto.OwnerIDs),
	}
	if t.PartNumber == "" {
		return model.Template{}, invalidf("part_no is required")
	}
	if err := s.checkOwners(ctx, t.OwnerIDs); err != nil {
		return model.Template{}, err
	}
	if len(xml) == 0 && dto.XMLContent != "" {
		xml = []byte(dto.XMLContent)
	}
	if len(xml) > 0 {
		meta, err := s.uploads.SaveXML(ctx, "", filename, xml)
		if err != nil {
			return model.Template{}, uploadError(err)
		}
		t.XMLFile = meta.Key
	}
	t.Touch(s.now())

	if err := s.repo.Create(ctx, t); err != nil {
		s.discard(ctx, t.XMLFile)
		return model.Template{}, fmt.Errorf("failed to create template: %w", err)
	}
	slog.InfoContext(ctx, "template created", "id", t.ID, "part_no", t.PartNumber, "xml_file", t.XMLFile)
	if err := s.resolve(ctx, &t); err != nil {
		return model.Template{}, err
	}
	return t, nil
}

func (s *TemplateService) Update(ctx context.Context, id string, dto model.UpdateTemplateDTO) (model.Template, error) {
	var out model.Template
	err := s.repo.Tx(ctx, func(ctx context.Context, repo repository.Repository[model.Template]) error {
		t, err := s.get(ctx, repo, id)
		if err != nil {
			return err
		}
		if dto.PartNumber != nil {
			if t.PartNumber = strings.TrimSpace(*dto.PartNumber); t.PartNumber == "" {
				return invalidf("part_no cannot be empty")
			}
		}
		if dto.PlantID != nil {
			t.PlantID = strings.TrimSpace(*dto.PlantID)
		}
		if dto.HINTLEnabled != nil {
			t.HINTLEnabled = *dto.HINTLEnabled
		}
		if dto.Status != nil {
			st, ok := model.ParseRecordStatus(*dto.Status, false)
			if !ok {
				return invalidf("unknown status %q", *dto.Status)
			}
			t.Status = st
		}
		if dto.OwnerIDs != nil {
			owners := compactIDs(*dto.OwnerIDs)
			if err := s.checkOwners(ctx, owners); err != nil {
				return err
			}
			t.OwnerIDs = owners
		}
		t.Touch(s.now())
		out = t
		return repo.Update(ctx, t)
	})
	if err != nil {
		return model.Template{}, fmt.Errorf("failed to update template %s: %w", id, err)
	}
	if err := s.resolve(ctx, &out); err != nil {
		return model.Template{}, err
	}
	return out, nil
}

// SaveXML replaces the XML of a template. The content goes to a new key and
// the previous file is removed only after the template points at it.
func (s *TemplateService) SaveXML(ctx context.Context, id string, content []byte) (model.Template, error) {
	meta, err := s.uploads.SaveXML(ctx, "", "", content)
	if err != nil {
		return model.Template{}, uploadError(err)
	}

	var out model.Template
	var previous string
	err = s.repo.Tx(ctx, func(ctx context.Context, repo repository.Repository[model.Template]) error {
		t, err := s.get(ctx, repo, id)
		if err != nil {
			return err
		}
		previous = t.XMLFile
		t.XMLFile = meta.Key
		t.Touch(s.now())
		out = t
		return repo.Update(ctx, t)
	})
	if err != nil {
		s.discard(ctx, meta.Key)
		return model.Template{}, fmt.Errorf("failed to update template %s: %w", id, err)
	}
	if previous != meta.Key {
		s.discard(ctx, previous)
	}
	slog.InfoContext(ctx, "template XML saved", "id", id, "key", meta.Key, "size", meta.Size)
	if err := s.resolve(ctx, &out); err != nil {
		return model.Template{}, err
	}
	return out, nil
}

// XML returns the stored XML of a template.
func (s *TemplateService) XML(ctx context.Context, id string) ([]byte, error) {
	t, err := s.get(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if t.XMLFile == "" {
		return nil, fmt.Errorf("template %s has no XML file: %w", id, ErrNotFound)
	}
	data, err := s.uploads.ReadAll(ctx, t.XMLFile)
	if err != nil {
		return nil, uploadError(err)
	}
	return data, nil
}

// Delete marks a template deleted, or removes it and its XML file when hard is set.
func (s *TemplateService) Delete(ctx context.Context, id string, hard bool) error {
	if hard {
		var key string
		err := s.repo.Tx(ctx, func(ctx context.Context, repo repository.Repository[model.Template]) error {
			t, err := repo.Get(ctx, id)
			if err != nil {
				return fmt.Errorf("template %s: %w", id, err)
			}
			key = t.XMLFile
			return repo.Delete(ctx, id)
		})
		if err != nil {
			return fmt.Errorf("failed to delete template %s: %w", id, err)
		}
		s.discard(ctx, key)
		slog.InfoContext(ctx, "template removed", "id", id)
		return nil
	}

	err := s.repo.Tx(ctx, func(ctx context.Context, repo repository.Repository[model.Template]) error {
		t, err := s.get(ctx, repo, id)
		if err != nil {
			return err
		}
		t.Status = model.RecordStatusDeleted
		t.Touch(s.now())
		return repo.Update(ctx, t)
	})
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}
	slog.InfoContext(ctx, "template marked deleted", "id", id)
	return nil
}

func (s *TemplateService) get(ctx context.Context, repo repository.Repository[model.Template], id string) (model.Template, error) {
	t, err := repo.Get(ctx, id)
	if err != nil {
		return model.Template{}, fmt.Errorf("template %s: %w", id, err)
	}
	if t.Status == model.RecordStatusDeleted {
		return model.Template{}, fmt.Errorf("template %s is deleted: %w", id, ErrNotFound)
	}
	return t, nil
}

func (s *TemplateService) resolve(ctx context.Context, t *model.Template) error {
	return s.resolveAll(ctx, []*model.Template{t})
}

// resolveAll fills owner names and the XML URL of each template in place.
func (s *TemplateService) resolveAll(ctx context.Context, templates []*model.Template) error {
	var ids []string
	for _, t := range templates {
		ids = append(ids, t.OwnerIDs...)
	}
	names, err := s.users.DisplayNames(ctx, ids)
	if err != nil {
		return err
	}
	for _, t := range templates {
		t.Owners = make([]string, 0, len(t.OwnerIDs))
		for _, id := range t.OwnerIDs {
			if name, ok := names[id]; ok {
				t.Owners = append(t.Owners, name)
			}
		}
		if t.XMLFile != "" {
			url, err := s.uploads.URL(ctx, t.XMLFile)
			if err != nil {
				slog.WarnContext(ctx, "failed to resolve template XML URL", "id", t.ID, "key", t.XMLFile, "error", err)
				continue
			}
			t.XMLURL = url
		}
	}
	return nil
}

func (s *TemplateService) checkOwners(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.users.Get(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return invalidf("unknown owner %s", id)
			}
			return err
		}
	}
	return nil
}

func (s *TemplateService) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.uploads.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to remove template XML", "key", key, "error", err)
	}
}

// compactIDs trims ids and drops blanks and duplicates, keeping order.
func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
