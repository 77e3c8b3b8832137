package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/metrics"
	"github.com/kpvarma/ecoas-forge-sub000/internal/repository"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads"
)

// RequestService handles CoA request envelopes, their documents and the
// approval workflow of each document.
type RequestService struct {
	repo    repository.Repository[model.Request]
	users   *UserService
	uploads *uploads.UploadService
	now     func() time.Time
}

func NewRequestService(repo repository.Repository[model.Request], users *UserService, uploadService *uploads.UploadService) *RequestService {
	return &RequestService{repo: repo, users: users, uploads: uploadService, now: time.Now}
}

// List returns one page of display rows. See model.PageRequests for the
// paging modes.
func (s *RequestService) List(ctx context.Context, q model.RequestQuery) (*model.RequestListResult, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	rows, pagination := model.PageRequests(all, q)

	var ownerIDs []string
	for _, row := range rows {
		if id := row.Item.OwnerIDValue(); id != "" {
			ownerIDs = append(ownerIDs, id)
		}
	}
	names, err := s.users.DisplayNames(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	return &model.RequestListResult{Rows: model.NewRequestRows(rows, names), Pagination: pagination}, nil
}

// Get returns a request. Envelopes carry their documents.
func (s *RequestService) Get(ctx context.Context, id string) (*model.Request, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", id, err)
	}
	if !r.IsChild() {
		all, err := s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list requests: %w", err)
		}
		r.Children = childrenOf(all, r.ID)
	}
	if err := s.resolve(ctx, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create ingests a new envelope with its documents. Envelope ids are
// REQ-<year>-<seq> and document ids CoA-<year>-<seq>-<n>.
func (s *RequestService) Create(ctx context.Context, dto model.CreateRequestDTO) (*model.Request, error) {
	name := strings.TrimSpace(dto.DocumentName)
	switch {
	case name == "":
		return nil, invalidf("document_name is required")
	case strings.TrimSpace(dto.InitiatorEmail) == "":
		return nil, invalidf("initiator_email is required")
	case strings.TrimSpace(dto.PartNumber) == "":
		return nil, invalidf("part_number is required")
	case strings.TrimSpace(dto.PlantID) == "":
		return nil, invalidf("plant_id is required")
	}
	for i, d := range dto.Documents {
		if strings.TrimSpace(d.DocumentName) == "" {
			return nil, invalidf("documents[%d].document_name is required", i)
		}
	}

	now := s.now().UTC()
	var parent model.Request
	err := s.repo.Tx(ctx, func(ctx context.Context, repo repository.Repository[model.Request]) error {
		all, err := repo.List(ctx)
		if err != nil {
			return err
		}
		seq := nextSequence(all, now.Year())
		parentID := fmt.Sprintf("REQ-%d-%03d", now.Year(), seq)

		parent = model.Request{
			BaseModel:      model.BaseModel{ID: parentID},
			DocumentName:   name,
			InitiatorEmail: normalizeEmail(dto.InitiatorEmail),
			RecipientEmail: normalizeEmail(dto.RecipientEmail),
			PlantID:        strings.TrimSpace(dto.PlantID),
			PartNumber:     strings.TrimSpace(dto.PartNumber),
			LotID:          strings.TrimSpace(dto.LotID),
			RequestStatus:  model.RequestStatusQueued,
		}
		parent.Touch(now)

		children := make([]model.Request, 0, len(dto.Documents))
		for i, d := range dto.Documents {
			lot := strings.TrimSpace(d.LotID)
			if lot == "" {
				lot = parent.LotID
			}
			child := model.Request{
				BaseModel:      model.BaseModel{ID: fmt.Sprintf("CoA-%d-%03d-%d", now.Year(), seq, i+1)},
				ParentID:       &parentID,
				DocumentName:   strings.TrimSpace(d.DocumentName),
				InitiatorEmail: parent.InitiatorEmail,
				RecipientEmail: parent.RecipientEmail,
				PlantID:        parent.PlantID,
				PartNumber:     parent.PartNumber,
				LotID:          lot,
				RequestStatus:  model.RequestStatusQueued,
				OwnerStatus:    model.OwnerStatusUnassigned,
			}
			child.Status = model.DocumentStatus(child)
			child.Touch(now)
			children = append(children, child)
		}
		model.Recompute(&parent, children)

		if err := repo.Create(ctx, parent); err != nil {
			return err
		}
		for _, child := range children {
			if err := repo.Create(ctx, child); err != nil {
				return err
			}
		}
		parent.Children = children
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	metrics.RecordRequestCreated()
	slog.InfoContext(ctx, "request created", "id", parent.ID, "documents", len(parent.Children), "part_number", parent.PartNumber)
	return &parent, nil
}

// Assign makes ownerID the owner of a document. Only superusers and template
// admins may assign.
func (s *RequestService) Assign(ctx context.Context, id, ownerID string, actor model.User) (*model.Request, error) {
	if actor.Role != model.RoleSuperuser && actor.Role != model.RoleTemplateAdmin {
		return nil, fmt.Errorf("%w: %s cannot assign documents", ErrForbidden, actor.Role)
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, invalidf("owner_id is required")
	}
	if _, err := s.users.Get(ctx, ownerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalidf("unknown owner %s", ownerID)
		}
		return nil, err
	}
	return s.transition(ctx, id, model.ActionAssign, actor, func(doc *model.Request) error {
		doc.OwnerID = &ownerID
		return nil
	})
}

// Approve approves a generated document. Only its owner or a superuser may approve.
func (s *RequestService) Approve(ctx context.Context, id string, actor model.User, comment string) (*model.Request, error) {
	return s.transition(ctx, id, model.ActionApprove, actor, func(doc *model.Request) error {
		if err := mayReview(*doc, actor); err != nil {
			return err
		}
		if doc.RequestStatus != model.RequestStatusTemplateGenerated {
			return fmt.Errorf("%w: document is %s, approval needs a generated template", ErrInvalidTransition, doc.RequestStatus)
		}
		s.review(doc, actor, comment)
		return nil
	})
}

// Reject rejects a document with a mandatory comment.
func (s *RequestService) Reject(ctx context.Context, id string, actor model.User, comment string) (*model.Request, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, invalidf("a comment is required to reject a document")
	}
	return s.transition(ctx, id, model.ActionReject, actor, func(doc *model.Request) error {
		if err := mayReview(*doc, actor); err != nil {
			return err
		}
		s.review(doc, actor, comment)
		return nil
	})
}

// Retry sends a rejected document back for processing.
func (s *RequestService) Retry(ctx context.Context, id string, actor model.User) (*model.Request, error) {
	return s.transition(ctx, id, model.ActionRetry, actor, func(doc *model.Request) error {
		if err := mayReview(*doc, actor); err != nil {
			return err
		}
		doc.RequestStatus = model.RequestStatusQueued
		doc.ReviewedBy, doc.ReviewedAt = nil, nil
		return nil
	})
}

// AttachDocument stores the PDF of a document and marks it parsed.
// Approved documents cannot be replaced.
func (s *RequestService) AttachDocument(ctx context.Context, id, filename string, r io.Reader) (*model.Request, error) {
	meta, err := s.uploads.UploadPDF(ctx, filename, r)
	if err != nil {
		return nil, uploadError(err)
	}
	var previous string
	doc, err := s.mutateDocument(ctx, id, func(doc *model.Request) error {
		if doc.OwnerStatus == model.OwnerStatusApproved {
			return fmt.Errorf("%w: document %s is already approved", ErrInvalidTransition, id)
		}
		previous = doc.DocumentKey
		doc.DocumentKey = meta.Key
		doc.PageCount = meta.PageCount
		doc.RequestStatus = model.RequestStatusParsed
		return nil
	})
	if err != nil {
		s.discard(ctx, meta.Key)
		return nil, err
	}
	s.discard(ctx, previous)
	slog.InfoContext(ctx, "document attached", "id", id, "key", meta.Key, "pages", meta.PageCount)
	return doc, nil
}

// Delete removes a request. Deleting an envelope removes its documents;
// deleting a document refreshes its envelope.
func (s *RequestService) Delete(ctx context.Context, id string) error {
	var keys []string
	err := s.repo.Tx(ctx, func(ctx context.Context, repo repository.Repository[model.Request]) error {
		r, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		keys = append(keys, r.DocumentKey)
		if r.IsChild() {
			if err := repo.Delete(ctx, id); err != nil {
				return err
			}
			return s.recomputeParent(ctx, repo, *r.ParentID)
		}
		all, err := repo.List(ctx)
		if err != nil {
			return err
		}
		for _, child := range childrenOf(all, id) {
			keys = append(keys, child.DocumentKey)
			if err := repo.Delete(ctx, child.ID); err != nil {
				return err
			}
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete request %s: %w", id, err)
	}
	for _, key := range keys {
		s.discard(ctx, key)
	}
	slog.InfoContext(ctx, "request deleted", "id", id)
	return nil
}

// transition applies an owner action to a document.
func (s *RequestService) transition(ctx context.Context, id string, action model.OwnerAction, actor model.User, apply func(doc *model.Request) error) (*model.Request, error) {
	doc, err := s.mutateDocument(ctx, id, func(doc *model.Request) error {
		next, err := model.NextOwnerStatus(doc.OwnerStatus, action)
		if err != nil {
			return err
		}
		if err := apply(doc); err != nil {
			return err
		}
		doc.OwnerStatus = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordOwnerAction(string(action))
	slog.InfoContext(ctx, "owner action applied", "id", id, "action", action, "actor", actor.ID, "owner_status", doc.OwnerStatus)
	return doc, nil
}

// mutateDocument changes one document and refreshes its envelope in a single transaction.
func (s *RequestService) mutateDocument(ctx context.Context, id string, fn func(doc *model.Request) error) (*model.Request, error) {
	var doc model.Request
	err := s.repo.Tx(ctx, func(ctx context.Context, repo repository.Repository[model.Request]) error {
		var err error
		if doc, err = repo.Get(ctx, id); err != nil {
			return err
		}
		if !doc.IsChild() {
			return invalidf("%s is a request envelope; actions apply to its documents", id)
		}
		if err := fn(&doc); err != nil {
			return err
		}
		doc.Status = model.DocumentStatus(doc)
		doc.Touch(s.now())
		if err := repo.Update(ctx, doc); err != nil {
			return err
		}
		return s.recomputeParent(ctx, repo, *doc.ParentID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update request %s: %w", id, err)
	}
	if err := s.resolve(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *RequestService) recomputeParent(ctx context.Context, repo repository.Repository[model.Request], parentID string) error {
	parent, err := repo.Get(ctx, parentID)
	if err != nil {
		return fmt.Errorf("envelope %s: %w", parentID, err)
	}
	all, err := repo.List(ctx)
	if err != nil {
		return err
	}
	model.Recompute(&parent, childrenOf(all, parentID))
	parent.Touch(s.now())
	return repo.Update(ctx, parent)
}

func (s *RequestService) review(doc *model.Request, actor model.User, comment string) {
	at := s.now().UTC()
	doc.ReviewedBy = &actor.ID
	doc.ReviewedAt = &at
	doc.ReviewComment = strings.TrimSpace(comment)
}

// resolve fills owner names and document URLs of r and its documents.
func (s *RequestService) resolve(ctx context.Context, r *model.Request) error {
	ids := []string{r.OwnerIDValue()}
	for _, c := range r.Children {
		ids = append(ids, c.OwnerIDValue())
	}
	names, err := s.users.DisplayNames(ctx, ids)
	if err != nil {
		return err
	}
	s.decorate(ctx, r, names)
	for i := range r.Children {
		s.decorate(ctx, &r.Children[i], names)
	}
	return nil
}

func (s *RequestService) decorate(ctx context.Context, r *model.Request, names map[string]string) {
	r.Owner = names[r.OwnerIDValue()]
	if r.DocumentKey == "" {
		return
	}
	url, err := s.uploads.URL(ctx, r.DocumentKey)
	if err != nil {
		slog.WarnContext(ctx, "failed to resolve document URL", "id", r.ID, "key", r.DocumentKey, "error", err)
		return
	}
	r.DocumentURL = url
}

func (s *RequestService) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.uploads.Delete(ctx, key); err != nil {
		slog.WarnContext(ctx, "failed to remove document", "key", key, "error", err)
	}
}

// mayReview allows the document owner and superusers to review.
func mayReview(doc model.Request, actor model.User) error {
	if actor.Role == model.RoleSuperuser || (actor.ID != "" && doc.OwnerIDValue() == actor.ID) {
		return nil
	}
	return fmt.Errorf("%w: only the owner or a superuser can review document %s", ErrForbidden, doc.ID)
}

func childrenOf(all []model.Request, parentID string) []model.Request {
	var out []model.Request
	for _, r := range all {
		if r.ParentIDValue() == parentID {
			out = append(out, r)
		}
	}
	return out
}

// nextSequence returns the next free envelope sequence number of year.
func nextSequence(all []model.Request, year int) int {
	prefix := fmt.Sprintf("REQ-%d-", year)
	highest := 0
	for _, r := range all {
		if r.IsChild() || !strings.HasPrefix(r.ID, prefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(r.ID, prefix)); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}
