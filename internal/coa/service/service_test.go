package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/repository"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads/drivers"
)

var testClock = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	users            *repository.MemoryRepository[model.User]
	requests         *repository.MemoryRepository[model.Request]
	templates        *repository.MemoryRepository[model.Template]
	responsibilities *repository.MemoryRepository[model.Responsibility]

	uploads           *uploads.UploadService
	storeDir          string
	userSvc           *UserService
	requestSvc        *RequestService
	templateSvc       *TemplateService
	responsibilitySvc *ResponsibilityService
	dashboardSvc      *DashboardService

	admin, tplAdmin, alice, bob model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	driver, err := drivers.NewLocalFSDriver(dir, "/api/files")
	require.NoError(t, err)

	f := &fixture{
		storeDir:         dir,
		users:            repository.NewMemoryRepository[model.User](),
		requests:         repository.NewMemoryRepository[model.Request](),
		templates:        repository.NewMemoryRepository(repository.WithClone(model.Template.Clone)),
		responsibilities: repository.NewMemoryRepository[model.Responsibility](),
		uploads:          uploads.NewUploadService(driver, 1<<20),
	}
	clock := func() time.Time { return testClock }

	f.userSvc = NewUserService(f.users)
	f.userSvc.now = clock
	f.requestSvc = NewRequestService(f.requests, f.userSvc, f.uploads)
	f.requestSvc.now = clock
	f.templateSvc = NewTemplateService(f.templates, f.userSvc, f.uploads)
	f.templateSvc.now = clock
	f.responsibilitySvc = NewResponsibilityService(f.responsibilities, f.userSvc)
	f.responsibilitySvc.now = clock
	f.dashboardSvc = NewDashboardService(f.requests, f.templates, f.responsibilities, f.users)

	mk := func(id, name, email string, role model.Role) model.User {
		return model.User{BaseModel: model.BaseModel{ID: id, CreatedAt: testClock, UpdatedAt: testClock}, Name: name, Email: email, Role: role}
	}
	f.admin = mk("u-admin", "Ada Lovelace", "ada@ecoa.example", model.RoleSuperuser)
	f.tplAdmin = mk("u-tpl", "Grace Hopper", "grace@ecoa.example", model.RoleTemplateAdmin)
	f.alice = mk("u-alice", "Alice Liskov", "alice@ecoa.example", model.RoleUser)
	f.bob = mk("u-bob", "Bob Ritchie", "bob@ecoa.example", model.RoleUser)
	f.users.Seed(f.admin, f.tplAdmin, f.alice, f.bob)
	return f
}

func samplePDF(t *testing.T, pages int) []byte {
	t.Helper()
	data, err := uploads.RenderSamplePDF(uploads.SampleCoA{Title: "Test", PartNumber: "PN-1", LotID: "LOT-1", PlantID: "PLT-1", Pages: pages})
	require.NoError(t, err)
	return data
}

// createEnvelope ingests an envelope with n documents.
func (f *fixture) createEnvelope(t *testing.T, n int) *model.Request {
	t.Helper()
	dto := model.CreateRequestDTO{
		DocumentName:   "Alloy Sheet CoA",
		InitiatorEmail: "QA@acme-metals.com",
		PlantID:        "PLT-AUS",
		PartNumber:     "PN-10000",
		LotID:          "LOT-000001",
	}
	for range n {
		dto.Documents = append(dto.Documents, model.CreateDocumentDTO{DocumentName: "cert.pdf"})
	}
	req, err := f.requestSvc.Create(context.Background(), dto)
	require.NoError(t, err)
	return req
}

// markGenerated moves a document to template_generated as the processing pipeline would.
func (f *fixture) markGenerated(t *testing.T, id string) {
	t.Helper()
	doc, err := f.requests.Get(context.Background(), id)
	require.NoError(t, err)
	doc.RequestStatus = model.RequestStatusTemplateGenerated
	doc.Status = model.DocumentStatus(doc)
	require.NoError(t, f.requests.Update(context.Background(), doc))
}

func TestSamplePDFIsAccepted(t *testing.T) {
	f := newFixture(t)
	meta, err := f.uploads.UploadPDF(context.Background(), "x.pdf", bytes.NewReader(samplePDF(t, 2)))
	require.NoError(t, err)
	assert.Equal(t, 2, meta.PageCount)
}
