package coa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kpvarma/ecoas-forge-sub000/internal/auth"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/router"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/service"
	"github.com/kpvarma/ecoas-forge-sub000/internal/mockdata"
	"github.com/kpvarma/ecoas-forge-sub000/internal/repository"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads"
)

// Stores holds one repository per entity.
type Stores struct {
	Users            repository.Repository[model.User]
	Requests         repository.Repository[model.Request]
	Templates        repository.Repository[model.Template]
	Responsibilities repository.Repository[model.Responsibility]
}

// NewGormStores returns stores backed by db.
func NewGormStores(db *gorm.DB) Stores {
	return Stores{
		Users:            repository.NewGormRepository[model.User](db),
		Requests:         repository.NewGormRepository[model.Request](db),
		Templates:        repository.NewGormRepository[model.Template](db),
		Responsibilities: repository.NewGormRepository[model.Responsibility](db),
	}
}

// NewMemoryStores returns empty in-process stores.
func NewMemoryStores() Stores {
	return Stores{
		Users:            repository.NewMemoryRepository[model.User](),
		Requests:         repository.NewMemoryRepository[model.Request](),
		Templates:        repository.NewMemoryRepository(repository.WithClone(model.Template.Clone)),
		Responsibilities: repository.NewMemoryRepository[model.Responsibility](),
	}
}

// Manager coordinates the eCoA services and their HTTP routers.
type Manager struct {
	stores  Stores
	uploads *uploads.UploadService

	userService           *service.UserService
	requestService        *service.RequestService
	templateService       *service.TemplateService
	responsibilityService *service.ResponsibilityService
	dashboardService      *service.DashboardService
	authService           *auth.AuthService

	authHandler          *auth.HTTPHandler
	uploadHandler        *uploads.HTTPHandler
	requestRouter        *router.RequestRouter
	templateRouter       *router.TemplateRouter
	responsibilityRouter *router.ResponsibilityRouter
	userRouter           *router.UserRouter
	dashboardRouter      *router.DashboardRouter
}

// NewManager wires services over stores. strictPaging is the default of the
// request list's strict page size mode.
func NewManager(stores Stores, uploadService *uploads.UploadService, tokens *auth.TokenIssuer, strictPaging bool) *Manager {
	userService := service.NewUserService(stores.Users)
	requestService := service.NewRequestService(stores.Requests, userService, uploadService)
	templateService := service.NewTemplateService(stores.Templates, userService, uploadService)
	responsibilityService := service.NewResponsibilityService(stores.Responsibilities, userService)
	dashboardService := service.NewDashboardService(stores.Requests, stores.Templates, stores.Responsibilities, stores.Users)
	authService := auth.NewAuthService(userService, tokens)

	return &Manager{
		stores:                stores,
		uploads:               uploadService,
		userService:           userService,
		requestService:        requestService,
		templateService:       templateService,
		responsibilityService: responsibilityService,
		dashboardService:      dashboardService,
		authService:           authService,
		authHandler:           auth.NewHTTPHandler(authService),
		uploadHandler:         uploads.NewHTTPHandler(uploadService),
		requestRouter:         router.NewRequestRouter(requestService, strictPaging),
		templateRouter:        router.NewTemplateRouter(templateService),
		responsibilityRouter:  router.NewResponsibilityRouter(responsibilityService),
		userRouter:            router.NewUserRouter(userService),
		dashboardRouter:       router.NewDashboardRouter(dashboardService),
	}
}

// RegisterRoutes installs the auth middleware on rg and mounts every endpoint.
func (m *Manager) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(auth.Middleware(m.authService))
	m.authHandler.RegisterRoutes(rg)
	m.uploadHandler.RegisterRoutes(rg)
	m.requestRouter.RegisterRoutes(rg)
	m.templateRouter.RegisterRoutes(rg)
	m.responsibilityRouter.RegisterRoutes(rg)
	m.userRouter.RegisterRoutes(rg)
	m.dashboardRouter.RegisterRoutes(rg)
}

// SeedReport counts the records written by Seed. Records that already
// existed are counted as skipped.
type SeedReport struct {
	Users            int
	Requests         int
	Templates        int
	Responsibilities int
	Files            int
	Skipped          int
}

// Seed writes ds into the stores. With withFiles set, every template gets an
// XML document and every document a rendered sample PDF.
func (m *Manager) Seed(ctx context.Context, ds mockdata.Dataset, withFiles bool) (*SeedReport, error) {
	report := &SeedReport{}
	if withFiles {
		if err := m.seedFiles(ctx, &ds, report); err != nil {
			return report, err
		}
	}

	var err error
	if report.Users, err = seedAll(ctx, m.stores.Users, ds.Users, &report.Skipped); err != nil {
		return report, fmt.Errorf("failed to seed users: %w", err)
	}
	if report.Requests, err = seedAll(ctx, m.stores.Requests, ds.Requests, &report.Skipped); err != nil {
		return report, fmt.Errorf("failed to seed requests: %w", err)
	}
	if report.Templates, err = seedAll(ctx, m.stores.Templates, ds.Templates, &report.Skipped); err != nil {
		return report, fmt.Errorf("failed to seed templates: %w", err)
	}
	if report.Responsibilities, err = seedAll(ctx, m.stores.Responsibilities, ds.Responsibilities, &report.Skipped); err != nil {
		return report, fmt.Errorf("failed to seed responsibilities: %w", err)
	}

	slog.InfoContext(ctx, "seed completed",
		"users", report.Users,
		"requests", report.Requests,
		"templates", report.Templates,
		"responsibilities", report.Responsibilities,
		"files", report.Files,
		"skipped", report.Skipped,
	)
	return report, nil
}

func (m *Manager) seedFiles(ctx context.Context, ds *mockdata.Dataset, report *SeedReport) error {
	for i := range ds.Templates {
		t := &ds.Templates[i]
		content, err := mockdata.TemplateXML(*t)
		if err != nil {
			return err
		}
		meta, err := m.uploads.SaveXML(ctx, t.XMLFile, "", content)
		if err != nil {
			return fmt.Errorf("failed to store template %s: %w", t.ID, err)
		}
		t.XMLFile = meta.Key
		report.Files++
	}

	for i := range ds.Requests {
		r := &ds.Requests[i]
		if !r.IsChild() {
			continue
		}
		if _, err := m.stores.Requests.Get(ctx, r.ID); err == nil {
			continue
		}
		pdf, err := uploads.RenderSamplePDF(uploads.SampleCoA{
			Title:      r.DocumentName,
			PartNumber: r.PartNumber,
			LotID:      r.LotID,
			PlantID:    r.PlantID,
			Pages:      r.PageCount,
		})
		if err != nil {
			return err
		}
		meta, err := m.uploads.UploadPDF(ctx, r.DocumentName, bytes.NewReader(pdf))
		if err != nil {
			return fmt.Errorf("failed to store document %s: %w", r.ID, err)
		}
		r.DocumentKey = meta.Key
		r.PageCount = meta.PageCount
		report.Files++
	}
	return nil
}

func seedAll[T repository.Entity](ctx context.Context, repo repository.Repository[T], values []T, skipped *int) (int, error) {
	created := 0
	for _, v := range values {
		err := repo.Create(ctx, v)
		if errors.Is(err, repository.ErrConflict) {
			*skipped++
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
