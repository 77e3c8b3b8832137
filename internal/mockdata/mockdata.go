// Package mockdata generates realistic, seed-deterministic eCoA datasets for
// demo stores, seeding and client fallback.
package mockdata

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
)

var (
	firstNames  = []string{"Ada", "Grace", "Alan", "Linus", "Margaret", "Ken", "Barbara", "Dennis", "Frances", "Edsger", "Radia", "Niklaus"}
	lastNames   = []string{"Lovelace", "Hopper", "Turing", "Torvalds", "Hamilton", "Thompson", "Liskov", "Ritchie", "Allen", "Dijkstra", "Perlman", "Wirth"}
	departments = []string{"Quality", "Supply Chain", "Engineering", "Procurement", "Regulatory"}
	plants      = []string{"PLT-AUS", "PLT-BER", "PLT-CHN", "PLT-MEX", "PLT-SGP"}
	suppliers   = []string{"acme-metals.com", "globex.com", "initech.com", "umbrella-chem.com", "stark-alloys.com"}
	products    = []string{"Alloy Sheet", "Resin Batch", "Copper Wire", "Solvent Drum", "Polymer Pellets", "Steel Coil"}
)

var documentStatuses = []model.RequestStatus{
	model.RequestStatusQueued,
	model.RequestStatusParsed,
	model.RequestStatusParsingFailed,
	model.RequestStatusError,
	model.RequestStatusAbandoned,
	model.RequestStatusTemplateGenerated,
	model.RequestStatusTemplateGenerated,
	model.RequestStatusTemplateGenerated,
	model.RequestStatusTemplateGenerationFailed,
}

var reviewStatuses = []model.OwnerStatus{
	model.OwnerStatusUnassigned,
	model.OwnerStatusAssigned,
	model.OwnerStatusAssigned,
	model.OwnerStatusApproved,
	model.OwnerStatusApproved,
	model.OwnerStatusRetried,
	model.OwnerStatusRejected,
}

// Generator produces mock records. The same seed and clock yield the same data.
type Generator struct {
	rng   *rand.Rand
	src   *rand.ChaCha8
	now   time.Time
	parts []string
}

// New returns a generator seeded with seed whose timestamps lie before now.
func New(seed int64, now time.Time) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], uint64(seed))
	src := rand.NewChaCha8(key)
	g := &Generator{rng: rand.New(src), src: src, now: now.UTC()}
	for i := range 12 {
		g.parts = append(g.parts, fmt.Sprintf("PN-%05d", 10000+i*37))
	}
	return g
}

func pick[T any](g *Generator, from []T) T {
	return from[g.rng.IntN(len(from))]
}

func (g *Generator) id() string {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// ChaCha8 reads never fail.
		panic(err)
	}
	return id.String()
}

func (g *Generator) pastTime(maxAge time.Duration) time.Time {
	return g.now.Add(-time.Duration(g.rng.Int64N(int64(maxAge)))).Truncate(time.Second)
}

// Users returns n users. The first is always a Superuser and the second a Template Admin.
func (g *Generator) Users(n int) []model.User {
	users := make([]model.User, 0, n)
	seen := make(map[string]int)
	for i := range n {
		first, last := pick(g, firstNames), pick(g, lastNames)
		local := strings.ToLower(first + "." + last)
		seen[local]++
		if c := seen[local]; c > 1 {
			local = fmt.Sprintf("%s%d", local, c)
		}
		role := model.RoleUser
		switch {
		case i == 0:
			role = model.RoleSuperuser
		case i == 1:
			role = model.RoleTemplateAdmin
		case g.rng.IntN(5) == 0:
			role = model.RoleTemplateAdmin
		}
		created := g.pastTime(365 * 24 * time.Hour)
		users = append(users, model.User{
			BaseModel:  model.BaseModel{ID: g.id(), CreatedAt: created, UpdatedAt: created},
			Name:       first + " " + last,
			Email:      local + "@ecoa.example",
			Role:       role,
			Department: pick(g, departments),
		})
	}
	return users
}

// Requests returns n request envelopes, each followed by its 1 to 4 documents,
// as a flat list. Document owners are drawn from users; envelope aggregates are
// consistent with their documents.
func (g *Generator) Requests(n int, users []model.User) []model.Request {
	year := g.now.Year()
	out := make([]model.Request, 0, n*3)
	for i := range n {
		parentID := fmt.Sprintf("REQ-%d-%03d", year, i+1)
		created := g.pastTime(30 * 24 * time.Hour)
		part, plant := pick(g, g.parts), pick(g, plants)
		supplier := pick(g, suppliers)
		parent := model.Request{
			BaseModel:      model.BaseModel{ID: parentID, CreatedAt: created, UpdatedAt: created},
			DocumentName:   fmt.Sprintf("%s CoA %s", pick(g, products), part),
			InitiatorEmail: "qa@" + supplier,
			RecipientEmail: "coa-intake@ecoa.example",
			PlantID:        plant,
			PartNumber:     part,
			LotID:          fmt.Sprintf("LOT-%06d", g.rng.IntN(1000000)),
		}

		children := make([]model.Request, 0, 4)
		for k := range 1 + g.rng.IntN(4) {
			childCreated := created.Add(time.Duration(k+1) * time.Minute)
			child := model.Request{
				BaseModel:      model.BaseModel{ID: fmt.Sprintf("CoA-%d-%03d-%d", year, i+1, k+1), CreatedAt: childCreated, UpdatedAt: childCreated},
				ParentID:       &parentID,
				DocumentName:   fmt.Sprintf("%s_%s_%d.pdf", part, parent.LotID, k+1),
				InitiatorEmail: parent.InitiatorEmail,
				RecipientEmail: parent.RecipientEmail,
				PlantID:        plant,
				PartNumber:     part,
				LotID:          parent.LotID,
				RequestStatus:  pick(g, documentStatuses),
				OwnerStatus:    model.OwnerStatusUnassigned,
				PageCount:      1 + g.rng.IntN(6),
			}
			if child.RequestStatus == model.RequestStatusTemplateGenerated {
				child.XMLKey = fmt.Sprintf("xml/%s.xml", child.ID)
				child.OwnerStatus = pick(g, reviewStatuses)
			}
			if child.OwnerStatus != model.OwnerStatusUnassigned && len(users) > 0 {
				owner := pick(g, users).ID
				child.OwnerID = &owner
			} else {
				child.OwnerStatus = model.OwnerStatusUnassigned
			}
			if child.OwnerStatus == model.OwnerStatusRejected {
				child.ReviewComment = "Values outside specification limits"
			}
			child.Status = model.DocumentStatus(child)
			children = append(children, child)
		}

		model.Recompute(&parent, children)
		out = append(out, parent)
		out = append(out, children...)
	}
	return out
}

// Templates returns n templates over the generator's part numbers. Owners are
// one or two of users.
func (g *Generator) Templates(n int, users []model.User) []model.Template {
	statuses := []model.RecordStatus{
		model.RecordStatusActive, model.RecordStatusActive, model.RecordStatusActive,
		model.RecordStatusInactive, model.RecordStatusArchived,
	}
	out := make([]model.Template, 0, n)
	for i := range n {
		part := g.parts[i%len(g.parts)]
		created := g.pastTime(180 * 24 * time.Hour)
		t := model.Template{
			BaseModel:    model.BaseModel{ID: g.id(), CreatedAt: created, UpdatedAt: created},
			PartNumber:   part,
			PlantID:      pick(g, plants),
			XMLFile:      fmt.Sprintf("templates/%s.xml", strings.ToLower(part)),
			HINTLEnabled: g.rng.IntN(3) == 0,
			Status:       pick(g, statuses),
			OwnerIDs:     []string{},
		}
		if len(users) > 0 {
			first := pick(g, users).ID
			t.OwnerIDs = append(t.OwnerIDs, first)
			if second := pick(g, users).ID; second != first && g.rng.IntN(2) == 0 {
				t.OwnerIDs = append(t.OwnerIDs, second)
			}
		}
		out = append(out, t)
	}
	return out
}

// Responsibilities binds users to the (part, plant) pairs of templates.
// No two active responsibilities share a user, part and plant.
func (g *Generator) Responsibilities(users []model.User, templates []model.Template) []model.Responsibility {
	if len(users) == 0 {
		return []model.Responsibility{}
	}
	out := make([]model.Responsibility, 0, len(templates)*2)
	active := make(map[string]bool)
	for _, t := range templates {
		for range 1 + g.rng.IntN(2) {
			u := pick(g, users)
			status := model.RecordStatusActive
			if g.rng.IntN(5) == 0 {
				status = model.RecordStatusInactive
			}
			key := u.ID + "|" + t.PartNumber + "|" + t.PlantID
			if status == model.RecordStatusActive {
				if active[key] {
					continue
				}
				active[key] = true
			}
			created := g.pastTime(90 * 24 * time.Hour)
			out = append(out, model.Responsibility{
				BaseModel:  model.BaseModel{ID: g.id(), CreatedAt: created, UpdatedAt: created},
				UserID:     u.ID,
				PartNumber: t.PartNumber,
				PlantID:    t.PlantID,
				Status:     status,
			})
		}
	}
	return out
}

// Dataset is a complete, internally consistent set of records.
type Dataset struct {
	Users            []model.User
	Requests         []model.Request
	Templates        []model.Template
	Responsibilities []model.Responsibility
}

// Dataset generates size request envelopes with the users, templates and
// responsibilities they refer to.
func (g *Generator) Dataset(size int) Dataset {
	users := g.Users(max(5, size/3))
	templates := g.Templates(max(3, size/2), users)
	return Dataset{
		Users:            users,
		Requests:         g.Requests(size, users),
		Templates:        templates,
		Responsibilities: g.Responsibilities(users, templates),
	}
}

var fallbackClock = time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)

// Fallback returns the fixed dataset served when the backend cannot be reached.
func Fallback() Dataset {
	return New(2024, fallbackClock).Dataset(12)
}

// TemplatesWithOwners returns copies of the templates with owner names resolved.
func (ds Dataset) TemplatesWithOwners() []model.Template {
	names := make(map[string]string, len(ds.Users))
	for _, u := range ds.Users {
		names[u.ID] = u.Name
	}
	out := make([]model.Template, len(ds.Templates))
	for i, t := range ds.Templates {
		t = t.Clone()
		t.Owners = make([]string, 0, len(t.OwnerIDs))
		for _, id := range t.OwnerIDs {
			t.Owners = append(t.Owners, names[id])
		}
		out[i] = t
	}
	return out
}

// ResponsibilitiesWithUsers returns copies of the responsibilities with users embedded.
func (ds Dataset) ResponsibilitiesWithUsers() []model.Responsibility {
	byID := make(map[string]model.User, len(ds.Users))
	for _, u := range ds.Users {
		byID[u.ID] = u
	}
	out := make([]model.Responsibility, len(ds.Responsibilities))
	for i, r := range ds.Responsibilities {
		if u, ok := byID[r.UserID]; ok {
			r.User = &u
		}
		out[i] = r
	}
	return out
}
