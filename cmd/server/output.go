package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/kpvarma/ecoas-forge-sub000/internal/client"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/display"
)

// checkResult turns a failed result into an error and warns on stderr when
// the value is sample data.
func checkResult[T any](stderr io.Writer, r client.Result[T]) error {
	switch r.Source {
	case client.SourceFailed:
		return r.Err
	case client.SourceFallback:
		fmt.Fprintf(stderr, "warning: the API could not be reached, showing offline sample data (%v)\n", r.Err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

func renderRequests(w io.Writer, rows []model.RequestRow) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"ID", "Document", "Plant", "Part", "Lot", "Owner", "Status", "Processing", "Approval"})
	for _, row := range rows {
		r := row.Request
		id := r.ID
		switch {
		case row.IsChild:
			id = "  └ " + id
		case row.Expanded:
			id = "▾ " + id
		case row.Expandable:
			id = "▸ " + id
		}
		tw.AppendRow(table.Row{
			id, r.DocumentName, r.PlantID, r.PartNumber, r.LotID, r.Owner,
			row.Badges.Status.Label, row.Badges.RequestStatus.Label, row.Badges.OwnerStatus.Label,
		})
	}
	tw.Render()
}

func renderRequest(w io.Writer, r model.Request) {
	rows := []model.RequestRow{{Request: r, Expandable: len(r.Children) > 0, Expanded: len(r.Children) > 0, Badges: r.Badges()}}
	for _, child := range r.Children {
		rows = append(rows, model.RequestRow{Request: child, IsChild: true, ParentID: r.ID, Badges: child.Badges()})
	}
	renderRequests(w, rows)
}

func renderTemplates(w io.Writer, items []model.Template) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"ID", "Part No", "Plant", "HINTL", "Status", "Owners", "XML"})
	for _, t := range items {
		hintl := "no"
		if t.HINTLEnabled {
			hintl = "yes"
		}
		tw.AppendRow(table.Row{
			t.ID, t.PartNumber, t.PlantID, hintl,
			display.ColorAndLabel(string(t.Status), display.KindRecord).Label,
			strings.Join(t.Owners, ", "), t.XMLFile,
		})
	}
	tw.Render()
}

func renderResponsibilities(w io.Writer, items []model.Responsibility) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"ID", "User", "Email", "Part", "Plant", "Status"})
	for _, r := range items {
		name, email := r.UserID, ""
		if r.User != nil {
			name, email = r.User.Name, r.User.Email
		}
		tw.AppendRow(table.Row{
			r.ID, name, email, r.PartNumber, r.PlantID,
			display.ColorAndLabel(string(r.Status), display.KindRecord).Label,
		})
	}
	tw.Render()
}

func renderUsers(w io.Writer, items []model.User) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"ID", "Name", "Email", "Role", "Department"})
	for _, u := range items {
		tw.AppendRow(table.Row{u.ID, u.Name, u.Email, u.Role, u.Department})
	}
	tw.Render()
}

// renderPagination prints the range line and the page window, with the
// current page in brackets.
func renderPagination(w io.Writer, p model.PaginationDTO) {
	fmt.Fprintf(w, "Showing %d to %d of %d results\n", p.ShowingFrom, p.ShowingTo, p.Total)
	pages := make([]string, 0, len(p.Window))
	for _, n := range p.Window {
		if n == p.Page {
			pages = append(pages, "["+strconv.Itoa(n)+"]")
			continue
		}
		pages = append(pages, strconv.Itoa(n))
	}
	fmt.Fprintf(w, "Page %d of %d: %s\n", p.Page, p.TotalPages, strings.Join(pages, " "))
}

func renderSeedReport(w io.Writer, r *coa.SeedReport) {
	tw := newTable(w)
	tw.AppendHeader(table.Row{"Kind", "Written"})
	tw.AppendRows([]table.Row{
		{"users", r.Users},
		{"requests", r.Requests},
		{"templates", r.Templates},
		{"responsibilities", r.Responsibilities},
		{"files", r.Files},
		{"skipped", r.Skipped},
	})
	tw.Render()
}
