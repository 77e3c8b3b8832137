// Package display maps status values to the label and style class the UI renders as a badge.
package display

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind selects which status vocabulary a value belongs to.
type Kind string

const (
	KindStatus   Kind = "status"   // aggregate request status
	KindDocument Kind = "document" // document processing (request_status)
	KindOwner    Kind = "owner"    // owner / approval assignment (owner_status)
	KindApproval Kind = "approval" // outcome of an approval action
	KindRecord   Kind = "record"   // template and responsibility lifecycle
)

const (
	styleGray   = "bg-gray-100 text-gray-800"
	styleBlue   = "bg-blue-100 text-blue-800"
	styleGreen  = "bg-green-100 text-green-800"
	styleRed    = "bg-red-100 text-red-800"
	styleYellow = "bg-yellow-100 text-yellow-800"
	styleOrange = "bg-orange-100 text-orange-800"
	stylePurple = "bg-purple-100 text-purple-800"
)

// NeutralStyle is the style class used for any status a table does not know.
const NeutralStyle = styleGray

// Badge is the presentation of a single status value.
type Badge struct {
	Label      string `json:"label"`
	StyleClass string `json:"style_class"`
}

var tables = map[Kind]map[string]Badge{
	KindStatus: {
		"pending":     {"Pending", styleYellow},
		"in_progress": {"In Progress", styleBlue},
		"completed":   {"Completed", styleGreen},
		"failed":      {"Failed", styleRed},
	},
	KindDocument: {
		"queued":                     {"Queued", styleGray},
		"parsed":                     {"Parsed", styleBlue},
		"parsing_failed":             {"Parsing Failed", styleRed},
		"error":                      {"Error", styleRed},
		"abandoned":                  {"Abandoned", styleOrange},
		"template_generated":         {"Template Generated", styleGreen},
		"template_generation_failed": {"Template Generation Failed", styleRed},
	},
	KindOwner: {
		"unassigned": {"Unassigned", styleGray},
		"assigned":   {"Assigned", styleBlue},
		"approved":   {"Approved", styleGreen},
		"retried":    {"Retried", stylePurple},
		"rejected":   {"Rejected", styleRed},
	},
	KindApproval: {
		"pending":  {"Pending Approval", styleYellow},
		"approved": {"Approved", styleGreen},
		"rejected": {"Rejected", styleRed},
		"retried":  {"Sent Back", stylePurple},
	},
	KindRecord: {
		"active":   {"Active", styleGreen},
		"inactive": {"Inactive", styleYellow},
		"archived": {"Archived", styleGray},
		"deleted":  {"Deleted", styleRed},
	},
}

var kindAliases = map[string]Kind{
	"status":         KindStatus,
	"request":        KindStatus,
	"document":       KindDocument,
	"request_status": KindDocument,
	"owner":          KindOwner,
	"owner_status":   KindOwner,
	"approval":       KindApproval,
	"record":         KindRecord,
	"template":       KindRecord,
	"responsibility": KindRecord,
}

// ParseKind resolves a kind name, accepting the aliases used by the UI.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

// ColorAndLabel returns the badge for status under kind. It is total: unknown
// kinds and values get the neutral style and a label made by replacing
// underscores with spaces and title-casing each word.
func ColorAndLabel(status string, kind Kind) Badge {
	key := strings.ToLower(strings.TrimSpace(status))
	if b, ok := tables[kind][key]; ok {
		return b
	}
	return Badge{Label: humanize(key), StyleClass: NeutralStyle}
}

// Known reports whether status has an explicit entry for kind.
func Known(status string, kind Kind) bool {
	_, ok := tables[kind][strings.ToLower(strings.TrimSpace(status))]
	return ok
}

func humanize(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	if len(words) == 0 {
		return "Unknown"
	}
	return cases.Title(language.English).String(strings.Join(words, " "))
}
