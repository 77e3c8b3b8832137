package model

import (
	"time"

	"github.com/kpvarma/ecoas-forge-sub000/internal/display"
)

// RequestStatus is the processing state of a document.
type RequestStatus string

const (
	RequestStatusQueued                   RequestStatus = "queued"
	RequestStatusParsed                   RequestStatus = "parsed"
	RequestStatusParsingFailed            RequestStatus = "parsing_failed"
	RequestStatusError                    RequestStatus = "error"
	RequestStatusAbandoned                RequestStatus = "abandoned"
	RequestStatusTemplateGenerated        RequestStatus = "template_generated"
	RequestStatusTemplateGenerationFailed RequestStatus = "template_generation_failed"
)

// Failed reports whether processing ended in one of the failure states.
func (s RequestStatus) Failed() bool {
	switch s {
	case RequestStatusParsingFailed, RequestStatusError, RequestStatusAbandoned, RequestStatusTemplateGenerationFailed:
		return true
	}
	return false
}

// Valid reports whether s is a known processing state.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusQueued, RequestStatusParsed, RequestStatusTemplateGenerated:
		return true
	}
	return s.Failed()
}

// OwnerStatus is the approval assignment state of a document.
type OwnerStatus string

const (
	OwnerStatusUnassigned OwnerStatus = "unassigned"
	OwnerStatusAssigned   OwnerStatus = "assigned"
	OwnerStatusApproved   OwnerStatus = "approved"
	OwnerStatusRetried    OwnerStatus = "retried"
	OwnerStatusRejected   OwnerStatus = "rejected"
)

// Status is the coarse display state derived from RequestStatus and OwnerStatus.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Request is either a parent request envelope or one of its child documents.
// Both levels live in the same table; ParentID is nil for envelopes.
type Request struct {
	BaseModel
	ParentID       *string       `gorm:"type:varchar(64);column:parent_id;index" json:"parent_id,omitempty"`
	DocumentName   string        `gorm:"type:varchar(255);column:document_name;not null" json:"document_name"`
	InitiatorEmail string        `gorm:"type:varchar(255);column:initiator_email" json:"initiator_email"`
	RecipientEmail string        `gorm:"type:varchar(255);column:recipient_email" json:"recipient_email"`
	PlantID        string        `gorm:"type:varchar(50);column:plant_id;index" json:"plant_id"`
	PartNumber     string        `gorm:"type:varchar(100);column:part_number;index" json:"part_number"`
	LotID          string        `gorm:"type:varchar(100);column:lot_id" json:"lot_id"`
	RequestStatus  RequestStatus `gorm:"type:varchar(40);column:request_status;not null" json:"request_status"`
	OwnerStatus    OwnerStatus   `gorm:"type:varchar(20);column:owner_status;not null" json:"owner_status"`
	Status         Status        `gorm:"type:varchar(20);column:status;not null" json:"status"`
	OwnerID        *string       `gorm:"type:varchar(64);column:owner_id;index" json:"owner_id,omitempty"`
	DocumentKey    string        `gorm:"type:varchar(255);column:document_key" json:"document_key,omitempty"`
	PageCount      int           `gorm:"column:page_count" json:"page_count,omitempty"`
	XMLKey         string        `gorm:"type:varchar(255);column:xml_key" json:"xml_key,omitempty"`
	ReviewComment  string        `gorm:"type:text;column:review_comment" json:"review_comment,omitempty"`
	ReviewedBy     *string       `gorm:"type:varchar(64);column:reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time    `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`

	// Resolved at read time, never stored.
	Owner       string    `gorm:"-" json:"owner,omitempty"`
	DocumentURL string    `gorm:"-" json:"document_url,omitempty"`
	Children    []Request `gorm:"-" json:"children,omitempty"`
}

func (r *Request) TableName() string {
	return "requests"
}

// IsChild reports whether the request is a document inside an envelope.
func (r Request) IsChild() bool {
	return r.ParentID != nil && *r.ParentID != ""
}

// OwnerIDValue returns the owner id or "" when unowned.
func (r Request) OwnerIDValue() string {
	if r.OwnerID == nil {
		return ""
	}
	return *r.OwnerID
}

// ParentIDValue returns the parent id or "" for envelopes.
func (r Request) ParentIDValue() string {
	if r.ParentID == nil {
		return ""
	}
	return *r.ParentID
}

// RequestBadges carries the display badges of a request row.
type RequestBadges struct {
	Status        display.Badge `json:"status"`
	RequestStatus display.Badge `json:"request_status"`
	OwnerStatus   display.Badge `json:"owner_status"`
}

// Badges computes the display badges of the request.
func (r Request) Badges() RequestBadges {
	return RequestBadges{
		Status:        display.ColorAndLabel(string(r.Status), display.KindStatus),
		RequestStatus: display.ColorAndLabel(string(r.RequestStatus), display.KindDocument),
		OwnerStatus:   display.ColorAndLabel(string(r.OwnerStatus), display.KindOwner),
	}
}

// RequestRow is a flattened request list row as sent to the UI.
type RequestRow struct {
	Request    Request       `json:"item"`
	IsChild    bool          `json:"is_child"`
	ParentID   string        `json:"parent_id,omitempty"`
	Expandable bool          `json:"expandable"`
	Expanded   bool          `json:"expanded"`
	Badges     RequestBadges `json:"badges"`
}

// PaginationDTO describes the page a list response carries.
type PaginationDTO struct {
	Page        int   `json:"page"`
	PageSize    int   `json:"page_size"`
	Total       int   `json:"total"`
	TotalPages  int   `json:"total_pages"`
	StartIndex  int   `json:"start_index"`
	EndIndex    int   `json:"end_index"`
	ShowingFrom int   `json:"showing_from"`
	ShowingTo   int   `json:"showing_to"`
	Window      []int `json:"window"`
}

// RequestListResult is the response of the request list.
type RequestListResult struct {
	Rows       []RequestRow  `json:"rows"`
	Pagination PaginationDTO `json:"pagination"`
}

// RequestQuery holds the filter, paging and expansion state of the request list.
type RequestQuery struct {
	Search        string
	Status        string
	RequestStatus string
	OwnerStatus   string
	Owner         string
	PlantID       string
	PartNumber    string
	Page          *int
	PageSize      *int
	Expanded      []string
	// StrictPageSize flattens before paginating so a page never exceeds the page size.
	StrictPageSize bool
}

// CreateDocumentDTO describes one document of a new request envelope.
type CreateDocumentDTO struct {
	DocumentName string `json:"document_name" binding:"required"`
	LotID        string `json:"lot_id"`
}

// CreateRequestDTO is the ingestion payload for a new request envelope.
type CreateRequestDTO struct {
	DocumentName   string              `json:"document_name" binding:"required"`
	InitiatorEmail string              `json:"initiator_email" binding:"required,email"`
	RecipientEmail string              `json:"recipient_email" binding:"omitempty,email"`
	PlantID        string              `json:"plant_id" binding:"required"`
	PartNumber     string              `json:"part_number" binding:"required"`
	LotID          string              `json:"lot_id"`
	Documents      []CreateDocumentDTO `json:"documents" binding:"dive"`
}

// AssignDTO assigns a document to a user.
type AssignDTO struct {
	OwnerID string `json:"owner_id" binding:"required"`
}

// ReviewDTO carries an approval or rejection comment.
type ReviewDTO struct {
	Comment string `json:"comment"`
}
