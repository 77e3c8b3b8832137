package model

import (
	"slices"
	"strings"
)

// RecordStatus is the lifecycle of templates and responsibilities.
type RecordStatus string

const (
	RecordStatusActive   RecordStatus = "active"
	RecordStatusInactive RecordStatus = "inactive"
	RecordStatusArchived RecordStatus = "archived"
	RecordStatusDeleted  RecordStatus = "deleted"
)

// ParseRecordStatus resolves a lifecycle status. Deleted is only accepted when allowDeleted is set.
func ParseRecordStatus(s string, allowDeleted bool) (RecordStatus, bool) {
	switch st := RecordStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case RecordStatusActive, RecordStatusInactive, RecordStatusArchived:
		return st, true
	case RecordStatusDeleted:
		return st, allowDeleted
	}
	return "", false
}

// Template is an XML certificate template bound to a part number and plant.
type Template struct {
	BaseModel
	PartNumber   string       `gorm:"type:varchar(100);column:part_no;not null;index" json:"part_no"`
	PlantID      string       `gorm:"type:varchar(50);column:plant_id" json:"plant_id"`
	XMLFile      string       `gorm:"type:varchar(255);column:xml_file" json:"xml_file"`
	HINTLEnabled bool         `gorm:"column:hintl_enabled;not null;default:false" json:"hintl_enabled"`
	Status       RecordStatus `gorm:"type:varchar(20);column:status;not null" json:"status"`
	OwnerIDs     []string     `gorm:"type:text;column:owner_ids;serializer:json" json:"owner_ids"`

	// Resolved at read time, never stored.
	XMLURL string   `gorm:"-" json:"xml_url,omitempty"`
	Owners []string `gorm:"-" json:"owners"`
}

func (t *Template) TableName() string {
	return "templates"
}

// Clone returns a copy that shares no slices with t.
func (t Template) Clone() Template {
	t.OwnerIDs = slices.Clone(t.OwnerIDs)
	t.Owners = slices.Clone(t.Owners)
	return t
}

// CreateTemplateDTO is the upload form payload for a template.
// The XML itself arrives either as XMLContent or as a multipart file.
type CreateTemplateDTO struct {
	PartNumber   string   `json:"part_no" form:"part_no" binding:"required"`
	PlantID      string   `json:"plant_id" form:"plant_id"`
	HINTLEnabled bool     `json:"hintl_enabled" form:"hintl_enabled"`
	OwnerIDs     []string `json:"owner_ids" form:"owner_ids"`
	XMLContent   string   `json:"xml_content" form:"-"`
}

// UpdateTemplateDTO is the edit form payload. Nil fields are left unchanged.
type UpdateTemplateDTO struct {
	PartNumber   *string   `json:"part_no"`
	PlantID      *string   `json:"plant_id"`
	HINTLEnabled *bool     `json:"hintl_enabled"`
	Status       *string   `json:"status"`
	OwnerIDs     *[]string `json:"owner_ids"`
}

// TemplateQuery filters the template list.
type TemplateQuery struct {
	Search         string
	Status         string
	PlantID        string
	PartNumber     string
	HINTL          string
	IncludeDeleted bool
	Page           *int
	PageSize       *int
}

// TemplateListResult is the response of the template list.
type TemplateListResult struct {
	Items      []Template    `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}
