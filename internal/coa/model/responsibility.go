package model

// Responsibility binds a user to a (part number, plant) pair.
type Responsibility struct {
	BaseModel
	UserID     string       `gorm:"type:varchar(64);column:user_id;not null;index" json:"user_id"`
	PartNumber string       `gorm:"type:varchar(100);column:part_number;not null" json:"part_number"`
	PlantID    string       `gorm:"type:varchar(50);column:plant_id;not null" json:"plant_id"`
	Status     RecordStatus `gorm:"type:varchar(20);column:status;not null" json:"status"`

	// Resolved at read time, never stored.
	User *User `gorm:"-" json:"user,omitempty"`
}

func (r *Responsibility) TableName() string {
	return "responsibilities"
}

// SameBinding reports whether two responsibilities bind the same user, part and plant.
func (r Responsibility) SameBinding(o Responsibility) bool {
	return r.UserID == o.UserID && r.PartNumber == o.PartNumber && r.PlantID == o.PlantID
}

// CreateResponsibilityDTO is the payload for creating a responsibility.
type CreateResponsibilityDTO struct {
	UserID     string `json:"user_id" binding:"required"`
	PartNumber string `json:"part_number" binding:"required"`
	PlantID    string `json:"plant_id" binding:"required"`
	Status     string `json:"status"`
}

// UpdateResponsibilityDTO is the payload for updating a responsibility. Nil fields are left unchanged.
type UpdateResponsibilityDTO struct {
	UserID     *string `json:"user_id"`
	PartNumber *string `json:"part_number"`
	PlantID    *string `json:"plant_id"`
	Status     *string `json:"status"`
}

// ResponsibilityQuery filters the responsibility list.
type ResponsibilityQuery struct {
	Search     string
	Status     string
	UserID     string
	PartNumber string
	PlantID    string
	Page       *int
	PageSize   *int
}

// ResponsibilityListResult is the response of the responsibility list.
type ResponsibilityListResult struct {
	Items      []Responsibility `json:"items"`
	Pagination PaginationDTO    `json:"pagination"`
}

// UserListResult is the response of the user list.
type UserListResult struct {
	Items      []User        `json:"items"`
	Pagination PaginationDTO `json:"pagination"`
}
