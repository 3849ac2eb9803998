package domain

import "time"

// Client is a hiring company the recruiter works for.
type Client struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyName        string    `gorm:"type:text;not null" json:"company_name"`
	ContactPerson      string    `gorm:"type:text" json:"contact_person"`
	Email              string    `gorm:"type:text" json:"email"`
	Phone              string    `gorm:"type:text" json:"phone"`
	Address            string    `gorm:"type:text" json:"address"`
	RelationshipStatus string    `gorm:"type:text" json:"relationship_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}
