package messagegorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageModel is the GORM persistence model for messages.
// It maps directly to the "messages" table.
type MessageModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID string    `gorm:"size:64;not null;index"`
	ExternalID     string    `gorm:"size:128;not null;uniqueIndex"`
	FromNumber     string    `gorm:"size:32;not null"`
	ToNumber       string    `gorm:"size:32;not null"`
	Timestamp      time.Time `gorm:"not null;index"`
	ContentType    string    `gorm:"size:20;not null"`
	Body           string    `gorm:"type:text;not null"`
	Status         string    `gorm:"size:20;not null"`
	SenderName     string    `gorm:"size:128"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time
}

// TableName overrides the default table name used by GORM.
func (MessageModel) TableName() string {
	return "messages"
}

// BeforeCreate ensures a UUID is set before inserting a new record.
func (m *MessageModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
