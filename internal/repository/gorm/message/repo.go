package messagegorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emirhansari/whatsapp-inbox/internal/db"
	"github.com/emirhansari/whatsapp-inbox/internal/domain/message"
	"gorm.io/gorm"
)

// Repository is a GORM-backed implementation of the message.Repository interface.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a message repository using the given DB adapter.
func NewRepository(d db.DB) *Repository {
	return &Repository{
		db: d.Conn().(*gorm.DB),
	}
}

// FindByExternalID looks a message up by its upstream-assigned identifier.
func (r *Repository) FindByExternalID(ctx context.Context, externalID string) (*message.Message, error) {
	var model MessageModel

	err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		First(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", message.ErrNotFound, externalID)
	}
	if err != nil {
		return nil, err
	}

	return toDomain(&model), nil
}

// Insert persists a new message record. The unique index on external_id is
// the dedup backstop; a violation maps to ErrDuplicateMessage.
func (r *Repository) Insert(ctx context.Context, m *message.Message) error {
	model := fromDomain(m)

	err := r.db.WithContext(ctx).Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", message.ErrDuplicateMessage, m.ExternalID)
	}
	return err
}

// UpdateStatus sets the status of the message with the given external ID in
// one UPDATE statement, so concurrent transitions for the same ID cannot
// lose writes. Returns the updated record, or ErrNotFound when no row matched.
func (r *Repository) UpdateStatus(ctx context.Context, externalID string, status message.Status) (*message.Message, error) {
	res := r.db.WithContext(ctx).
		Model(&MessageModel{}).
		Where("external_id = ?", externalID).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		})

	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s", message.ErrNotFound, externalID)
	}

	return r.FindByExternalID(ctx, externalID)
}

// ListByConversation returns a conversation's messages ascending by send time.
func (r *Repository) ListByConversation(ctx context.Context, conversationID string) ([]*message.Message, error) {
	var models []MessageModel

	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("timestamp ASC").
		Find(&models).Error

	if err != nil {
		return nil, err
	}

	return toDomainMany(models), nil
}

// All returns every stored message. Only the conversation aggregator uses
// this; ordering is left to the caller.
func (r *Repository) All(ctx context.Context) ([]*message.Message, error) {
	var models []MessageModel

	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}

	return toDomainMany(models), nil
}

// compile-time interface check
var _ message.Repository = (*Repository)(nil)
