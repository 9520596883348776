package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/consign_backend/config"
	"bitbucket.org/mmdatafocus/consign_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationOutboxRecord is the transactional outbox row behind settlement
// notifications. The settlement transaction writes the row; the dispatcher
// publishes it to Pub/Sub after commit, so a notification can never exist for
// a write that rolled back and a publish failure can never undo a settlement.
type NotificationOutboxRecord struct {
	ID               int                   `gorm:"primary_key;index:idx_notif_dispatch,priority:3" json:"id"`
	OrganizationId   string                `gorm:"size:64;not null;index" json:"organization_id"`
	ProviderId       int                   `gorm:"not null;index" json:"provider_id"`
	EventType        NotificationEventType `gorm:"size:40;not null" json:"event_type"`
	ReferenceId      int                   `gorm:"not null" json:"reference_id"`
	Payload          []byte                `gorm:"type:blob" json:"payload"`
	OccurredAt       time.Time             `gorm:"index;not null" json:"occurred_at"`
	PublishStatus    string                `gorm:"size:20;index;not null;default:'PENDING';index:idx_notif_dispatch,priority:1" json:"publish_status"`
	PublishedAt      *time.Time            `gorm:"index" json:"published_at"`
	PubSubMessageId  *string               `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int                   `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time            `gorm:"index;index:idx_notif_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time            `gorm:"index" json:"locked_at"`
	LockedBy         *string               `gorm:"size:100" json:"locked_by"`
	LastPublishError *string               `gorm:"type:text" json:"last_publish_error"`
	CorrelationId    string                `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt        time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

// QueueNotification writes an outbox row inside the caller's transaction. It
// never publishes; the dispatcher picks the row up after commit.
func QueueNotification(ctx context.Context, tx *gorm.DB, organizationId string, providerId int, eventType NotificationEventType, referenceId int, payload interface{}) error {
	var payloadBytes []byte
	if payload != nil {
		payloadJSON, err := utils.MarshalToJSON(payload)
		if err != nil {
			return err
		}
		payloadBytes = []byte(payloadJSON)
	}

	record := NotificationOutboxRecord{
		OrganizationId: organizationId,
		ProviderId:     providerId,
		EventType:      eventType,
		ReferenceId:    referenceId,
		Payload:        payloadBytes,
		OccurredAt:     time.Now().UTC(),
		PublishStatus:  OutboxPublishStatusPending,
		CorrelationId:  correlationIdFromContextOrNew(ctx),
	}
	return tx.WithContext(ctx).Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// ConvertToNotificationMessage maps an outbox row to the wire message.
func ConvertToNotificationMessage(record NotificationOutboxRecord) config.NotificationMessage {
	return config.NotificationMessage{
		ID:             record.ID,
		OrganizationId: record.OrganizationId,
		ProviderId:     record.ProviderId,
		EventType:      string(record.EventType),
		ReferenceId:    record.ReferenceId,
		OccurredAt:     record.OccurredAt,
		Payload:        record.Payload,
		CorrelationId:  record.CorrelationId,
	}
}
