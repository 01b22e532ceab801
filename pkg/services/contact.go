package services

import (
	"context"
	"fmt"
	"time"

	"portfolio-site/pkg/models"
	"portfolio-site/pkg/rowstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Contact handles contact-form submissions. Messages are only stored when
// persistence is on; the sender is acknowledged either way.
type Contact struct {
	store   rowstore.Store
	persist bool
	log     *zap.Logger
	now     func() time.Time
}

func NewContact(store rowstore.Store, persist bool, log *zap.Logger) *Contact {
	return &Contact{store: store, persist: persist, log: log, now: time.Now}
}

func (c *Contact) Persisting() bool {
	return c.persist
}

// Submit records msg and returns the acknowledgment shown to the sender.
func (c *Contact) Submit(ctx context.Context, msg models.ContactMessage) string {
	msg.ID = uuid.New()
	msg.CreatedAt = c.now().UTC()
	c.log.Info("Contact message received",
		zap.String("id", msg.ID.String()),
		zap.String("name", msg.Name),
		zap.String("email", msg.Email),
		zap.Int("length", len(msg.Message)))

	if c.persist {
		if err := c.store.Insert(ctx, models.TableContactMessages, msg); err != nil {
			c.log.Error("Failed to store contact message", zap.String("id", msg.ID.String()), zap.Error(err))
		}
	}
	return Acknowledgment(msg)
}

func Acknowledgment(msg models.ContactMessage) string {
	return fmt.Sprintf("Thank you, %s! Your message has been received. I'll get back to you soon at %s.", msg.Name, msg.Email)
}

// Recent lists stored messages, newest first.
func (c *Contact) Recent(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	if !c.persist {
		return []models.ContactMessage{}, nil
	}
	var msgs []models.ContactMessage
	q := rowstore.From(models.TableContactMessages).Order("created_at", false).Limit(limit)
	if err := c.store.Select(ctx, q, &msgs); err != nil {
		return nil, fmt.Errorf("services.Contact.Recent: %w", err)
	}
	return msgs, nil
}
