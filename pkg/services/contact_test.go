package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-site/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContactAcknowledgment(t *testing.T) {
	msg := models.ContactMessage{Name: "Dana", Email: "dana@example.com", Message: "Hi"}
	assert.Equal(t,
		"Thank you, Dana! Your message has been received. I'll get back to you soon at dana@example.com.",
		Acknowledgment(msg))
}

func TestContactSubmitWithoutPersistence(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	store := &failingStore{err: errors.New("must not be called")}
	c := NewContact(store, false, zap.New(core))

	ack := c.Submit(context.Background(), models.ContactMessage{Name: "Dana", Email: "dana@example.com", Message: "Hi"})
	assert.Contains(t, ack, "Dana")
	assert.Zero(t, store.calls)
	assert.Equal(t, 1, logs.FilterMessage("Contact message received").Len())

	recent, err := c.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestContactSubmitPersists(t *testing.T) {
	store := openStore(t)
	c := NewContact(store, true, zap.NewNop())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, name := range []string{"First", "Second", "Third"} {
		c.Submit(context.Background(), models.ContactMessage{Name: name, Email: "x@example.com", Message: "m"})
	}

	recent, err := c.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "Third", recent[0].Name)
	assert.Equal(t, "Second", recent[1].Name)
}

func TestContactStoreFailureStillAcknowledges(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	store := &failingStore{err: errors.New("insert failed")}
	c := NewContact(store, true, zap.New(core))

	ack := c.Submit(context.Background(), models.ContactMessage{Name: "Dana", Email: "dana@example.com", Message: "Hi"})
	assert.Contains(t, ack, "dana@example.com")
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, logs.Len())
}
