package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent_CopiesPayload(t *testing.T) {
	payload := map[string]any{"status": "new"}

	evt := NewEvent(EventWorkOrderCreated, "wo-1", payload)
	payload["status"] = "done"
	payload["title"] = "changed"

	assert.Equal(t, map[string]any{"status": "new"}, evt.Payload)
	assert.Equal(t, EventWorkOrderCreated, evt.Type)
	assert.Equal(t, "wo-1", evt.EntityID)
	assert.Equal(t, time.UTC, evt.OccurredAt.Location())
}

func TestNewEvent_NilPayload(t *testing.T) {
	assert.Nil(t, NewEvent(EventCustomerDeleted, "c-1", nil).Payload)
}
