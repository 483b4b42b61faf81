package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	evt := NewBaseEvent("servicing.payment.applied", "loan-001", "Installment", "org-001")

	_, err := uuid.Parse(evt.EventID())
	require.NoError(t, err, "event id should be a UUID")
	assert.Equal(t, "servicing.payment.applied", evt.EventType())
	assert.Equal(t, "loan-001", evt.AggregateID())
	assert.Equal(t, "Installment", evt.AggregateType())
	assert.Equal(t, "org-001", evt.TenantID())
	assert.False(t, evt.OccurredAt().IsZero())
}

func TestBaseEvent_JSONFieldNames(t *testing.T) {
	evt := NewBaseEvent("servicing.schedule.generated", "loan-001", "Loan", "org-001")

	raw, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"event_id", "event_type", "aggregate_id", "aggregate_type", "tenant_id", "occurred_at"} {
		assert.Contains(t, decoded, key)
	}
}
