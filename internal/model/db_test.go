package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusStale, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusStale, true},
		{OrderStatusProcessing, OrderStatusPending, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
		{OrderStatusStale, OrderStatusPending, false},
		// Same-status writes are allowed everywhere.
		{OrderStatusDelivered, OrderStatusDelivered, true},
		{OrderStatusCancelled, OrderStatusCancelled, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStripeEventObjectID(t *testing.T) {
	var event StripeEvent
	err := json.Unmarshal([]byte(`{
		"id": "evt_1",
		"type": "payment_intent.created",
		"data": {"object": {"id": "pi_1", "amount": 1999}}
	}`), &event)
	assert.NoError(t, err)
	assert.Equal(t, "pi_1", event.ObjectID())

	empty := StripeEvent{}
	assert.Empty(t, empty.ObjectID())
}
