package model

import "encoding/json"

// StripeEvent is the webhook delivery envelope. Only the fields the
// dispatcher needs are decoded; the payload object stays raw until the
// selected handler re-fetches the full resource from Stripe.
type StripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    StripeEventData `json:"data"`
}

type StripeEventData struct {
	Object json.RawMessage `json:"object"`
}

// ObjectID pulls the resource id out of the raw event payload.
func (e *StripeEvent) ObjectID() string {
	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(e.Data.Object, &ref); err != nil {
		return ""
	}
	return ref.ID
}
