package cart

import "encoding/json"

// Line is one product's entry in a session cart: how many units and from
// which fulfillment origin they would ship. Carts serialized before the
// international-stock rollout stored a bare quantity integer; that legacy
// encoding is resolved here, at the deserialization boundary, so business
// logic never branches on the stored shape.
type Line struct {
	Quantity        int  `json:"quantity"`
	IsInternational bool `json:"is_international"`

	// flagKnown is false for legacy lines, whose fulfillment origin must
	// be re-resolved from current stock instead of read from storage.
	flagKnown bool
}

// NewLine builds a current-encoding line with a resolved origin flag.
func NewLine(quantity int, isInternational bool) Line {
	return Line{Quantity: quantity, IsInternational: isInternational, flagKnown: true}
}

// FlagKnown reports whether the origin flag came from storage.
func (l Line) FlagKnown() bool { return l.flagKnown }

func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Quantity        int  `json:"quantity"`
		IsInternational bool `json:"is_international"`
	}{l.Quantity, l.IsInternational})
}

func (l *Line) UnmarshalJSON(b []byte) error {
	// Legacy encoding: a bare quantity.
	var quantity int
	if err := json.Unmarshal(b, &quantity); err == nil {
		*l = Line{Quantity: quantity}
		return nil
	}
	var s struct {
		Quantity        int  `json:"quantity"`
		IsInternational bool `json:"is_international"`
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = Line{Quantity: s.Quantity, IsInternational: s.IsInternational, flagKnown: true}
	return nil
}
