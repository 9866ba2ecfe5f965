package cart

import (
	"encoding/json"
	"fmt"
)

type snapshot struct {
	Lines []LineItem `json:"lines"`
}

// EncodeSnapshot serializes the full ordered cart.
func EncodeSnapshot(lines []LineItem) ([]byte, error) {
	if lines == nil {
		lines = []LineItem{}
	}
	b, err := json.Marshal(snapshot{Lines: lines})
	if err != nil {
		return nil, fmt.Errorf("encode cart snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot parses a snapshot and restores the line invariants: quantities
// are clamped, empty lines dropped, lines without a product id dropped and
// repeated keys merged into the first occurrence.
func DecodeSnapshot(b []byte) ([]LineItem, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	out := make([]LineItem, 0, len(s.Lines))
	index := map[Key]int{}
	for _, l := range s.Lines {
		if l.Product.ID == "" {
			continue
		}
		q := Clamp(l.Quantity)
		if q <= 0 {
			continue
		}
		if i, ok := index[l.Key()]; ok {
			out[i].Quantity = Clamp(out[i].Quantity + q)
			continue
		}
		l.Quantity = q
		index[l.Key()] = len(out)
		out = append(out, l)
	}
	return out, nil
}
