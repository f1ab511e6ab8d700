package models

import "time"

// CartLine is one priced line of a table's order. UnitPrice is the
// adjusted price captured at order time; the catalog base price is
// never written back.
type CartLine struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

func (l CartLine) Total() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// TableSession tracks one seated party from QR scan to settlement.
type TableSession struct {
	ID         string     `json:"id"`
	TableID    string     `json:"table_id"`
	GuestCount int        `json:"guest_count"`
	SeatedAt   time.Time  `json:"seated_at"`
	Lines      []CartLine `json:"lines"`
	PromoCode  string     `json:"promo_code,omitempty"`
	Status     string     `json:"status"`
}

func (s *TableSession) Subtotal() float64 {
	var sum float64
	for _, line := range s.Lines {
		sum += line.Total()
	}
	return sum
}
