package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of withdrawal dates.
const DateLayout = "2006-01-02"

// Withdrawal is an append-only ledger entry recording one inventory
// decrement event. It is never updated or deleted.
type Withdrawal struct {
	ID             string     `db:"id" json:"id"`
	WithdrawalDate string     `db:"withdrawal_date" json:"withdrawalDate"`
	EngineerName   string     `db:"engineer_name" json:"engineerName"`
	Description    string     `db:"description" json:"description"`
	Notes          string     `db:"notes" json:"notes,omitempty"`
	Items          []LineItem `db:"-" json:"items"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}

// LineItem is a snapshot of one withdrawn equipment line, taken when the
// withdrawal was recorded.
type LineItem struct {
	EquipmentID       string `db:"equipment_id" json:"equipmentId"`
	EquipmentName     string `db:"equipment_name" json:"equipmentName"`
	QuantityWithdrawn int    `db:"quantity" json:"quantityWithdrawn"`
	Unit              string `db:"unit" json:"unit"`
}

// TotalQuantity sums the quantity of every line.
func (w *Withdrawal) TotalQuantity() int {
	total := 0
	for _, it := range w.Items {
		total += it.QuantityWithdrawn
	}
	return total
}

// DateRange is an inclusive window of calendar dates.
type DateRange struct {
	Start string
	End   string
}

// ParseDate validates a calendar date. RFC 3339 timestamps are accepted
// and truncated to their date.
func ParseDate(s string) (string, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.Format(DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(DateLayout), nil
	}
	return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

// NewDateRange validates both ends of a window.
func NewDateRange(start, end string) (*DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	if e < s {
		return nil, fmt.Errorf("end date %s is before start date %s", e, s)
	}
	return &DateRange{Start: s, End: e}, nil
}

// Contains reports whether date falls within the window.
func (r *DateRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}
