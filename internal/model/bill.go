package model

import "time"

// The four fixed bill slots every family carries.
var BillTypes = []string{"electricity", "cable", "wifi", "tax"}

// ValidBillType reports whether t names one of the fixed slots.
func ValidBillType(t string) bool {
	for _, bt := range BillTypes {
		if t == bt {
			return true
		}
	}
	return false
}

// BillSlot is one of a family's four bill entries. Status is stored, but
// the dashboard derives its own view from DueDate and IsPaid; the stored
// field only catches up when the sweep endpoint runs.
type BillSlot struct {
	ID        int64      `json:"id"`
	FamilyID  int64      `json:"family_id"`
	BillType  string     `json:"bill_type"`
	Amount    float64    `json:"amount"`
	DueDate   time.Time  `json:"due_date"`
	IsPaid    bool       `json:"is_paid"`
	PaidDate  *time.Time `json:"paid_date"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
