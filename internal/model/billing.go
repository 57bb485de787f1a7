package model

import (
	"time"

	"github.com/google/uuid"
)

type BillType string

const (
	BillTypeRent        BillType = "rent"
	BillTypeUtility     BillType = "utility"
	BillTypeMaintenance BillType = "maintenance"
	BillTypePenalty     BillType = "penalty"
	BillTypeOther       BillType = "other"
)

type BillStatus string

const (
	BillStatusPending             BillStatus = "pending"
	BillStatusPendingVerification BillStatus = "pending_verification"
	BillStatusPaid                BillStatus = "paid"
)

// Line item types. Late fees are recognized by item type, not by a flag on
// the bill, so re-running the applier can never double-charge.
const (
	ItemTypeRent    = "rent"
	ItemTypeLateFee = "late_fee"
	ItemTypeOther   = "other"
)

// BillItem is one line of an itemized bill, stored as jsonb.
type BillItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type,omitempty"`
}

// Bill represents the bills table. A bill is immutable once paid. Version is
// bumped on every write and checked on update so two concurrent
// read-modify-write cycles cannot both commit.
type Bill struct {
	ID               uuid.UUID  `json:"id"`
	TenantID         uuid.UUID  `json:"tenant_id"`
	LandlordID       uuid.UUID  `json:"landlord_id"`
	RoomID           *uuid.UUID `json:"room_id,omitempty"`
	RoomNumber       string     `json:"room_number,omitempty"`
	PropertyAddress  string     `json:"property_address,omitempty"`
	Type             BillType   `json:"type"`
	Items            []BillItem `json:"items"`
	TotalAmount      float64    `json:"total_amount"`
	DueDate          time.Time  `json:"due_date"`
	Status           BillStatus `json:"status"`
	IsAutoGenerated  bool       `json:"is_auto_generated"`
	PaidDate         *time.Time `json:"paid_date,omitempty"`
	PaymentMethod    string     `json:"payment_method,omitempty"`
	PaymentReference string     `json:"payment_reference,omitempty"`
	Version          int        `json:"version"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HasItemType reports whether any line item carries the given type.
func (b *Bill) HasItemType(itemType string) bool {
	for _, it := range b.Items {
		if it.Type == itemType {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodGCash        PaymentMethod = "gcash"
	MethodMaya         PaymentMethod = "maya"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodOther        PaymentMethod = "other"
)

// RequiresReference reports whether the method needs an external reference
// number before a payment against it can be recorded.
func (m PaymentMethod) RequiresReference() bool {
	switch m {
	case MethodGCash, MethodMaya, MethodBankTransfer:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusCompleted           PaymentStatus = "completed"
	PaymentStatusPendingVerification PaymentStatus = "pending_verification"
	PaymentStatusRejected            PaymentStatus = "rejected"
)

type Role string

const (
	RoleLandlord Role = "landlord"
	RoleTenant   Role = "tenant"
)

// Payment represents the payments table. A bill settles with exactly one
// completed payment but may accumulate rejected or duplicate attempts.
type Payment struct {
	ID              uuid.UUID     `json:"id"`
	BillID          uuid.UUID     `json:"bill_id"`
	TenantID        uuid.UUID     `json:"tenant_id"`
	LandlordID      uuid.UUID     `json:"landlord_id"`
	Amount          float64       `json:"amount"`
	Method          PaymentMethod `json:"method"`
	ReferenceNumber string        `json:"reference_number,omitempty"`
	PaymentDate     time.Time     `json:"payment_date"`
	Status          PaymentStatus `json:"status"`
	SubmittedBy     uuid.UUID     `json:"submitted_by"`
	SubmitterRole   Role          `json:"submitter_role"`
	CreatedAt       time.Time     `json:"created_at"`
}

// BillingSettings represents the billing_settings table, one row per landlord.
type BillingSettings struct {
	LandlordID         uuid.UUID `json:"landlord_id"`
	AutoBillingEnabled bool      `json:"auto_billing_enabled"`
	DefaultPaymentDay  int       `json:"default_payment_day"`
	LateFeeAmount      float64   `json:"late_fee_amount"`
	GracePeriodDays    int       `json:"grace_period_days"`
	AutoLateFeeEnabled bool      `json:"auto_late_fee_enabled"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// BillingRun represents the billing_runs table: the queryable fact that a
// monthly cycle already ran for (landlord, year, month). Advisory — the
// generator's per-lease existence check stays the correctness boundary.
type BillingRun struct {
	LandlordID uuid.UUID `json:"landlord_id"`
	Year       int       `json:"year"`
	Month      int       `json:"month"`
	Generated  int       `json:"generated"`
	Skipped    int       `json:"skipped"`
	CreatedAt  time.Time `json:"created_at"`
}
