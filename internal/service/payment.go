package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/glennDGreatest/CasaLink-sub000/internal/model"
	"github.com/glennDGreatest/CasaLink-sub000/internal/monitoring"
	"github.com/glennDGreatest/CasaLink-sub000/internal/store"
)

// PaymentService records payment attempts and drives the bill state machine.
// Its core invariant: tenant-originated writes are advisory, landlord-
// originated writes are authoritative. A tenant submission can only park a
// bill in pending_verification; moving it to paid takes an explicit landlord
// action.
type PaymentService struct {
	bills    BillStore
	payments PaymentStore
}

func NewPaymentService(bills BillStore, payments PaymentStore) *PaymentService {
	return &PaymentService{bills: bills, payments: payments}
}

type RecordPaymentInput struct {
	BillID      uuid.UUID
	Amount      float64
	Method      model.PaymentMethod
	Reference   string
	PaymentDate time.Time // zero means now
	Submitter   Principal
}

// RecordPayment validates and records a payment attempt against a bill.
// Landlord submissions settle the bill immediately; tenant submissions hold
// it in pending_verification until the landlord verifies or rejects them.
// The bill transition is a conditional write on the bill's version: losing
// that race surfaces as a ConflictError with nothing recorded.
func (s *PaymentService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*model.Payment, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Method.RequiresReference() && strings.TrimSpace(in.Reference) == "" {
		return nil, ErrMissingReference
	}

	bill, err := s.bills.GetByID(ctx, in.BillID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, notFound("bill", in.BillID)
	}
	if bill.Status == model.BillStatusPaid {
		return nil, ErrBillAlreadySettled
	}

	paidAt := in.PaymentDate
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	payment := &model.Payment{
		BillID:          bill.ID,
		TenantID:        bill.TenantID,
		LandlordID:      bill.LandlordID,
		Amount:          in.Amount,
		Method:          in.Method,
		ReferenceNumber: strings.TrimSpace(in.Reference),
		PaymentDate:     paidAt,
		SubmittedBy:     in.Submitter.ID,
		SubmitterRole:   in.Submitter.Role,
	}

	if in.Submitter.Role == model.RoleLandlord {
		payment.Status = model.PaymentStatusCompleted
		bill.Status = model.BillStatusPaid
		bill.PaidDate = &paidAt
		bill.PaymentMethod = string(in.Method)
		bill.PaymentReference = payment.ReferenceNumber
	} else {
		payment.Status = model.PaymentStatusPendingVerification
		bill.Status = model.BillStatusPendingVerification
	}

	if err := s.bills.Update(ctx, bill); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, ConflictError("bill was modified concurrently, re-fetch and retry")
		}
		return nil, err
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		// The bill transition committed; surface the attempt record failure
		// without inventing a rollback the store does not have.
		log.Error().Err(err).Str("bill_id", bill.ID.String()).Msg("Failed to record payment attempt")
		return nil, &TransientError{Op: "record payment", Err: err}
	}

	monitoring.PaymentsRecorded.WithLabelValues(string(in.Submitter.Role)).Inc()
	log.Info().
		Str("bill_id", bill.ID.String()).
		Str("payment_id", payment.ID.String()).
		Str("role", string(in.Submitter.Role)).
		Str("status", string(payment.Status)).
		Msg("Payment recorded")
	return payment, nil
}

// VerifyPayment is the explicit landlord action that settles a tenant-
// submitted payment: the payment completes and the bill moves to paid.
func (s *PaymentService) VerifyPayment(ctx context.Context, paymentID uuid.UUID, verifier Principal) (*model.Payment, error) {
	payment, bill, err := s.pendingAttempt(ctx, paymentID, verifier)
	if err != nil {
		return nil, err
	}

	bill.Status = model.BillStatusPaid
	bill.PaidDate = &payment.PaymentDate
	bill.PaymentMethod = string(payment.Method)
	bill.PaymentReference = payment.ReferenceNumber
	if err := s.bills.Update(ctx, bill); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, ConflictError("bill was modified concurrently, re-fetch and retry")
		}
		return nil, err
	}

	payment.Status = model.PaymentStatusCompleted
	if err := s.payments.UpdateStatus(ctx, payment.ID, payment.Status); err != nil {
		return nil, &TransientError{Op: "verify payment", Err: err}
	}
	log.Info().Str("payment_id", payment.ID.String()).Msg("Payment verified")
	return payment, nil
}

// RejectPayment returns the bill to pending and marks the attempt rejected.
// Rejected attempts are retained; only one payment ever settles a bill.
func (s *PaymentService) RejectPayment(ctx context.Context, paymentID uuid.UUID, verifier Principal) (*model.Payment, error) {
	payment, bill, err := s.pendingAttempt(ctx, paymentID, verifier)
	if err != nil {
		return nil, err
	}

	bill.Status = model.BillStatusPending
	if err := s.bills.Update(ctx, bill); err != nil {
		if errors.Is(err, store.ErrVersionConflict) {
			return nil, ConflictError("bill was modified concurrently, re-fetch and retry")
		}
		return nil, err
	}

	payment.Status = model.PaymentStatusRejected
	if err := s.payments.UpdateStatus(ctx, payment.ID, payment.Status); err != nil {
		return nil, &TransientError{Op: "reject payment", Err: err}
	}
	log.Info().Str("payment_id", payment.ID.String()).Msg("Payment rejected")
	return payment, nil
}

func (s *PaymentService) pendingAttempt(ctx context.Context, paymentID uuid.UUID, verifier Principal) (*model.Payment, *model.Bill, error) {
	if verifier.Role != model.RoleLandlord {
		return nil, nil, ValidationError("only a landlord can verify or reject payments")
	}
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}
	if payment == nil {
		return nil, nil, notFound("payment", paymentID)
	}
	if payment.Status != model.PaymentStatusPendingVerification {
		return nil, nil, ConflictError("payment is not awaiting verification")
	}
	bill, err := s.bills.GetByID(ctx, payment.BillID)
	if err != nil {
		return nil, nil, err
	}
	if bill == nil {
		return nil, nil, notFound("bill", payment.BillID)
	}
	if bill.Status == model.BillStatusPaid {
		return nil, nil, ErrBillAlreadySettled
	}
	return payment, bill, nil
}
