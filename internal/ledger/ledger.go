// Package ledger holds the payment state machine of a credit sale.
//
// A sale opens as pending, partial or paid depending on the cash taken at the
// counter, and later payments only ever move it towards paid. Paid is terminal.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"warungledger/backend/internal/domain"
)

var (
	ErrOverpayment   = errors.New("overpayment")
	ErrInvalidTerms  = errors.New("invalid sale terms")
	ErrInvalidAmount = errors.New("payment amount must be a non-negative number of cents")
)

type OverpaymentError struct {
	SaleID    string
	Remaining decimal.Decimal
	Attempted decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	if e.Remaining.Sign() <= 0 {
		return fmt.Sprintf("sale %s is already paid", e.SaleID)
	}
	return fmt.Sprintf("payment %s exceeds remaining balance %s on sale %s", e.Attempted, e.Remaining, e.SaleID)
}

func (e *OverpaymentError) Is(target error) bool {
	return target == ErrOverpayment
}

// Policy decides what happens to a payment larger than the remaining balance.
type Policy string

const (
	PolicyReject Policy = "reject"
	PolicyClamp  Policy = "clamp"
)

func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicyClamp:
		return PolicyClamp, nil
	default:
		return "", fmt.Errorf("unknown overpayment policy %q", raw)
	}
}

type Terms struct {
	ProductID    string
	CustomerID   string
	Quantity     int
	UnitPrice    decimal.Decimal
	CashReceived decimal.Decimal
	SaleDate     time.Time
}

// Status derives the payment status from the cash taken and the balance left.
func Status(cashReceived, remaining decimal.Decimal) domain.PaymentStatus {
	switch {
	case remaining.Sign() <= 0:
		return domain.PaymentPaid
	case cashReceived.Sign() <= 0:
		return domain.PaymentPending
	default:
		return domain.PaymentPartial
	}
}

// Open builds a new sale from its terms. Cash above the total leaves a zero
// balance; the cash figure itself is kept as given. Amounts must be whole
// cents within domain.MaxMoney so the stored sale matches the computed one.
func Open(id string, terms Terms, now time.Time) (domain.Sale, error) {
	if terms.ProductID == "" || terms.CustomerID == "" || terms.Quantity < 1 {
		return domain.Sale{}, ErrInvalidTerms
	}
	if !domain.ValidMoney(terms.UnitPrice) || !domain.ValidMoney(terms.CashReceived) {
		return domain.Sale{}, ErrInvalidTerms
	}

	total := terms.UnitPrice.Mul(decimal.NewFromInt(int64(terms.Quantity)))
	if !domain.ValidMoney(total) {
		return domain.Sale{}, ErrInvalidTerms
	}
	remaining := floorZero(total.Sub(terms.CashReceived))

	saleDate := terms.SaleDate
	if saleDate.IsZero() {
		saleDate = now
	}

	return domain.Sale{
		ID:              id,
		ProductID:       terms.ProductID,
		CustomerID:      terms.CustomerID,
		Quantity:        terms.Quantity,
		UnitPrice:       terms.UnitPrice,
		TotalAmount:     total,
		CashReceived:    terms.CashReceived,
		RemainingAmount: remaining,
		PaymentStatus:   Status(terms.CashReceived, remaining),
		SaleDate:        saleDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ApplyPayment adds an incremental payment to sale in place. The sale is left
// untouched when an error is returned.
func ApplyPayment(sale *domain.Sale, amount decimal.Decimal, policy Policy, now time.Time) error {
	if !domain.ValidMoney(amount) {
		return ErrInvalidAmount
	}
	if sale.PaymentStatus == domain.PaymentPaid || sale.RemainingAmount.Sign() <= 0 {
		return &OverpaymentError{SaleID: sale.ID, Remaining: decimal.Zero, Attempted: amount}
	}
	if policy != PolicyClamp && amount.GreaterThan(sale.RemainingAmount) {
		return &OverpaymentError{SaleID: sale.ID, Remaining: sale.RemainingAmount, Attempted: amount}
	}

	cash := sale.CashReceived.Add(amount)
	if !domain.ValidMoney(cash) {
		return ErrInvalidAmount
	}

	sale.CashReceived = cash
	sale.RemainingAmount = floorZero(sale.RemainingAmount.Sub(amount))
	sale.PaymentStatus = Status(sale.CashReceived, sale.RemainingAmount)
	sale.UpdatedAt = now
	return nil
}

func floorZero(v decimal.Decimal) decimal.Decimal {
	if v.Sign() < 0 {
		return decimal.Zero
	}
	return v
}
