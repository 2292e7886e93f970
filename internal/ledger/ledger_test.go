package ledger

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warungledger/backend/internal/domain"
)

var fixedNow = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, domain.Money(want).Equal(got), "expected %s, got %s", want, got)
}

func openSale(t *testing.T, qty int, price, cash string) domain.Sale {
	t.Helper()
	sale, err := Open("sal-1", Terms{
		ProductID:    "prd-1",
		CustomerID:   "cus-1",
		Quantity:     qty,
		UnitPrice:    domain.Money(price),
		CashReceived: domain.Money(cash),
	}, fixedNow)
	require.NoError(t, err)
	return sale
}

func TestOpenComputesTotalsAndStatus(t *testing.T) {
	cases := []struct {
		name      string
		qty       int
		price     string
		cash      string
		total     string
		remaining string
		status    domain.PaymentStatus
	}{
		{"no cash", 2, "50", "0", "100", "100", domain.PaymentPending},
		{"partial cash", 3, "100", "150", "300", "150", domain.PaymentPartial},
		{"exact cash", 4, "12.5", "50", "50", "0", domain.PaymentPaid},
		{"cash above total", 1, "20", "25", "20", "0", domain.PaymentPaid},
		{"free item", 2, "0", "0", "0", "0", domain.PaymentPaid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sale := openSale(t, tc.qty, tc.price, tc.cash)
			requireMoney(t, tc.total, sale.TotalAmount)
			requireMoney(t, tc.remaining, sale.RemainingAmount)
			requireMoney(t, tc.cash, sale.CashReceived)
			assert.Equal(t, tc.status, sale.PaymentStatus)
			assert.Equal(t, fixedNow, sale.SaleDate)
		})
	}
}

func TestOpenRejectsInvalidTerms(t *testing.T) {
	base := Terms{ProductID: "prd-1", CustomerID: "cus-1", Quantity: 1, UnitPrice: domain.Money("10")}

	noProduct := base
	noProduct.ProductID = ""
	zeroQty := base
	zeroQty.Quantity = 0
	negativePrice := base
	negativePrice.UnitPrice = domain.Money("-1")
	negativeCash := base
	negativeCash.CashReceived = domain.Money("-5")

	for _, terms := range []Terms{noProduct, zeroQty, negativePrice, negativeCash} {
		_, err := Open("sal-x", terms, fixedNow)
		require.ErrorIs(t, err, ErrInvalidTerms)
	}
}

func TestOpenRejectsAmountsStorageWouldRound(t *testing.T) {
	cases := []struct {
		name  string
		qty   int
		price string
		cash  string
	}{
		{"sub-cent price", 1, "0.004", "0"},
		{"sub-cent price with matching cash", 3, "0.333", "0.999"},
		{"sub-cent cash", 1, "10", "0.005"},
		{"price above max", 1, "1000000000000", "0"},
		{"total above max", 2, "999999999999.99", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Open("sal-x", Terms{
				ProductID:    "prd-1",
				CustomerID:   "cus-1",
				Quantity:     tc.qty,
				UnitPrice:    domain.Money(tc.price),
				CashReceived: domain.Money(tc.cash),
			}, fixedNow)
			require.ErrorIs(t, err, ErrInvalidTerms)
		})
	}
}

func TestOpenAcceptsTrailingZeroCents(t *testing.T) {
	sale := openSale(t, 3, "0.330", "0.990")

	requireMoney(t, "0.99", sale.TotalAmount)
	requireMoney(t, "0", sale.RemainingAmount)
	assert.Equal(t, domain.PaymentPaid, sale.PaymentStatus)
}

func TestOpenKeepsExplicitSaleDate(t *testing.T) {
	saleDate := fixedNow.AddDate(0, 0, -3)
	sale, err := Open("sal-1", Terms{
		ProductID: "prd-1", CustomerID: "cus-1", Quantity: 1, UnitPrice: domain.Money("1"), SaleDate: saleDate,
	}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, saleDate, sale.SaleDate)
	assert.Equal(t, fixedNow, sale.CreatedAt)
}

func TestApplyPaymentSettlesPartialSale(t *testing.T) {
	sale := openSale(t, 3, "100", "150")

	require.NoError(t, ApplyPayment(&sale, domain.Money("150"), PolicyReject, fixedNow.Add(time.Hour)))

	requireMoney(t, "300", sale.CashReceived)
	requireMoney(t, "0", sale.RemainingAmount)
	assert.Equal(t, domain.PaymentPaid, sale.PaymentStatus)
	assert.Equal(t, fixedNow.Add(time.Hour), sale.UpdatedAt)
}

func TestApplyPaymentZeroKeepsPending(t *testing.T) {
	sale := openSale(t, 1, "80", "0")

	require.NoError(t, ApplyPayment(&sale, decimal.Zero, PolicyReject, fixedNow))

	assert.Equal(t, domain.PaymentPending, sale.PaymentStatus)
	requireMoney(t, "80", sale.RemainingAmount)
}

func TestApplyPaymentRejectsNegativeAmount(t *testing.T) {
	sale := openSale(t, 1, "80", "0")
	before := sale

	err := ApplyPayment(&sale, domain.Money("-1"), PolicyClamp, fixedNow)

	require.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, before, sale)
}

func TestApplyPaymentRejectsSubCentAndOverflow(t *testing.T) {
	t.Run("sub-cent payment", func(t *testing.T) {
		sale := openSale(t, 1, "0.01", "0")
		before := sale

		err := ApplyPayment(&sale, domain.Money("0.004"), PolicyClamp, fixedNow)

		require.ErrorIs(t, err, ErrInvalidAmount)
		assert.Equal(t, before, sale)
		assert.Equal(t, domain.PaymentPending, sale.PaymentStatus)
	})

	t.Run("clamped cash beyond max", func(t *testing.T) {
		sale := openSale(t, 1, "999999999999.99", "1")
		before := sale

		err := ApplyPayment(&sale, domain.MaxMoney, PolicyClamp, fixedNow)

		require.ErrorIs(t, err, ErrInvalidAmount)
		assert.Equal(t, before, sale)
	})

	t.Run("smallest payment settles a cent", func(t *testing.T) {
		sale := openSale(t, 1, "0.01", "0")

		require.NoError(t, ApplyPayment(&sale, domain.Money("0.01"), PolicyReject, fixedNow))

		assert.Equal(t, domain.PaymentPaid, sale.PaymentStatus)
		requireMoney(t, "0", sale.RemainingAmount)
	})
}

func TestApplyPaymentOverpaymentPolicies(t *testing.T) {
	t.Run("reject leaves sale untouched", func(t *testing.T) {
		sale := openSale(t, 2, "50", "40")
		before := sale

		err := ApplyPayment(&sale, domain.Money("61"), PolicyReject, fixedNow)

		require.ErrorIs(t, err, ErrOverpayment)
		var overpay *OverpaymentError
		require.True(t, errors.As(err, &overpay))
		requireMoney(t, "60", overpay.Remaining)
		requireMoney(t, "61", overpay.Attempted)
		assert.Equal(t, before, sale)
	})

	t.Run("clamp absorbs the excess", func(t *testing.T) {
		sale := openSale(t, 2, "50", "40")

		require.NoError(t, ApplyPayment(&sale, domain.Money("61"), PolicyClamp, fixedNow))

		requireMoney(t, "101", sale.CashReceived)
		requireMoney(t, "0", sale.RemainingAmount)
		assert.Equal(t, domain.PaymentPaid, sale.PaymentStatus)
	})

	for _, policy := range []Policy{PolicyReject, PolicyClamp} {
		t.Run("paid is terminal under "+string(policy), func(t *testing.T) {
			sale := openSale(t, 1, "10", "10")
			err := ApplyPayment(&sale, decimal.Zero, policy, fixedNow)
			require.ErrorIs(t, err, ErrOverpayment)
			assert.Contains(t, err.Error(), "already paid")
		})
	}
}

func TestApplyPaymentSequencesNeverIncreaseRemaining(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 200; round++ {
		qty := 1 + rng.IntN(5)
		price := decimal.NewFromInt(int64(rng.IntN(500))).Div(decimal.NewFromInt(4))
		sale, err := Open("sal-prop", Terms{
			ProductID: "p", CustomerID: "c", Quantity: qty, UnitPrice: price,
		}, fixedNow)
		require.NoError(t, err)

		for step := 0; step < 10 && sale.PaymentStatus != domain.PaymentPaid; step++ {
			previous := sale.RemainingAmount
			amount := decimal.NewFromInt(int64(rng.IntN(200)))
			err := ApplyPayment(&sale, amount, PolicyClamp, fixedNow)
			require.NoError(t, err)

			assert.True(t, sale.RemainingAmount.LessThanOrEqual(previous))
			assert.Equal(t, sale.RemainingAmount.IsZero(), sale.PaymentStatus == domain.PaymentPaid)
			assert.True(t, sale.TotalAmount.Equal(price.Mul(decimal.NewFromInt(int64(qty)))))
		}
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	p, err = ParsePolicy(" CLAMP ")
	require.NoError(t, err)
	assert.Equal(t, PolicyClamp, p)

	_, err = ParsePolicy("credit")
	require.Error(t, err)
}
