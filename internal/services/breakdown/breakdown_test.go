package breakdown

import (
	"testing"

	"tradedesk/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name        string
		in          Input
		wantGross   string
		wantCharge  string
		wantPayable string
		wantErr     error
	}{
		{
			name:        "sell deducts charge",
			in:          Input{Side: models.SideSell, Amount: d("100"), Quantity: 2, Rate: d("750"), ChargePercent: d("2")},
			wantGross:   "150000",
			wantCharge:  "3000",
			wantPayable: "147000",
		},
		{
			name:        "buy adds charge",
			in:          Input{Side: models.SideBuy, Amount: d("0.015"), Rate: d("95000000"), ChargePercent: d("1.5")},
			wantGross:   "1425000",
			wantCharge:  "21375",
			wantPayable: "1446375",
		},
		{
			name:        "charge capped",
			in:          Input{Side: models.SideSell, Amount: d("500"), Rate: d("800"), ChargePercent: d("5"), ChargeCap: d("10000")},
			wantGross:   "400000",
			wantCharge:  "10000",
			wantPayable: "390000",
		},
		{
			name:        "zero quantity treated as one",
			in:          Input{Side: models.SideSell, Amount: d("25"), Rate: d("1000")},
			wantGross:   "25000",
			wantCharge:  "0",
			wantPayable: "25000",
		},
		{
			name:        "rounds to two places",
			in:          Input{Side: models.SideSell, Amount: d("0.00012345"), Rate: d("96123456.78"), ChargePercent: d("1")},
			wantGross:   "11866.44",
			wantCharge:  "118.66",
			wantPayable: "11747.78",
		},
		{
			name:        "rate and charge rounded to fiat places",
			in:          Input{Side: models.SideSell, Amount: d("10"), Rate: d("750.004"), ChargePercent: d("1.004")},
			wantGross:   "7500",
			wantCharge:  "75",
			wantPayable: "7425",
		},
		{name: "rate rounds to zero", in: Input{Side: models.SideSell, Amount: d("1"), Rate: d("0.004")}, wantErr: ErrInvalidRate},
		{name: "invalid side", in: Input{Side: "swap", Amount: d("1"), Rate: d("1")}, wantErr: ErrInvalidSide},
		{name: "negative quantity", in: Input{Side: models.SideSell, Amount: d("1"), Quantity: -1, Rate: d("1")}, wantErr: ErrInvalidQuantity},
		{name: "zero amount", in: Input{Side: models.SideSell, Amount: d("0"), Rate: d("1")}, wantErr: ErrInvalidAmount},
		{name: "zero rate", in: Input{Side: models.SideSell, Amount: d("1"), Rate: d("0")}, wantErr: ErrInvalidRate},
		{name: "charge of 100 percent", in: Input{Side: models.SideSell, Amount: d("1"), Rate: d("1"), ChargePercent: d("100")}, wantErr: ErrInvalidCharge},
		{name: "gross rounds to zero", in: Input{Side: models.SideSell, Amount: d("0.0001"), Rate: d("1")}, wantErr: ErrNothingPayable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Compute(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, d(tt.wantGross).Equal(b.Gross), "gross %s", b.Gross)
			assert.True(t, d(tt.wantCharge).Equal(b.ServiceCharge), "charge %s", b.ServiceCharge)
			assert.True(t, d(tt.wantPayable).Equal(b.Payable), "payable %s", b.Payable)
		})
	}
}

func TestRecompute(t *testing.T) {
	b, err := Compute(Input{Side: models.SideSell, Amount: d("200"), Quantity: 1, Rate: d("700"), ChargePercent: d("2")})
	require.NoError(t, err)

	t.Run("reviewed amount keeps rate", func(t *testing.T) {
		p, err := Recompute(b, d("150"), nil)
		require.NoError(t, err)
		assert.True(t, d("105000").Equal(p.Gross))
		assert.True(t, d("2100").Equal(p.ServiceCharge))
		assert.True(t, d("102900").Equal(p.Payable))
		assert.Equal(t, models.SideSell, p.Side)
	})

	t.Run("rate override", func(t *testing.T) {
		rate := d("650")
		p, err := Recompute(b, d("150"), &rate)
		require.NoError(t, err)
		assert.True(t, d("97500").Equal(p.Gross))
		assert.True(t, d("95550").Equal(p.Payable))
	})

	t.Run("invalid reviewed amount", func(t *testing.T) {
		_, err := Recompute(b, d("-1"), nil)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}
