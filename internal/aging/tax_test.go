package aging

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name        string
		gross       string
		vatable     bool
		taxable     bool
		rate        string
		wantNetVAT  string
		wantTax     string
		wantNetOfTx string
	}{
		{"vatable taxable", "112.00", true, true, "0.01", "100", "1", "111.00"},
		{"vatable only", "112.00", true, false, "0.01", "100", "0", "112.00"},
		{"taxable only", "100.00", false, true, "0.02", "100.00", "2.0000", "98.0000"},
		{"neither", "100.00", false, false, "0.01", "100.00", "0", "100.00"},
		{"zero gross", "0", true, true, "0.01", "0", "0", "0"},
		{"credit memo", "-112.00", true, true, "0.01", "-100", "-1", "-111.00"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(dec(t, tc.gross), tc.vatable, tc.taxable, dec(t, tc.rate))
			require.True(t, got.NetOfVAT.Equal(dec(t, tc.wantNetVAT)), "net of vat = %s", got.NetOfVAT)
			require.True(t, got.WithholdingTax.Equal(dec(t, tc.wantTax)), "withholding = %s", got.WithholdingTax)
			require.True(t, got.NetOfTax.Equal(dec(t, tc.wantNetOfTx)), "net of tax = %s", got.NetOfTax)
		})
	}
}

func TestNormalizeWithholdingOffVATExclusiveBase(t *testing.T) {
	// Withholding comes off the 100 base, not the 112 gross, while the
	// net still subtracts it from the gross.
	got := Normalize(dec(t, "112"), true, true, dec(t, "0.02"))
	require.True(t, got.WithholdingTax.Equal(dec(t, "2")))
	require.True(t, got.NetOfTax.Equal(dec(t, "110")))
}
