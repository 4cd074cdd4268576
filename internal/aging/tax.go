package aging

import "github.com/shopspring/decimal"

// vatDivisor converts a VAT-inclusive gross amount to its tax-exclusive
// base. The 12% rate is fixed by the domain.
var vatDivisor = decimal.RequireFromString("1.12")

// TaxBreakdown is the result of normalising a gross amount.
type TaxBreakdown struct {
	NetOfVAT       decimal.Decimal
	WithholdingTax decimal.Decimal
	NetOfTax       decimal.Decimal
}

// Normalize applies the domain's tax-netting convention to a gross
// amount. Withholding is computed on the VAT-exclusive base but
// subtracted from the VAT-inclusive gross; both halves of that
// convention are deliberate and must stay as they are. Negative gross
// amounts (credit memos) flow through unchanged.
func Normalize(gross decimal.Decimal, isVatable, isTaxable bool, withholdingRate decimal.Decimal) TaxBreakdown {
	netOfVAT := gross
	if isVatable && !gross.IsZero() {
		netOfVAT = gross.Div(vatDivisor)
	}
	withholding := decimal.Zero
	if isTaxable {
		withholding = netOfVAT.Mul(withholdingRate)
	}
	return TaxBreakdown{
		NetOfVAT:       netOfVAT,
		WithholdingTax: withholding,
		NetOfTax:       gross.Sub(withholding),
	}
}

// normalizeDocument builds the quad contribution of a single document
// for a given gross and volume slice of it, using the document's own
// tax flags and rate.
func normalizeDocument(doc *LiabilityDocument, gross, volume decimal.Decimal) MoneyQuad {
	b := Normalize(gross, doc.IsVatable, doc.IsTaxable, doc.WithholdingRate)
	return MoneyQuad{
		Volume:         volume,
		Gross:          gross,
		WithholdingTax: b.WithholdingTax,
		Net:            b.NetOfTax,
	}
}
