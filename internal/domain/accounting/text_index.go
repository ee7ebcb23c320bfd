package accounting

import "strings"

// BuildSearchText flattens an invoice and its parsed XML body into a single
// lower-cased blob used as the matching input for assignment rules.
// doc may be nil when the XML body was absent or unparseable.
func BuildSearchText(inv *Invoice, doc *ParsedInvoice) string {
	var b strings.Builder

	write := func(s string) {
		if s == "" {
			return
		}
		b.WriteString(s)
		b.WriteByte(' ')
	}

	write(inv.Number)
	write(inv.SellerName)
	write(inv.SellerTaxID)
	write(inv.BuyerName)
	write(inv.BuyerTaxID)
	write(inv.RelatedInvoiceNumber)
	write(inv.Comment)

	if doc != nil {
		write(doc.Seller.Name)
		write(doc.Seller.Address)
		write(doc.Buyer.Name)
		write(doc.Buyer.Address)
		for _, line := range doc.Lines {
			write(line.Name)
			write(line.ClassificationCode)
		}
		write(doc.FooterText)
	}

	return strings.ToLower(strings.TrimSpace(b.String()))
}
