// Package einvoice integrates with the national e-invoice exchange:
// fetching invoice listings and documents, and extracting structured
// data from the FA(2) XML schema.
package einvoice

import (
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	appaccounting "github.com/farmops/backend/internal/application/accounting"
	"github.com/farmops/backend/internal/domain/accounting"
)

// Ensure Parser implements InvoiceXMLParser
var _ appaccounting.InvoiceXMLParser = (*Parser)(nil)

// Parser extracts structured invoice data from FA(2) XML documents.
// It is deliberately tolerant: a body that is not XML at all yields nil,
// and any missing section simply leaves the corresponding field empty.
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts a ParsedInvoice from the XML body, or nil when the
// body is not a readable invoice document.
func (p *Parser) Parse(body []byte) *accounting.ParsedInvoice {
	if len(body) == 0 {
		return nil
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil
	}
	root := doc.Root()
	if root == nil || root.Tag != "Faktura" {
		return nil
	}

	parsed := &accounting.ParsedInvoice{}

	if fa := root.FindElement("Fa"); fa != nil {
		parsed.Number = elementText(fa, "P_2")
		parsed.IssueDate = parseDate(elementText(fa, "P_1"))
		parsed.GrossAmount = parseAmount(elementText(fa, "P_15"))
		parsed.NetAmount = sumPrefixed(fa, "P_13_")
		parsed.VATAmount = sumPrefixed(fa, "P_14_")
		parsed.Lines = parseLines(fa)
		parsed.Payment = parsePayment(fa)
	}

	parsed.Seller = parseParty(root.FindElement("Podmiot1"))
	parsed.Buyer = parseParty(root.FindElement("Podmiot2"))

	if footer := root.FindElement("Stopka"); footer != nil {
		parsed.FooterText = elementText(footer, "Informacje/StopkaFaktury")
	}

	return parsed
}

func parseParty(el *etree.Element) accounting.ParsedParty {
	if el == nil {
		return accounting.ParsedParty{}
	}
	party := accounting.ParsedParty{
		Name:  elementText(el, "DaneIdentyfikacyjne/Nazwa"),
		TaxID: elementText(el, "DaneIdentyfikacyjne/NIP"),
	}
	if addr := el.FindElement("Adres"); addr != nil {
		parts := []string{
			elementText(addr, "AdresL1"),
			elementText(addr, "AdresL2"),
		}
		party.Address = strings.TrimSpace(strings.Join(parts, " "))
	}
	return party
}

func parseLines(fa *etree.Element) []accounting.ParsedLine {
	rows := fa.FindElements("FaWiersz")
	if len(rows) == 0 {
		return nil
	}
	lines := make([]accounting.ParsedLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, accounting.ParsedLine{
			Name:               elementText(row, "P_7"),
			ClassificationCode: elementText(row, "GTU"),
			Quantity:           parseAmount(elementText(row, "P_8B")),
			UnitPrice:          parseAmount(elementText(row, "P_9A")),
			NetAmount:          parseAmount(elementText(row, "P_11")),
			VATRate:            elementText(row, "P_12"),
		})
	}
	return lines
}

func parsePayment(fa *etree.Element) accounting.ParsedPayment {
	payment := accounting.ParsedPayment{}
	block := fa.FindElement("Platnosc")
	if block == nil {
		return payment
	}
	payment.DueDate = parseDate(elementText(block, "TerminPlatnosci/Termin"))
	payment.AccountNumber = elementText(block, "RachunekBankowy/NrRB")
	return payment
}

// sumPrefixed totals every child element whose tag starts with the
// prefix; the schema splits net and VAT amounts per tax rate
func sumPrefixed(el *etree.Element, prefix string) decimal.Decimal {
	total := decimal.Zero
	for _, child := range el.ChildElements() {
		if strings.HasPrefix(child.Tag, prefix) {
			total = total.Add(parseAmount(child.Text()))
		}
	}
	return total
}

func elementText(el *etree.Element, path string) string {
	found := el.FindElement(path)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(found.Text())
}

func parseAmount(text string) decimal.Decimal {
	if text == "" {
		return decimal.Zero
	}
	// Some issuers use a comma decimal separator
	text = strings.ReplaceAll(text, ",", ".")
	value, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return value
}

func parseDate(text string) *time.Time {
	if text == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", text)
	if err != nil {
		return nil
	}
	return &parsed
}
