package export

import (
	"freightsnap/internal/domain"
)

// layoutField maps one target column of an accounting import template to
// candidate source columns; the first candidate present in a row wins.
type layoutField struct {
	header  string
	sources []string
}

// layout is an ordered accounting-software column layout.
type layout []layoutField

func (l layout) headers() []string {
	out := make([]string, len(l))
	for i, f := range l {
		out[i] = f.header
	}
	return out
}

// apply remaps document rows into the layout's column order. A row cell
// is the first non-empty value among the field's source columns.
func (l layout) apply(doc *domain.ExtractedDocument) [][]string {
	rows := make([][]string, len(doc.Rows))
	for i, row := range doc.Rows {
		out := make([]string, len(l))
		for j, field := range l {
			for _, src := range field.sources {
				if v := row[src]; v != "" {
					out[j] = v
					break
				}
			}
		}
		rows[i] = out
	}
	return rows
}

// quickBooksLayout follows the QuickBooks Online invoice import template.
var quickBooksLayout = layout{
	{"*InvoiceNo", []string{"invoice_number", "invoice_no", "invoice", "reference", "pro_number", "tracking_number", "tracking"}},
	{"*Customer", []string{"customer", "customer_name", "consignee", "bill_to", "shipper", "carrier"}},
	{"*InvoiceDate", []string{"invoice_date", "date", "ship_date", "pickup_date"}},
	{"*DueDate", []string{"due_date", "invoice_date", "date"}},
	{"Item(Product/Service)", []string{"item", "service", "commodity", "description"}},
	{"ItemDescription", []string{"description", "commodity", "notes", "item"}},
	{"ItemQuantity", []string{"quantity", "qty", "pieces", "pallets", "units"}},
	{"ItemRate", []string{"rate", "unit_price", "price", "linehaul_rate"}},
	{"*ItemAmount", []string{"amount", "total", "total_charges", "charge", "cost", "rate"}},
}

// xeroLayout follows the Xero sales invoice CSV template.
var xeroLayout = layout{
	{"*ContactName", []string{"customer", "customer_name", "consignee", "bill_to", "shipper", "carrier"}},
	{"*InvoiceNumber", []string{"invoice_number", "invoice_no", "invoice", "reference", "pro_number", "tracking_number", "tracking"}},
	{"*InvoiceDate", []string{"invoice_date", "date", "ship_date", "pickup_date"}},
	{"*DueDate", []string{"due_date", "invoice_date", "date"}},
	{"Description", []string{"description", "commodity", "notes", "item"}},
	{"*Quantity", []string{"quantity", "qty", "pieces", "pallets", "units"}},
	{"*UnitAmount", []string{"amount", "total", "total_charges", "rate", "unit_price", "price"}},
	{"*AccountCode", nil},
	{"*TaxType", nil},
}

func layoutFor(format domain.ExportFormat) layout {
	if format == domain.ExportFormatXero {
		return xeroLayout
	}
	return quickBooksLayout
}
