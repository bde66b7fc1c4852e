// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/domain/product"
	"github.com/your-org/inventory-backend/internal/domain/sales"
)

var invoiceTmpl = template.Must(template.New("invoice").Parse(invoiceTemplate))

// Service handles PDF generation
type Service struct {
	config *config.Config
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Sale          *sales.Sale
	Product       *product.Product
	UnitPrice     string
	Total         string
	Company       CompanyInfo
}

// CompanyInfo represents company information
type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
	GSTIN   string
}

// InvoiceHTML renders the invoice of a sale as HTML
func (s *Service) InvoiceHTML(sale *sales.Sale, p *product.Product) ([]byte, error) {
	data := InvoiceData{
		InvoiceNumber: sale.InvoiceNumber,
		InvoiceDate:   sale.CreatedAt.Format("January 2, 2006 15:04 MST"),
		Sale:          sale,
		Product:       p,
		UnitPrice:     sale.UnitPrice.StringFixed(2),
		Total:         sale.Total.StringFixed(2),
		Company: CompanyInfo{
			Name:    s.config.Company.Name,
			Address: s.config.Company.Address,
			Phone:   s.config.Company.Phone,
			Email:   s.config.Company.Email,
			GSTIN:   s.config.Company.GSTIN,
		},
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateInvoice renders the invoice of a sale as PDF. It needs the
// wkhtmltopdf binary on PATH.
func (s *Service) GenerateInvoice(sale *sales.Sale, p *product.Product) (*bytes.Buffer, error) {
	html, err := s.InvoiceHTML(sale, p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA5)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Invoice {{.InvoiceNumber}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { border-bottom: 2px solid #eee; padding-bottom: 16px; margin-bottom: 24px; }
        .company-name { font-size: 22px; font-weight: bold; color: #7c2d12; }
        .invoice-title { font-size: 18px; font-weight: bold; margin-top: 12px; }
        table { width: 100%; border-collapse: collapse; margin-top: 16px; }
        th, td { text-align: left; padding: 8px; border-bottom: 1px solid #eee; }
        td.num, th.num { text-align: right; }
        .total td { font-weight: bold; border-top: 2px solid #333; }
        .footer { margin-top: 32px; font-size: 12px; color: #777; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <div class="company-name">{{.Company.Name}}</div>
        {{if .Company.Address}}<div>{{.Company.Address}}</div>{{end}}
        {{if .Company.Phone}}<div>Phone: {{.Company.Phone}}</div>{{end}}
        {{if .Company.Email}}<div>Email: {{.Company.Email}}</div>{{end}}
        {{if .Company.GSTIN}}<div>GSTIN: {{.Company.GSTIN}}</div>{{end}}
        <div class="invoice-title">Tax Invoice {{.InvoiceNumber}}</div>
        <div>Date: {{.InvoiceDate}}</div>
        <div>Payment: {{.Sale.PaymentMode}}</div>
        {{if .Sale.CustomerPhone}}<div>Customer: {{.Sale.CustomerPhone}}</div>{{end}}
    </div>
    <table>
        <thead>
            <tr><th>SKU</th><th>Item</th><th class="num">Qty</th><th class="num">Rate</th><th class="num">Amount</th></tr>
        </thead>
        <tbody>
            <tr>
                <td>{{.Sale.SKU}}</td>
                <td>{{.Product.Name}}{{if .Product.HSNCode}} (HSN {{.Product.HSNCode}}){{end}}</td>
                <td class="num">{{.Sale.Quantity}}</td>
                <td class="num">{{.UnitPrice}}</td>
                <td class="num">{{.Total}}</td>
            </tr>
            <tr class="total"><td colspan="4">Total</td><td class="num">{{.Total}}</td></tr>
        </tbody>
    </table>
    <div class="footer">Thank you for shopping with {{.Company.Name}}</div>
</body>
</html>
`
