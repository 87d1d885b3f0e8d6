package checkout

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/gaprints/prints-backend/pkg/config"
	"github.com/gaprints/prints-backend/pkg/money"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const placedAtLayout = "02/01/2006, 15:04"

// Email is one rendered notification.
type Email struct {
	Subject string
	HTML    string
	Text    string
}

// Renderer builds the merchant and customer notifications from a single
// template pair.
type Renderer struct {
	brand    config.BrandConfig
	money    *money.Formatter
	location *time.Location
	html     *htmltemplate.Template
	text     *texttemplate.Template
}

// NewRenderer parses the embedded templates. A nil location renders
// timestamps in local time.
func NewRenderer(brand config.BrandConfig, formatter *money.Formatter, location *time.Location) (*Renderer, error) {
	if formatter == nil {
		formatter = money.Default()
	}
	if location == nil {
		location = time.Local
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/order.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/order.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse text template: %w", err)
	}
	return &Renderer{brand: brand, money: formatter, location: location, html: html, text: text}, nil
}

type lineView struct {
	Title     string
	Size      string
	Qty       int
	Price     string
	LineTotal string
	ImageURL  string
}

type orderView struct {
	Brand     config.BrandConfig
	Heading   string
	HTMLIntro string
	TextIntro string
	OrderID   string
	PlacedAt  string
	Customer  Customer
	Lines     []lineView
	Subtotal  string
	Shipping  string
	Total     string
}

// Render produces the notification for the merchant, or the confirmation for
// the customer when forCustomer is set.
func (r *Renderer) Render(order *Order, forCustomer bool) (Email, error) {
	view := r.view(order, forCustomer)

	var htmlBuf, textBuf bytes.Buffer
	if err := r.html.Execute(&htmlBuf, view); err != nil {
		return Email{}, fmt.Errorf("render html body: %w", err)
	}
	if err := r.text.Execute(&textBuf, view); err != nil {
		return Email{}, fmt.Errorf("render text body: %w", err)
	}

	subject := fmt.Sprintf("🖼️ Νέα Παραγγελία — %s", order.ID)
	if forCustomer {
		subject = fmt.Sprintf("Η παραγγελία σας — %s (%s)", r.brand.Name, order.ID)
	}
	return Email{Subject: subject, HTML: htmlBuf.String(), Text: textBuf.String()}, nil
}

func (r *Renderer) view(order *Order, forCustomer bool) orderView {
	name := order.Customer.FullName
	v := orderView{
		Brand:     r.brand,
		Heading:   "Νέα Παραγγελία",
		HTMLIntro: fmt.Sprintf("Λάβατε νέα παραγγελία από τον/την %s.", name),
		TextIntro: fmt.Sprintf("Νέα παραγγελία από %s.", name),
		OrderID:   order.ID,
		PlacedAt:  order.PlacedAt.In(r.location).Format(placedAtLayout),
		Customer:  order.Customer,
		Lines:     make([]lineView, 0, order.Items.Len()),
		Subtotal:  r.money.Format(order.Totals.Subtotal),
		Shipping:  r.money.Format(order.Totals.Shipping),
		Total:     r.money.Format(order.Totals.Total),
	}
	if forCustomer {
		v.Heading = "Επιβεβαίωση Παραγγελίας"
		v.HTMLIntro = fmt.Sprintf("Γεια σου %s, ευχαριστούμε για την παραγγελία σου. Θα επικοινωνήσουμε άμεσα για τα επόμενα βήματα.", name)
		v.TextIntro = fmt.Sprintf("Γεια σου %s, ευχαριστούμε για την παραγγελία σου.", name)
	}
	for _, item := range order.Items.Items() {
		v.Lines = append(v.Lines, lineView{
			Title:     item.Title,
			Size:      item.Size,
			Qty:       item.Qty,
			Price:     r.money.Format(decimal.NewFromFloat(item.Price)),
			LineTotal: r.money.Format(item.LineTotal()),
			ImageURL:  item.ImageURL,
		})
	}
	return v
}
