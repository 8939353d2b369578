// Package receipt lays out the printable tax invoice for a cart.
// Generating a receipt never changes the cart or stock.
package receipt

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/quickkart/marketplace/internal/domain/cart"
	"github.com/quickkart/marketplace/internal/domain/money"
	"github.com/quickkart/marketplace/internal/domain/principal"
)

const (
	placeholderName    = "Customer Name"
	placeholderAddress = "Customer Address"
)

// Seller is the fixed issuer block printed on every invoice.
type Seller struct {
	Name    string
	Address string
	Pincode string
	GSTIN   string
}

var DefaultSeller = Seller{
	Name:    "Quickkart Private Limited",
	Address: "MEC Men's Hostel, Karimakad Road, Thrikkakara (po), Ernakulam",
	Pincode: "682021",
	GSTIN:   "29AACCF0683K1ZD",
}

// Meta identifies one generated receipt.
type Meta struct {
	OrderID   string
	OrderDate time.Time
}

// NewMeta picks a random 8-digit order id. The id is not persisted or checked for uniqueness.
func NewMeta(now time.Time) Meta {
	return Meta{
		OrderID:   strconv.Itoa(10_000_000 + rand.IntN(90_000_000)),
		OrderDate: now,
	}
}

type Item struct {
	Description string      `json:"description"`
	Qty         int         `json:"qty"`
	Gross       money.Cents `json:"gross"`
	Discount    money.Cents `json:"discount"`
	Total       money.Cents `json:"total"`
}

type Receipt struct {
	Seller         Seller      `json:"-"`
	InvoiceNumber  string      `json:"invoiceNumber"`
	OrderID        string      `json:"orderId"`
	OrderDate      time.Time   `json:"orderDate"`
	BillingName    string      `json:"billingName"`
	BillingAddress string      `json:"billingAddress"`
	Items          []Item      `json:"items"`
	ItemCount      int         `json:"itemCount"`
	GrandTotal     money.Cents `json:"grandTotal"`
}

// Build is a pure function of its inputs. A nil profile prints placeholders.
// Every line counts as quantity 1 with no discount.
func Build(meta Meta, profile *principal.CustomerProfile, lines []cart.Line) Receipt {
	r := Receipt{
		Seller:         DefaultSeller,
		InvoiceNumber:  meta.OrderID,
		OrderID:        meta.OrderID,
		OrderDate:      meta.OrderDate,
		BillingName:    placeholderName,
		BillingAddress: placeholderAddress,
		Items:          make([]Item, 0, len(lines)),
	}

	if profile != nil {
		if profile.Name != "" {
			r.BillingName = profile.Name
		}
		if profile.Address != "" {
			r.BillingAddress = profile.Address
		}
	}

	for _, l := range lines {
		r.Items = append(r.Items, Item{
			Description: l.ProductName,
			Qty:         1,
			Gross:       l.Price,
			Total:       l.Price,
		})
	}

	r.ItemCount = len(r.Items)
	r.GrandTotal = cart.Total(lines)

	return r
}
