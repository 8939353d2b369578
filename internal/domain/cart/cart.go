package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quickkart/marketplace/internal/domain/money"
	"github.com/quickkart/marketplace/internal/domain/product"
)

var ErrProductUnavailable = errors.New("product is not available")

// Line is a snapshot of a product taken when it was added to a cart.
// Later price or image changes on the product are not reflected here.
type Line struct {
	ID            string      `json:"id"`
	CustomerID    string      `json:"customerId"`
	CustomerEmail string      `json:"customerEmail"`
	ProductID     *string     `json:"productId,omitempty"` // nil once the product is deleted
	SourceID      string      `json:"-"`                   // product id at snapshot time, kept after delete
	ProductName   string      `json:"productName"`
	StoreName     string      `json:"storeName"`
	Price         money.Cents `json:"price"`
	ImageRef      string      `json:"imageRef"`
	CreatedAt     time.Time   `json:"createdAt"`
}

type Customer struct {
	ID    string
	Email string
}

type State string

const (
	StateEmpty     State = "empty"
	StatePopulated State = "populated"
)

type Summary struct {
	State State       `json:"state"`
	Lines []Line      `json:"lines"`
	Count int         `json:"count"`
	Total money.Cents `json:"total"`
}

type ToggleRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
}

type ToggleResult struct {
	InCart bool  `json:"inCart"`
	Line   *Line `json:"line,omitempty"`
}

// NewLine snapshots the product fields a cart needs.
func NewLine(c Customer, p product.Product) Line {
	pid := p.ID

	return Line{
		ID:            uuid.NewString(),
		CustomerID:    c.ID,
		CustomerEmail: c.Email,
		ProductID:     &pid,
		SourceID:      pid,
		ProductName:   p.Name,
		StoreName:     p.StoreName,
		Price:         p.Price,
		ImageRef:      p.ImageRef,
		CreatedAt:     time.Now().UTC(),
	}
}

// Total is the plain sum of line prices; no tax or discount applies.
func Total(lines []Line) money.Cents {
	var total money.Cents
	for _, l := range lines {
		total += l.Price
	}
	return total
}

func Summarize(lines []Line) Summary {
	if lines == nil {
		lines = []Line{}
	}

	state := StatePopulated
	if len(lines) == 0 {
		state = StateEmpty
	}

	return Summary{
		State: state,
		Lines: lines,
		Count: len(lines),
		Total: Total(lines),
	}
}
