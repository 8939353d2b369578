package receipt

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quickkart/marketplace/internal/domain/cart"
	"github.com/quickkart/marketplace/internal/domain/money"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(name string, cents int64) cart.Line {
	return cart.Line{ProductName: name, Price: money.Cents(cents)}
}

var fixedMeta = Meta{OrderID: "12345678", OrderDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)}

func TestBuildItemsAndTotals(t *testing.T) {
	profile := &principal.CustomerProfile{Name: "Asha", Address: "12 Market Road"}
	lines := []cart.Line{line("Tea", 999), line("Pot", 2501)}

	r := Build(fixedMeta, profile, lines)

	assert.Equal(t, "Asha", r.BillingName)
	assert.Equal(t, "12 Market Road", r.BillingAddress)
	assert.Equal(t, 2, r.ItemCount)
	assert.Equal(t, money.Cents(3500), r.GrandTotal)
	require.Len(t, r.Items, 2)
	assert.Equal(t, Item{Description: "Tea", Qty: 1, Gross: 999, Discount: 0, Total: 999}, r.Items[0])

	// same inputs, same line items and totals
	again := Build(fixedMeta, profile, lines)
	assert.Equal(t, r, again)
}

func TestBuildEmptyCartAndMissingProfile(t *testing.T) {
	r := Build(fixedMeta, nil, nil)

	assert.Equal(t, placeholderName, r.BillingName)
	assert.Equal(t, placeholderAddress, r.BillingAddress)
	assert.Empty(t, r.Items)
	assert.Equal(t, money.Cents(0), r.GrandTotal)
}

func TestNewMetaOrderIDHasEightDigits(t *testing.T) {
	for i := 0; i < 100; i++ {
		m := NewMeta(time.Now())
		assert.Len(t, m.OrderID, 8)
		assert.NotEqual(t, byte('0'), m.OrderID[0])
	}
}

func TestRenderProducesPDF(t *testing.T) {
	lines := make([]cart.Line, 0, 60)
	for i := 0; i < 60; i++ {
		lines = append(lines, line("Item with a fairly long descriptive name that wraps", 100))
	}

	for _, tc := range []struct {
		name  string
		lines []cart.Line
	}{
		{"empty", nil},
		{"multi page", lines},
	} {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Render(Build(fixedMeta, nil, tc.lines))
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
		})
	}
}

type stubProfiles struct {
	profile principal.CustomerProfile
	err     error
}

func (s stubProfiles) Profile(context.Context, string) (principal.CustomerProfile, error) {
	return s.profile, s.err
}

type stubLines []cart.Line

func (s stubLines) List(context.Context, string) ([]cart.Line, error) {
	return s, nil
}

func TestGeneratorUsesPlaceholdersWithoutProfile(t *testing.T) {
	g := NewGenerator(stubProfiles{err: principal.ErrProfileNotFound}, stubLines{line("Tea", 100)}, nil)

	r, doc, err := g.Generate(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, placeholderName, r.BillingName)
	assert.NotEmpty(t, doc)
}

func TestGeneratorPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("db down")
	g := NewGenerator(stubProfiles{err: boom}, stubLines{}, nil)

	_, _, err := g.Generate(context.Background(), "c1")
	assert.ErrorIs(t, err, boom)
}
