package receipt

import (
	"context"
	"errors"
	"time"

	"github.com/quickkart/marketplace/internal/domain/cart"
	"github.com/quickkart/marketplace/internal/domain/principal"
	"github.com/quickkart/marketplace/internal/observability"
)

type ProfileReader interface {
	Profile(ctx context.Context, principalID string) (principal.CustomerProfile, error)
}

type LineReader interface {
	List(ctx context.Context, customerID string) ([]cart.Line, error)
}

// Generator reads the cart and profile and renders them. It writes nothing.
type Generator struct {
	profiles ProfileReader
	lines    LineReader
	prom     *observability.Prom
	now      func() time.Time
}

func NewGenerator(profiles ProfileReader, lines LineReader, prom *observability.Prom) *Generator {
	return &Generator{profiles: profiles, lines: lines, prom: prom, now: time.Now}
}

func (g *Generator) Generate(ctx context.Context, customerID string) (Receipt, []byte, error) {
	var profile *principal.CustomerProfile

	cp, err := g.profiles.Profile(ctx, customerID)
	switch {
	case err == nil:
		profile = &cp
	case errors.Is(err, principal.ErrProfileNotFound):
		// placeholders
	default:
		return Receipt{}, nil, err
	}

	lines, err := g.lines.List(ctx, customerID)
	if err != nil {
		return Receipt{}, nil, err
	}

	r := Build(NewMeta(g.now()), profile, lines)

	doc, err := Render(r)
	if err != nil {
		return Receipt{}, nil, err
	}

	g.prom.IncReceipt()
	return r, doc, nil
}
