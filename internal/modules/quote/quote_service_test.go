package quote

import (
	"context"
	"fmt"
	"testing"
	"time"

	"convoyage-platform/internal/models"
	"convoyage-platform/internal/modules/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuoteRepo struct {
	quotes      map[string]*models.Quote
	createCalls int
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{quotes: make(map[string]*models.Quote)}
}

func (r *fakeQuoteRepo) Create(ctx context.Context, q *models.Quote) (*models.Quote, error) {
	r.createCalls++
	stored := *q
	stored.ID = uuid.NewString()
	stored.QuoteNumber = fmt.Sprintf("DEV-%06d", len(r.quotes)+1)
	stored.Status = models.QuoteStatusPending
	stored.CreatedAt = time.Now()
	r.quotes[stored.ID] = &stored
	return &stored, nil
}

func (r *fakeQuoteRepo) FindByID(ctx context.Context, quoteID string) (*models.Quote, error) {
	q, ok := r.quotes[quoteID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return q, nil
}

func (r *fakeQuoteRepo) ListByClient(ctx context.Context, clientID, status string, page, limit int) ([]*models.Quote, int, error) {
	var out []*models.Quote
	for _, q := range r.quotes {
		if q.ClientID == clientID && (status == "" || q.Status == status) {
			out = append(out, q)
		}
	}
	return out, len(out), nil
}

func (r *fakeQuoteRepo) ListAll(ctx context.Context, status string, page, limit int) ([]*models.Quote, int, error) {
	var out []*models.Quote
	for _, q := range r.quotes {
		if status == "" || q.Status == status {
			out = append(out, q)
		}
	}
	return out, len(out), nil
}

func (r *fakeQuoteRepo) DeletePending(ctx context.Context, quoteID, clientID string) error {
	q, ok := r.quotes[quoteID]
	if !ok || q.ClientID != clientID || q.Status != models.QuoteStatusPending {
		return models.ErrNotFound
	}
	delete(r.quotes, quoteID)
	return nil
}

func (r *fakeQuoteRepo) Accept(ctx context.Context, quoteID string) (*models.Mission, error) {
	q, ok := r.quotes[quoteID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if q.Status != models.QuoteStatusPending {
		return nil, models.ErrQuoteNotPending
	}
	q.Status = models.QuoteStatusAccepted
	return &models.Mission{
		ID:          uuid.NewString(),
		QuoteID:     q.ID,
		QuoteNumber: q.QuoteNumber,
		ClientID:    q.ClientID,
		Status:      models.MissionStatusPending,
		TotalHT:     q.TotalHT,
		TotalTTC:    q.TotalTTC,
	}, nil
}

// fakePricing prices every vehicle type at a fixed HT amount.
type fakePricing struct {
	prices map[string]string
}

func (p *fakePricing) Resolve(ctx context.Context, vehicleTypeID string, distanceKm float64) (*models.ResolvedPrice, error) {
	raw, ok := p.prices[vehicleTypeID]
	if !ok {
		return nil, models.ErrNoGridForVehicle
	}
	ht := decimal.RequireFromString(raw)
	return &models.ResolvedPrice{
		VehicleTypeID: vehicleTypeID,
		PriceHT:       ht,
		PriceTTC:      pricing.TTCOf(ht),
	}, nil
}

func validQuoteRequest(vehicleTypes ...string) models.CreateQuoteRequest {
	var vehicles []models.QuoteVehicle
	for _, vt := range vehicleTypes {
		vehicles = append(vehicles, models.QuoteVehicle{VehicleTypeID: vt})
	}
	pickup := time.Now().Add(48 * time.Hour)
	return models.CreateQuoteRequest{
		PickupAddress:   "12 rue de la Gare, 69001 Lyon",
		DeliveryAddress: "4 avenue du Port, 13002 Marseille",
		DistanceKm:      315,
		Vehicles:        vehicles,
		PickupAt:        pickup,
		DeliveryAt:      pickup.Add(8 * time.Hour),
		PickupContact:   models.Contact{Name: "Jean Dupont", Phone: "0612345678"},
		DeliveryContact: models.Contact{Name: "Marie Curie", Phone: "0698765432"},
	}
}

func newQuoteService(repo RepositoryInterface, p PricingInterface) *Service {
	return NewService(repo, p, nil, nil, nil, "https://app.example.test")
}

func TestCreateQuoteSumsVehiclePrices(t *testing.T) {
	repo := newFakeQuoteRepo()
	svc := newQuoteService(repo, &fakePricing{prices: map[string]string{
		"citadine": "240.00",
		"suv":      "310.50",
	}})

	q, err := svc.CreateQuote(context.Background(), "client-1", validQuoteRequest("citadine", "suv"))
	require.NoError(t, err)

	assert.Equal(t, "550.50", q.TotalHT.StringFixed(2))
	assert.Equal(t, "660.60", q.TotalTTC.StringFixed(2))
	assert.Equal(t, models.QuoteStatusPending, q.Status)
	assert.Regexp(t, `^DEV-\d{6}$`, q.QuoteNumber)
}

func TestCreateQuoteTTCInvariant(t *testing.T) {
	repo := newFakeQuoteRepo()
	svc := newQuoteService(repo, &fakePricing{prices: map[string]string{"citadine": "33.33"}})

	q, err := svc.CreateQuote(context.Background(), "client-1", validQuoteRequest("citadine", "citadine", "citadine"))
	require.NoError(t, err)

	// TTC is computed from the summed HT, rounded once.
	want := q.TotalHT.Mul(decimal.RequireFromString("1.20")).Round(2)
	assert.True(t, want.Equal(q.TotalTTC), "TTC %s for HT %s", q.TotalTTC, q.TotalHT)
}

func TestCreateQuoteBlockedByPricingError(t *testing.T) {
	repo := newFakeQuoteRepo()
	svc := newQuoteService(repo, &fakePricing{prices: map[string]string{}})

	_, err := svc.CreateQuote(context.Background(), "client-1", validQuoteRequest("citadine"))
	assert.ErrorIs(t, err, models.ErrNoGridForVehicle)
	assert.Zero(t, repo.createCalls, "nothing may be persisted when pricing fails")
}

func TestCreateQuoteRejectsDeliveryBeforePickup(t *testing.T) {
	repo := newFakeQuoteRepo()
	svc := newQuoteService(repo, &fakePricing{prices: map[string]string{"citadine": "90.00"}})

	req := validQuoteRequest("citadine")
	req.DeliveryAt = req.PickupAt.Add(-time.Hour)

	_, err := svc.CreateQuote(context.Background(), "client-1", req)
	assert.ErrorIs(t, err, models.ErrValidationFailed)
	assert.Zero(t, repo.createCalls)
}

func TestGetQuoteOwnership(t *testing.T) {
	repo := newFakeQuoteRepo()
	svc := newQuoteService(repo, &fakePricing{prices: map[string]string{"citadine": "90.00"}})
	ctx := context.Background()

	created, err := svc.CreateQuote(ctx, "client-1", validQuoteRequest("citadine"))
	require.NoError(t, err)

	_, err = svc.GetQuote(ctx, created.ID, "client-2", models.RoleClient)
	assert.ErrorIs(t, err, models.ErrNotFound)

	q, err := svc.GetQuote(ctx, created.ID, "someone-else", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, created.ID, q.ID)
}

func TestDeleteQuoteOnlyWhilePending(t *testing.T) {
	repo := newFakeQuoteRepo()
	svc := newQuoteService(repo, &fakePricing{prices: map[string]string{"citadine": "90.00"}})
	ctx := context.Background()

	created, err := svc.CreateQuote(ctx, "client-1", validQuoteRequest("citadine"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteQuote(ctx, created.ID, "client-2"), models.ErrNotFound)

	_, err = svc.AcceptQuote(ctx, created.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteQuote(ctx, created.ID, "client-1"), models.ErrQuoteNotPending)
}

func TestDeleteQuote(t *testing.T) {
	repo := newFakeQuoteRepo()
	svc := newQuoteService(repo, &fakePricing{prices: map[string]string{"citadine": "90.00"}})
	ctx := context.Background()

	created, err := svc.CreateQuote(ctx, "client-1", validQuoteRequest("citadine"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteQuote(ctx, created.ID, "client-1"))
	_, err = svc.GetQuote(ctx, created.ID, "client-1", models.RoleClient)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAcceptQuote(t *testing.T) {
	repo := newFakeQuoteRepo()
	svc := newQuoteService(repo, &fakePricing{prices: map[string]string{"citadine": "90.00"}})
	ctx := context.Background()

	created, err := svc.CreateQuote(ctx, "client-1", validQuoteRequest("citadine"))
	require.NoError(t, err)

	mission, err := svc.AcceptQuote(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, mission.QuoteID)
	assert.Equal(t, models.MissionStatusPending, mission.Status)

	_, err = svc.AcceptQuote(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrQuoteNotPending)
}
