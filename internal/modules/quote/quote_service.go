package quote

import (
	"context"
	"fmt"
	"log"

	"convoyage-platform/internal/models"
	"convoyage-platform/internal/modules/pricing"
	emailSvc "convoyage-platform/pkg/email"

	"github.com/shopspring/decimal"
)

// PricingInterface is the slice of the pricing service the quote module
// needs: pricing one vehicle type over a distance.
type PricingInterface interface {
	Resolve(ctx context.Context, vehicleTypeID string, distanceKm float64) (*models.ResolvedPrice, error)
}

// UserDirectoryInterface resolves user IDs to profiles, used for the
// confirmation email recipient.
type UserDirectoryInterface interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// ServiceInterface defines the contract for the quote service.
type ServiceInterface interface {
	CreateQuote(ctx context.Context, clientID string, req models.CreateQuoteRequest) (*models.Quote, error)
	GetQuote(ctx context.Context, quoteID, userID, role string) (*models.Quote, error)
	ListClientQuotes(ctx context.Context, clientID, status string, page, limit int) ([]*models.Quote, int, error)
	ListAllQuotes(ctx context.Context, status string, page, limit int) ([]*models.Quote, int, error)
	DeleteQuote(ctx context.Context, quoteID, clientID string) error
	AcceptQuote(ctx context.Context, quoteID string) (*models.Mission, error)
}

// Service implements the quote business logic.
type Service struct {
	repo            RepositoryInterface
	pricing         PricingInterface
	users           UserDirectoryInterface
	emailer         emailSvc.ServiceInterface
	templateManager *emailSvc.TemplateManager
	clientOrigin    string
}

// NewService creates a new quote service.
func NewService(
	repo RepositoryInterface,
	pricingSvc PricingInterface,
	users UserDirectoryInterface,
	emailer emailSvc.ServiceInterface,
	tm *emailSvc.TemplateManager,
	clientOrigin string,
) *Service {
	return &Service{
		repo:            repo,
		pricing:         pricingSvc,
		users:           users,
		emailer:         emailer,
		templateManager: tm,
		clientOrigin:    clientOrigin,
	}
}

// CreateQuote prices the request and persists the quote. Any pricing
// failure (missing grid, unmatched distance) blocks creation: a quote
// is never stored without a valid price.
func (s *Service) CreateQuote(ctx context.Context, clientID string, req models.CreateQuoteRequest) (*models.Quote, error) {
	if !req.DeliveryAt.After(req.PickupAt) {
		return nil, fmt.Errorf("service.CreateQuote: delivery before pickup: %w", models.ErrValidationFailed)
	}

	totalHT := decimal.Zero
	for _, v := range req.Vehicles {
		price, err := s.pricing.Resolve(ctx, v.VehicleTypeID, req.DistanceKm)
		if err != nil {
			return nil, fmt.Errorf("service.CreateQuote: %w", err)
		}
		totalHT = totalHT.Add(price.PriceHT)
	}

	q := &models.Quote{
		ClientID:        clientID,
		PickupAddress:   req.PickupAddress,
		DeliveryAddress: req.DeliveryAddress,
		DistanceKm:      req.DistanceKm,
		Vehicles:        req.Vehicles,
		TotalHT:         totalHT,
		TotalTTC:        pricing.TTCOf(totalHT),
		PickupAt:        req.PickupAt,
		DeliveryAt:      req.DeliveryAt,
		PickupContact:   req.PickupContact,
		DeliveryContact: req.DeliveryContact,
	}

	created, err := s.repo.Create(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("service.CreateQuote: %w", err)
	}

	s.sendConfirmationEmail(created)
	return created, nil
}

// sendConfirmationEmail notifies the client asynchronously; a failed
// email never fails the quote.
func (s *Service) sendConfirmationEmail(q *models.Quote) {
	if s.emailer == nil || s.templateManager == nil {
		return
	}

	client, err := s.users.FindByID(context.Background(), q.ClientID)
	if err != nil {
		log.Printf("Failed to load client %s for quote confirmation email: %v", q.ClientID, err)
		return
	}

	link := fmt.Sprintf("%s/quotes/%s", s.clientOrigin, q.ID)
	htmlContent, err := s.templateManager.GenerateQuoteConfirmationEmailHTML(emailSvc.TemplateData{
		Name:      client.Name,
		Link:      link,
		Reference: q.QuoteNumber,
		Amount:    q.TotalTTC.StringFixed(2) + " € TTC",
	})
	if err != nil {
		log.Printf("Failed to generate quote confirmation email HTML: %v", err)
		return
	}

	subject := fmt.Sprintf("Votre devis %s", q.QuoteNumber)
	plainText := fmt.Sprintf("Your quote %s has been registered for a total of %s € TTC. View it at %s",
		q.QuoteNumber, q.TotalTTC.StringFixed(2), link)

	go func() {
		if err := s.emailer.SendEmail(context.Background(), client.Email, subject, plainText, htmlContent); err != nil {
			log.Printf("Failed to send quote confirmation email to %s: %v", client.Email, err)
		}
	}()
}

// GetQuote retrieves a single quote; clients only see their own.
func (s *Service) GetQuote(ctx context.Context, quoteID, userID, role string) (*models.Quote, error) {
	q, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("service.GetQuote: %w", err)
	}
	if role != models.RoleAdmin && q.ClientID != userID {
		return nil, models.ErrNotFound // avoid leaking other clients' quotes
	}
	return q, nil
}

// ListClientQuotes retrieves a client's quotes.
func (s *Service) ListClientQuotes(ctx context.Context, clientID, status string, page, limit int) ([]*models.Quote, int, error) {
	quotes, total, err := s.repo.ListByClient(ctx, clientID, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListClientQuotes: %w", err)
	}
	return quotes, total, nil
}

// ListAllQuotes lists every quote in the system (admin).
func (s *Service) ListAllQuotes(ctx context.Context, status string, page, limit int) ([]*models.Quote, int, error) {
	quotes, total, err := s.repo.ListAll(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListAllQuotes: %w", err)
	}
	return quotes, total, nil
}

// DeleteQuote removes a client's quote while it is still pending.
func (s *Service) DeleteQuote(ctx context.Context, quoteID, clientID string) error {
	q, err := s.repo.FindByID(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("service.DeleteQuote: %w", err)
	}
	if q.ClientID != clientID {
		return models.ErrNotFound
	}
	if q.Status != models.QuoteStatusPending {
		return models.ErrQuoteNotPending
	}
	if err := s.repo.DeletePending(ctx, quoteID, clientID); err != nil {
		return fmt.Errorf("service.DeleteQuote: %w", err)
	}
	return nil
}

// AcceptQuote promotes a pending quote into a mission (admin).
func (s *Service) AcceptQuote(ctx context.Context, quoteID string) (*models.Mission, error) {
	mission, err := s.repo.Accept(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("service.AcceptQuote: %w", err)
	}
	return mission, nil
}
