package service

import (
	"context"
	"strings"

	"github.com/timmy/hirelane/internal/domain"
	"github.com/timmy/hirelane/internal/logger"
)

// ClientStore is the persistence contract for clients.
type ClientStore interface {
	ClientLookup
	List(ctx context.Context) ([]domain.Client, error)
	Create(ctx context.Context, c *domain.Client) error
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id uint) error
}

// ClientService manages hiring clients.
type ClientService struct {
	store  ClientStore
	logger *logger.Logger
}

func NewClientService(store ClientStore, log *logger.Logger) *ClientService {
	return &ClientService{store: store, logger: log}
}

func (s *ClientService) List(ctx context.Context) ([]domain.Client, error) {
	return s.store.List(ctx)
}

func (s *ClientService) Get(ctx context.Context, id uint) (*domain.Client, error) {
	return s.store.GetByID(ctx, id)
}

func (s *ClientService) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	if err := prepareClient(c); err != nil {
		return nil, err
	}
	c.ID = 0
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.FromContextOr(ctx, s.logger).WithField("client_id", c.ID).Info("Client created")
	return c, nil
}

func (s *ClientService) Update(ctx context.Context, id uint, c *domain.Client) (*domain.Client, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := prepareClient(c); err != nil {
		return nil, err
	}
	c.ID = existing.ID
	c.CreatedAt = existing.CreatedAt
	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClientService) Delete(ctx context.Context, id uint) error {
	return s.store.Delete(ctx, id)
}

func prepareClient(c *domain.Client) error {
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	c.ContactPerson = strings.TrimSpace(c.ContactPerson)
	c.Email = strings.TrimSpace(c.Email)
	c.RelationshipStatus = strings.TrimSpace(c.RelationshipStatus)

	verr := &domain.ValidationError{}
	if c.CompanyName == "" {
		verr.Add("company_name", "company name is required")
	}
	if c.Email != "" && !looksLikeEmail(c.Email) {
		verr.Add("email", "email address is invalid")
	}
	return verr.OrNil()
}
