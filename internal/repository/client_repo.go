package repository

import (
	"context"

	"github.com/timmy/hirelane/internal/domain"
	"gorm.io/gorm"
)

// ClientRepository handles database operations for clients.
type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) List(ctx context.Context) ([]domain.Client, error) {
	var clients []domain.Client
	if err := r.db.WithContext(ctx).Order("company_name ASC").Find(&clients).Error; err != nil {
		return nil, domain.Internal("ClientRepository.List", "failed to list clients", err)
	}
	return clients, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id uint) (*domain.Client, error) {
	var c domain.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, lookupError(err, "ClientRepository.GetByID", "client", id)
	}
	return &c, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return domain.Internal("ClientRepository.Create", "failed to create client", err)
	}
	return nil
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	if _, err := r.GetByID(ctx, c.ID); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		return domain.Internal("ClientRepository.Update", "failed to update client", err)
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Client{}, id)
	if res.Error != nil {
		return domain.Internal("ClientRepository.Delete", "failed to delete client", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("ClientRepository.Delete", "client", id)
	}
	return nil
}
