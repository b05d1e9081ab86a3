package product

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context, filter *Filter) ([]*Product, error)
	Get(ctx context.Context, id uint) (*Product, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id uint, input *UpdateInput) (*Product, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, filter *Filter) ([]*Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Get(ctx context.Context, id uint) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

func (s *service) Create(ctx context.Context, p *Product) error {
	if p.Name == "" || p.Category == "" {
		return errors.New("name and category are required")
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	return s.repo.Create(ctx, p)
}

func (s *service) Update(ctx context.Context, id uint, input *UpdateInput) (*Product, error) {
	if input.Price != nil && *input.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, ErrInvalidStock
	}
	return s.repo.Update(ctx, id, input)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
