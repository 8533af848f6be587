package services

import (
	"context"
	"fmt"
	"strings"

	"DF-DOCGEN/internal/apperrors"
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/models"
	"DF-DOCGEN/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CurrencyInput struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	ExchangeRate float64 `json:"exchange_rate"`
}

func (in CurrencyInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Code, validation.Required, validation.Length(3, 8)),
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.ExchangeRate, validation.Min(0.0)),
	)
}

// CurrencyService runs every call in its own transaction.
type CurrencyService struct {
	db         *gorm.DB
	currencies repository.CurrencyRepository
}

func NewCurrencyService(db *gorm.DB) *CurrencyService {
	return &CurrencyService{
		db:         db,
		currencies: repository.NewCurrencyRepository(db),
	}
}

func (s *CurrencyService) inTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.WithTx(ctx, tx))
	})
}

func (s *CurrencyService) Get(ctx context.Context) ([]models.Currency, error) {
	var currencies []models.Currency
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		var err error
		currencies, err = s.currencies.GetAll(dbc)
		return err
	})
	return currencies, err
}

func (s *CurrencyService) GetByID(ctx context.Context, id string) (*models.Currency, error) {
	var currency *models.Currency
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		var err error
		currency, err = s.currencies.GetByID(dbc, id)
		return err
	})
	return currency, err
}

func (s *CurrencyService) Add(ctx context.Context, in CurrencyInput) (*models.Currency, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	currency := &models.Currency{
		ID:           uuid.New().String(),
		Code:         strings.ToUpper(in.Code),
		Name:         in.Name,
		Symbol:       in.Symbol,
		ExchangeRate: in.ExchangeRate,
	}
	if err := s.inTx(ctx, func(dbc dbctx.Context) error {
		return s.currencies.Add(dbc, currency)
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}
	return currency, nil
}

func (s *CurrencyService) Update(ctx context.Context, id string, in CurrencyInput) (*models.Currency, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err)
	}
	var currency *models.Currency
	err := s.inTx(ctx, func(dbc dbctx.Context) error {
		existing, err := s.currencies.GetByID(dbc, id)
		if err != nil {
			return err
		}
		existing.Code = strings.ToUpper(in.Code)
		existing.Name = in.Name
		existing.Symbol = in.Symbol
		existing.ExchangeRate = in.ExchangeRate
		if err := s.currencies.Update(dbc, existing); err != nil {
			return err
		}
		currency = existing
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}
	return currency, nil
}

func (s *CurrencyService) Delete(ctx context.Context, id string) error {
	if err := s.inTx(ctx, func(dbc dbctx.Context) error {
		return s.currencies.Delete(dbc, id)
	}); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrPersistence, err)
	}
	return nil
}
