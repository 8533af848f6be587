package repository

import (
	"DF-DOCGEN/internal/dbctx"
	"DF-DOCGEN/internal/models"

	"gorm.io/gorm"
)

type currencyRepository struct {
	db *gorm.DB
}

func NewCurrencyRepository(db *gorm.DB) CurrencyRepository {
	return &currencyRepository{db: db}
}

func (r *currencyRepository) GetAll(dbc dbctx.Context) ([]models.Currency, error) {
	currencies := []models.Currency{}
	err := dbc.DB(r.db).Order("code ASC").Find(&currencies).Error
	return currencies, err
}

func (r *currencyRepository) GetByID(dbc dbctx.Context, id string) (*models.Currency, error) {
	var currency models.Currency
	if err := dbc.DB(r.db).First(&currency, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "currency", id)
	}
	return &currency, nil
}

func (r *currencyRepository) Add(dbc dbctx.Context, currency *models.Currency) error {
	return dbc.DB(r.db).Create(currency).Error
}

func (r *currencyRepository) Update(dbc dbctx.Context, currency *models.Currency) error {
	result := dbc.DB(r.db).Model(&models.Currency{ID: currency.ID}).
		Select("code", "name", "symbol", "exchange_rate", "updated_at").
		Updates(currency)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "currency", currency.ID)
	}
	return nil
}

func (r *currencyRepository) Delete(dbc dbctx.Context, id string) error {
	result := dbc.DB(r.db).Delete(&models.Currency{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "currency", id)
	}
	return nil
}
