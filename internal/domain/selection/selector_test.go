package selection_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tyrex-b2b-api/internal/domain"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/entity"
	"github.com/jhoicas/tyrex-b2b-api/internal/domain/selection"
)

func candidate(id, owner, price string, qty int) entity.StockCandidate {
	p := decimal.RequireFromString(price)
	return entity.StockCandidate{
		Record: entity.StockRecord{
			ID: id, ProductID: "p1", WarehouseID: "wh-" + owner,
			Quantity: qty, IsActive: true, IsSellable: true, SalePrice: &p,
		},
		WarehouseActive: true,
		OwnerID:         owner,
		OwnerType:       entity.CompanyTypeWholesaler,
	}
}

func TestBest_PrefiereConocidoAunqueSeaMasCaro(t *testing.T) {
	cs := []entity.StockCandidate{
		candidate("s-cheap", "w-other", "100", 50),
		candidate("s-known", "w-known", "120", 10),
	}
	got, err := selection.Best(cs, map[string]bool{"w-known": true}, 5)
	require.NoError(t, err)
	assert.Equal(t, "s-known", got.Record.ID)
}

func TestBest_SinConocidosUsaElMasBarato(t *testing.T) {
	cs := []entity.StockCandidate{
		candidate("s1", "w1", "130", 50),
		candidate("s2", "w2", "100", 10),
		candidate("s3", "w3", "100", 40),
	}
	got, err := selection.Best(cs, nil, 5)
	require.NoError(t, err)
	assert.Equal(t, "s3", got.Record.ID, "a igual precio gana la mayor disponibilidad")
}

func TestBest_ConocidoSinStockCaeAOtros(t *testing.T) {
	cs := []entity.StockCandidate{
		candidate("s-known", "w-known", "90", 2),
		candidate("s-other", "w-other", "100", 20),
	}
	got, err := selection.Best(cs, map[string]bool{"w-known": true}, 5)
	require.NoError(t, err)
	assert.Equal(t, "s-other", got.Record.ID)
}

func TestBest_FiltraNoElegibles(t *testing.T) {
	inactive := candidate("s-inactive", "w1", "10", 100)
	inactive.Record.IsActive = false
	notSellable := candidate("s-notsell", "w1", "10", 100)
	notSellable.Record.IsSellable = false
	closedWh := candidate("s-closed", "w1", "10", 100)
	closedWh.WarehouseActive = false
	retailerOwned := candidate("s-retailer", "w1", "10", 100)
	retailerOwned.OwnerType = entity.CompanyTypeRetailer
	noPrice := candidate("s-noprice", "w1", "10", 100)
	noPrice.Record.SalePrice = nil
	reserved := candidate("s-reserved", "w1", "10", 100)
	reserved.Record.ReservedQuantity = 98

	_, err := selection.Best([]entity.StockCandidate{inactive, notSellable, closedWh, retailerOwned, noPrice, reserved}, nil, 5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	both := candidate("s-both", "w2", "500", 10)
	both.OwnerType = entity.CompanyTypeBoth
	got, err := selection.Best([]entity.StockCandidate{inactive, both}, nil, 5)
	require.NoError(t, err)
	assert.Equal(t, "s-both", got.Record.ID)
}

func TestValidatePinned(t *testing.T) {
	c := candidate("s1", "w1", "100", 10)

	assert.NoError(t, selection.ValidatePinned(&c, "p1", 10, "w1"))
	assert.NoError(t, selection.ValidatePinned(&c, "p1", 3, ""))

	err := selection.ValidatePinned(&c, "p2", 1, "")
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	err = selection.ValidatePinned(&c, "p1", 1, "w2")
	assert.ErrorIs(t, err, domain.ErrInvalidSelection)

	err = selection.ValidatePinned(&c, "p1", 11, "w1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var rej *selection.Rejection
	require.True(t, errors.As(err, &rej))
	assert.NotEmpty(t, rej.Reason)

	assert.ErrorIs(t, selection.ValidatePinned(nil, "p1", 1, ""), domain.ErrInvalidSelection)
}
