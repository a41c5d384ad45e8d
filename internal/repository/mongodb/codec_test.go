package mongodb

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/Xebarter/Leap-sub002/internal/domain/models"
)

func TestRegistry_StoresMoneyAsDecimal128(t *testing.T) {
	reg := newRegistry()
	rec := models.OccupancyRecord{
		ID:          "occ-1",
		PropertyID:  "unit-1",
		StartDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		MonthsPaid:  2,
		MonthlyRate: decimal.RequireFromString("450000.50"),
		AmountPaid:  decimal.RequireFromString("901000.00"),
		Status:      models.OccupancyExtended,
		History: []models.OccupancyEvent{
			{Kind: models.OccupancyEventExtended, Months: 1, Amount: decimal.RequireFromString("450000.50")},
		},
	}

	raw, err := bson.MarshalWithRegistry(reg, rec)
	require.NoError(t, err)
	assert.Equal(t, bsontype.Decimal128, bson.Raw(raw).Lookup("monthly_rate").Type)
	assert.Equal(t, bsontype.Decimal128, bson.Raw(raw).Lookup("amount_paid").Type)

	var got models.OccupancyRecord
	require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &got))
	assert.True(t, got.MonthlyRate.Equal(rec.MonthlyRate), got.MonthlyRate.String())
	assert.True(t, got.AmountPaid.Equal(rec.AmountPaid), got.AmountPaid.String())
	require.Len(t, got.History, 1)
	assert.True(t, got.History[0].Amount.Equal(rec.History[0].Amount))
}

func TestRegistry_DecodesLegacyNumbers(t *testing.T) {
	reg := newRegistry()
	raw, err := bson.Marshal(bson.M{"_id": "occ-2", "monthly_rate": int64(300000), "amount_paid": 12.5})
	require.NoError(t, err)

	var got models.OccupancyRecord
	require.NoError(t, bson.UnmarshalWithRegistry(reg, raw, &got))
	assert.True(t, got.MonthlyRate.Equal(decimal.NewFromInt(300000)))
	assert.True(t, got.AmountPaid.Equal(decimal.RequireFromString("12.5")))
}
