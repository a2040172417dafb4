package infra

import (
	"bytes"
	"testing"

	"github.com/kentonium3/bake-tracker-sub002/internal/dto"
	"github.com/kentonium3/bake-tracker-sub002/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBOMSheet(t *testing.T) {
	packing := "Layer cookies with parchment; tie ribbon last."
	sheet := &dto.BOMSheet{
		Assembly: dto.AssemblyResponse{
			ID: 1, Slug: "creme-brulee-box", DisplayName: "Crème Brûlée Box",
			AssemblyType: model.AssemblyGiftBox, PackagingInstructions: &packing,
		},
		Quantity: 2,
		Components: []dto.FlattenedComponent{
			{ComponentType: model.ComponentFinishedUnit, ComponentID: 1, DisplayName: "Cookie",
				TotalQuantity: decimal.NewFromInt(8), UnitCost: decimal.RequireFromString("2.00"), TotalCost: decimal.RequireFromString("16.00")},
			{ComponentType: model.ComponentMaterialUnit, ComponentID: 1, DisplayName: "A very long ribbon name that will not fit in the column at all",
				TotalQuantity: decimal.NewFromInt(2), UnitCost: decimal.RequireFromString("3.50"), TotalCost: decimal.RequireFromString("7.00")},
		},
		TotalCost: decimal.RequireFromString("23.00"),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBOMSheet(&buf, sheet))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	got := truncate("abcdefghij", 5)
	assert.LessOrEqual(t, len([]rune(got)), 5)
}
