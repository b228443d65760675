package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailops/internal/core/apperror"
	"retailops/internal/core/types"
)

func TestStore_CanReceiveDistribution(t *testing.T) {
	tests := []struct {
		kind   StoreKind
		status StoreStatus
		want   bool
	}{
		{StoreKindRetail, StoreActive, true},
		{StoreKindRetail, StoreInactive, false},
		{StoreKindWarehouse, StoreActive, false},
	}
	for _, tt := range tests {
		s := &Store{Kind: tt.kind, Status: tt.status}
		assert.Equal(t, tt.want, s.CanReceiveDistribution(), "%s/%s", tt.kind, tt.status)
	}
}

func TestProduct_Validate(t *testing.T) {
	negative := types.MoneyFromInt(-5)
	tests := []struct {
		name  string
		p     Product
		field string
	}{
		{"ok", Product{ProductCode: "A", Name: "A"}, ""},
		{"missing code", Product{ProductCode: "  ", Name: "A"}, "productCode"},
		{"missing name", Product{ProductCode: "A"}, "name"},
		{"negative stock", Product{ProductCode: "A", Name: "A", Stock: -1}, "stock"},
		{"negative purchase price", Product{ProductCode: "A", Name: "A", PurchasePrice: negative}, "purchasePrice"},
		{"negative member price", Product{ProductCode: "A", Name: "A", MemberPrice: &negative}, "memberPrice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				assert.Equal(t, "pcs", tt.p.Unit)
				return
			}
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}
}

func TestCategory_Validate(t *testing.T) {
	c := &Category{Name: "  Snack  "}
	require.NoError(t, c.Validate())
	assert.Equal(t, "Snack", c.Name)

	assert.Error(t, (&Category{Name: strings.Repeat("x", 101)}).Validate())
	assert.Error(t, (&Category{}).Validate())
}

func TestSupplier_Validate(t *testing.T) {
	assert.NoError(t, (&Supplier{Code: "S", Name: "N"}).Validate())
	assert.Error(t, (&Supplier{Name: "N"}).Validate())
	assert.Error(t, (&Supplier{Code: "S"}).Validate())
}
