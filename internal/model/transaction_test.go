package model_test

import (
	"errors"
	"testing"

	"go-inventory-core/internal/model"
)

func TestApplyTrType(t *testing.T) {
	tests := []struct {
		name      string
		trTypeID  int
		beforeQty int
		trQty     int
		want      int
		wantErr   error
	}{
		{name: "buy adds", trTypeID: model.TrTypeIDs[model.TrTypeBuy], beforeQty: 10, trQty: 3, want: 13},
		{name: "adjustment plus adds", trTypeID: model.TrTypeIDs[model.TrTypeAdjustmentPlus], beforeQty: 0, trQty: 5, want: 5},
		{name: "sell subtracts", trTypeID: model.TrTypeIDs[model.TrTypeSell], beforeQty: 10, trQty: 4, want: 6},
		{name: "adjustment minus subtracts", trTypeID: model.TrTypeIDs[model.TrTypeAdjustmentMinus], beforeQty: 4, trQty: 4, want: 0},
		{name: "sell below zero", trTypeID: model.TrTypeIDs[model.TrTypeSell], beforeQty: 3, trQty: 4, wantErr: model.ErrInsufficientQty},
		{name: "zero qty", trTypeID: model.TrTypeIDs[model.TrTypeBuy], beforeQty: 10, trQty: 0, wantErr: model.ErrInvalidTrQty},
		{name: "negative qty", trTypeID: model.TrTypeIDs[model.TrTypeSell], beforeQty: 10, trQty: -1, wantErr: model.ErrInvalidTrQty},
		{name: "unknown type", trTypeID: 99, beforeQty: 10, trQty: 1, wantErr: model.ErrInvalidTrType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.ApplyTrType(tt.trTypeID, tt.beforeQty, tt.trQty)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyTrType: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected after qty %d, got %d", tt.want, got)
			}
		})
	}
}

func TestTransactionEqual(t *testing.T) {
	a := model.Transaction{TrID: 1, UserID: 1, SkuID: 2, TrTypeID: 1, TrQty: 5, BeforeQty: 0, AfterQty: 5}
	b := a
	if !a.Equal(b) {
		t.Error("expected identical transactions to be equal")
	}
	b.TrQty = 6
	if a.Equal(b) {
		t.Error("expected differing transactions to be unequal")
	}
}
