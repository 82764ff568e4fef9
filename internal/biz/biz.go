package biz

import (
	"github.com/dailycheer/cheer-notifier/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Selection *usecase.SelectionUsecase
	Ledger    *usecase.LedgerUsecase
	Delivery  *usecase.DeliveryUsecase
}
