package entity

import "time"

// Motivos estándar de ajuste.
const (
	ReasonInitialStock = "stock inicial"
)

// StockAdjustment registro inmutable de auditoría de un cambio de stock.
// Invariante: QuantityAfter = QuantityBefore + QuantityChange y QuantityAfter >= 0.
type StockAdjustment struct {
	ID             string
	MaterialID     string
	QuantityBefore int
	QuantityChange int // con signo
	QuantityAfter  int
	Reason         string
	CreatedAt      time.Time
}
