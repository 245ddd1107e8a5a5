package ledger

import "expvar"

var (
	settlementsTotal          = expvar.NewInt("ledger_settlements_total")
	settlementRejectionsTotal = expvar.NewInt("ledger_settlement_rejections_total")
	clampedSettlementsTotal   = expvar.NewInt("ledger_clamped_settlements_total")
	bonusClaimsTotal          = expvar.NewInt("ledger_bonus_claims_total")
	bonusRejectionsTotal      = expvar.NewInt("ledger_bonus_rejections_total")
	transfersTotal            = expvar.NewInt("ledger_transfers_total")
	transferRejectionsTotal   = expvar.NewInt("ledger_transfer_rejections_total")
	storageErrorsTotal        = expvar.NewInt("ledger_storage_errors_total")
)
