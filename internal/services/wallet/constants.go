package wallet

import "time"

// Reference suffixes and prefixes for ledger rows created by this package
const (
	WithdrawalPrefix = "WDR"
	FundingPrefix    = "FND"
	AdjustmentPrefix = "ADJ"
	RefundSuffix     = "-REFUND"
)

// Stripe event types handled by HandleEvent
const (
	EventIntentSucceeded = "payment_intent.succeeded"
	EventIntentFailed    = "payment_intent.payment_failed"
)

const (
	ProviderStripe = "stripe"
	CacheDuration  = 5 * time.Minute
)
