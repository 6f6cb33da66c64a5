package common

const (
	// Sentinel strings returned by the advisory context providers.
	MarketContextUnavailable = "data unavailable"
	TechnicalNotEnoughData   = "not enough data"

	// GeneralSymbol is returned by the model when no ticker can be identified.
	GeneralSymbol = "GENERAL"

	RedisLockKeyPrefix = "signal-bot:lock:"
)
