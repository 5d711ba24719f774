package types

// Event names match the contract events the web client already decodes.
const (
	EventTypeRoundStarted     = "RoundStarted"
	EventTypeCommitSubmitted  = "CommitSubmitted"
	EventTypeSeedRevealed     = "SeedRevealed"
	EventTypePlayerRevealed   = "PlayerRevealed"
	EventTypeJackpotSeeded    = "JackpotSeeded"
	EventTypeRoundFinalized   = "RoundFinalized"
	EventTypeRoundVoided      = "RoundVoided"
	EventTypeTokensBurned     = "TokensBurned"
	EventTypePlayerPaid       = "PlayerPaid"
	EventTypeSaltReused       = "SaltReuseDetected"
	EventTypeDictionaryRoot   = "DictionaryRootSet"
	EventTypeBankMinted       = "BankMinted"
	EventTypeBankSent         = "BankSent"
	EventTypeCommitsForfeited = "CommitsForfeited"
)

const (
	AttributeKeyRoundID         = "roundId"
	AttributeKeyPlayer          = "player"
	AttributeKeyStake           = "stake"
	AttributeKeyTimestamp       = "timestamp"
	AttributeKeyStreak          = "streak"
	AttributeKeyAmount          = "amount"
	AttributeKeyTotalPot        = "totalPot"
	AttributeKeyNewTotalPot     = "newTotalPot"
	AttributeKeyNewCommitCount  = "newCommitCount"
	AttributeKeyStartTime       = "startTime"
	AttributeKeyCommitDeadline  = "commitDeadline"
	AttributeKeyRevealDeadline  = "revealDeadline"
	AttributeKeyRulerCommitHash = "rulerCommitHash"
	AttributeKeyLetterPool      = "letterPool"
	AttributeKeyRollover        = "rolloverFromPrevious"
	AttributeKeySpellID         = "spellId"
	AttributeKeySpellParam      = "spellParam"
	AttributeKeyValidLengths    = "validLengths"
	AttributeKeyEffectiveScore  = "effectiveScore"
	AttributeKeyBaseScore       = "baseScore"
	AttributeKeyLengthValid     = "lengthValid"
	AttributeKeySpellValid      = "spellValid"
	AttributeKeyBonusAmount     = "bonusAmount"
	AttributeKeyValidWinners    = "validWinnerCount"
	AttributeKeyConsolation     = "consolationWinnerCount"
	AttributeKeyNewTotalBurned  = "newTotalBurned"
	AttributeKeyIsConsolation   = "isConsolation"
	AttributeKeyIsRefund        = "isRefund"
	AttributeKeyNextRollover    = "rolloverToNext"
	AttributeKeyRoot            = "root"
	AttributeKeyFrom            = "from"
	AttributeKeyTo              = "to"
	AttributeKeyCount           = "count"
)
