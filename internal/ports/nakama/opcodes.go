package nakama

import "cardroom/internal/app"

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpPlaceBet   int64 = 1
	OpHit        int64 = 2
	OpStand      int64 = 3
	OpSelectCard int64 = 4
	OpReset      int64 = 5

	// Server -> Client
	OpSnapshot       int64 = 100
	OpBetPlaced      int64 = 101
	OpBlackjackDealt int64 = 102
	OpCardDrawn      int64 = 103
	OpDealerRevealed int64 = 104
	OpBlackjackEnded int64 = 105
	OpWarDealt       int64 = 106
	OpRoundStarted   int64 = 107
	OpWarTriggered   int64 = 108
	OpWarDeckEmpty   int64 = 109
	OpRoundSettled   int64 = 110
	OpBonusRevealed  int64 = 111
	OpClockTick      int64 = 112
	OpMatchCompleted int64 = 113
	OpPayoutIssued   int64 = 114
	OpGameReset      int64 = 115
	OpGameError      int64 = 199
)

// eventOpCodes maps engine effect kinds to their wire opcodes.
var eventOpCodes = map[app.EventKind]int64{
	app.EventBetPlaced:      OpBetPlaced,
	app.EventBlackjackDealt: OpBlackjackDealt,
	app.EventCardDrawn:      OpCardDrawn,
	app.EventDealerRevealed: OpDealerRevealed,
	app.EventBlackjackEnded: OpBlackjackEnded,
	app.EventWarDealt:       OpWarDealt,
	app.EventRoundStarted:   OpRoundStarted,
	app.EventWarTriggered:   OpWarTriggered,
	app.EventWarDeckEmpty:   OpWarDeckEmpty,
	app.EventRoundSettled:   OpRoundSettled,
	app.EventBonusRevealed:  OpBonusRevealed,
	app.EventClockTick:      OpClockTick,
	app.EventMatchCompleted: OpMatchCompleted,
	app.EventPayoutIssued:   OpPayoutIssued,
	app.EventGameReset:      OpGameReset,
}
