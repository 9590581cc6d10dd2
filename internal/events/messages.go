package events

// Event types.
const (
	TypeRecordSaved         = "record:saved"
	TypeRecordSkipped       = "record:skipped"
	TypeObservationRejected = "observation:rejected"
	TypeVoteCast            = "vote:cast"
	TypePickCommitted       = "pick:committed"
	TypeGameOwned           = "game:owned"
)

// RecordSavedEvent is sent when a reconciled record was written.
type RecordSavedEvent struct {
	GameID        string   `json:"gameId"`
	PickID        int      `json:"pickId"`
	Label         string   `json:"label"`
	OfferedCards  []string `json:"offeredCards"`
	SelectedIndex *int     `json:"selectedIndex,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
}

// RecordSkippedEvent is sent when an observation matched the stored record.
type RecordSkippedEvent struct {
	GameID string `json:"gameId"`
	PickID int    `json:"pickId"`
	Label  string `json:"label"`
}

// ObservationRejectedEvent is sent when an observation could not be turned
// into a complete record.
type ObservationRejectedEvent struct {
	GameID    string `json:"gameId"`
	PickCount string `json:"pickCount"`
	Reason    string `json:"reason"`
	Expected  int    `json:"expected,omitempty"`
	Resolved  int    `json:"resolved,omitempty"`
}

// VoteCastEvent is sent when a user votes.
type VoteCastEvent struct {
	GameID string `json:"gameId"`
	PickID int    `json:"pickId"`
	Label  string `json:"label"`
	UserID string `json:"userId"`
	Index  int    `json:"index"`
	Card   string `json:"card"`
}

// PickCommittedEvent is sent when the owner commits a pick. Index is
// 0-based; actuators tapping the screen subscribe to this.
type PickCommittedEvent struct {
	GameID string `json:"gameId"`
	PickID int    `json:"pickId"`
	Label  string `json:"label"`
	UserID string `json:"userId"`
	Index  int    `json:"index"`
	Card   string `json:"card"`
}

// GameOwnedEvent is sent when a user claims a game.
type GameOwnedEvent struct {
	GameID string `json:"gameId"`
	UserID string `json:"userId"`
}
