package draft

import (
	"fmt"
	"sort"
	"time"
)

// Vote is one user's preferred index for a pick. A user holds at most one
// live vote per pick; a newer vote replaces the older one.
type Vote struct {
	GameID    string    `json:"game_id"`
	PickID    int       `json:"pick_id"`
	UserID    string    `json:"user_id"`
	Index     int       `json:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// VoteCount is the number of distinct users voting for an index.
type VoteCount struct {
	Index int `json:"index"`
	Votes int `json:"votes"`
}

// Tally counts distinct users per index. When a user appears more than
// once the last vote in the slice counts. Results are ordered by vote count
// descending, then by index ascending, so the first entry is the winner.
func Tally(votes []Vote) []VoteCount {
	latest := make(map[string]int, len(votes))
	for _, v := range votes {
		latest[v.UserID] = v.Index
	}

	counts := make(map[int]int)
	for _, index := range latest {
		counts[index]++
	}

	out := make([]VoteCount, 0, len(counts))
	for index, n := range counts {
		out = append(out, VoteCount{Index: index, Votes: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Votes != out[j].Votes {
			return out[i].Votes > out[j].Votes
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// WinningIndex returns the index with the most voters. Ties go to the
// lowest index. An empty vote set yields ErrNoVotes.
func WinningIndex(votes []Vote) (int, error) {
	counts := Tally(votes)
	if len(counts) == 0 {
		return 0, ErrNoVotes
	}
	return counts[0].Index, nil
}

// CommitState is the lifecycle of a pick's selection.
type CommitState int

const (
	StateOpen CommitState = iota
	StateCommitted
)

func (s CommitState) String() string {
	if s == StateCommitted {
		return "committed"
	}
	return "open"
}

// StateOf reports whether the record has been committed.
func StateOf(r Record) CommitState {
	if r.Committed() {
		return StateCommitted
	}
	return StateOpen
}

// Commit writes index as the record's selection. Committing the index that
// is already selected is a no-op (changed is false); committing a different
// index fails with ErrAlreadyCommitted.
func Commit(r Record, index int) (out Record, changed bool, err error) {
	if index < 0 || index >= len(r.OfferedCards) {
		return r, false, fmt.Errorf("%w: %d of %d offered", ErrInvalidIndex, index+1, len(r.OfferedCards))
	}
	if r.SelectedIndex != nil {
		if *r.SelectedIndex == index {
			return r, false, nil
		}
		return r, false, fmt.Errorf("%w: %s holds index %d", ErrAlreadyCommitted, r.Label(), *r.SelectedIndex+1)
	}
	out = r.Clone()
	out.SelectedIndex = &index
	return out, true, nil
}

// InRange returns the votes whose index names one of r's offered cards.
// Lenient packs can shrink after a vote was cast.
func InRange(r Record, votes []Vote) []Vote {
	out := make([]Vote, 0, len(votes))
	for _, v := range votes {
		if v.Index >= 0 && v.Index < len(r.OfferedCards) {
			out = append(out, v)
		}
	}
	return out
}

// CommitVotes tallies votes and commits the winner on behalf of user, who
// must own the game. Votes for an index r does not offer are ignored; if
// none remain the result is ErrNoVotes.
func CommitVotes(game Game, user string, r Record, votes []Vote) (Record, bool, error) {
	if !game.IsOwner(user) {
		return r, false, ErrNotOwner
	}
	index, err := WinningIndex(InRange(r, votes))
	if err != nil {
		return r, false, err
	}
	return Commit(r, index)
}
