package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ramonehamilton/draft-claw/internal/eternal/draft"
	"github.com/ramonehamilton/draft-claw/internal/eternal/resolver"
	"github.com/ramonehamilton/draft-claw/internal/events"
)

func (p *Processor) registerDraftCommands() {
	p.Register(newCommand("", "", "Get the current draft selection", p.withGame(p.status)))
	p.Register(newCommand("help", "", "Show this help", p.help))
	p.Register(newCommand("reg", "<game_id>", "Register an existing draft", p.reg))
	p.Register(newCommand("own", "<game_id>", "Register and own a game", p.own))
	p.Register(newCommand("deck", "", "Get the current deck", p.withGame(p.deck)))
	p.Register(newCommand("vote", "<card_id|card_name>", "Vote for a card", p.withGame(p.vote)))
	p.Register(newCommand("commit", "", "Commit the highest voted card. Only the owner can perform this.", p.withGame(p.commit)))
}

type gameHandler func(ctx context.Context, req Request, gameID, args string, reply *Reply) error

// withGame resolves the caller's game before running fn.
func (p *Processor) withGame(fn gameHandler) func(context.Context, Request, string, *Reply) error {
	return func(ctx context.Context, req Request, args string, reply *Reply) error {
		gameID, ok, err := p.registry.Lookup(ctx, req.User)
		if err != nil {
			reply.Add(fmt.Sprintf("Err: %v", err))
			return err
		}
		if !ok {
			reply.Add(fmt.Sprintf("No game is registered to [%s]", req.User))
			return nil
		}
		reply.Add(fmt.Sprintf("Game [%s]", gameID))
		return fn(ctx, req, gameID, args, reply)
	}
}

func (p *Processor) help(_ context.Context, _ Request, _ string, reply *Reply) error {
	reply.Add(p.HelpText())
	return nil
}

func (p *Processor) reg(_ context.Context, req Request, gameID string, reply *Reply) error {
	if gameID == "" {
		reply.Add("Usage: " + p.opts.Prefix + " reg <game_id>")
		return nil
	}
	p.registry.Register(req.User, gameID)
	reply.Add(fmt.Sprintf("Game [%s] is now registered to %s", gameID, req.User))
	return nil
}

func (p *Processor) own(ctx context.Context, req Request, gameID string, reply *Reply) error {
	if gameID == "" {
		reply.Add("Usage: " + p.opts.Prefix + " own <game_id>")
		return nil
	}
	p.registry.Register(req.User, gameID)
	if _, err := p.store.OwnGame(ctx, gameID, req.User); err != nil {
		reply.Add(fmt.Sprintf("Unable to own game: [%v]", err))
		return err
	}
	p.dispatcher.Dispatch(events.NewTypedEvent(ctx, events.TypeGameOwned, events.GameOwnedEvent{
		GameID: gameID,
		UserID: req.User,
	}))
	reply.Add(fmt.Sprintf("Game [%s] is now owned by [%s]", gameID, req.User))
	return nil
}

func (p *Processor) status(ctx context.Context, _ Request, gameID, _ string, reply *Reply) error {
	rec, err := p.store.LatestRecord(ctx, gameID)
	if err != nil {
		reply.Add(fmt.Sprintf("Err: %v", err))
		return err
	}
	if rec == nil {
		reply.Add("No draft data available")
		return nil
	}
	reply.Add(fmt.Sprintf("Card %d of %d", rec.PickID, draft.MaxPickID))
	reply.AddBoxed(strings.TrimRight(rec.SelectionText, "\n"))
	return nil
}

func (p *Processor) deck(ctx context.Context, _ Request, gameID, _ string, reply *Reply) error {
	rec, err := p.store.LatestRecord(ctx, gameID)
	if err != nil {
		reply.Add(fmt.Sprintf("Err: %v", err))
		return err
	}
	if rec == nil || len(rec.Decklist) == 0 {
		reply.AddBoxed("No data")
		return nil
	}
	reply.AddBoxed(strings.Join(rec.Decklist, "\n"))
	return nil
}

func (p *Processor) vote(ctx context.Context, req Request, gameID, args string, reply *Reply) error {
	rec, err := p.store.LatestRecord(ctx, gameID)
	if err != nil {
		reply.Add(fmt.Sprintf("Err: %v", err))
		return err
	}
	if rec == nil {
		reply.Add("Err: Could not find draft record")
		return nil
	}

	index, err := VoteIndex(rec.OfferedCards, args)
	if err != nil {
		reply.Add(fmt.Sprintf("Err: %v", err))
		return nil
	}

	vote := &draft.Vote{GameID: gameID, PickID: rec.PickID, UserID: req.User, Index: index}
	if err := p.store.UpsertVote(ctx, vote); err != nil {
		reply.Add(fmt.Sprintf("Err: %v", err))
		return err
	}
	p.metrics.IncrementVotes()

	card := rec.OfferedCards[index]
	p.dispatcher.Dispatch(events.NewTypedEvent(ctx, events.TypeVoteCast, events.VoteCastEvent{
		GameID: gameID,
		PickID: rec.PickID,
		Label:  rec.Label(),
		UserID: req.User,
		Index:  index,
		Card:   card,
	}))
	reply.Add(fmt.Sprintf("[%s] voted card for pick [%s]:\n%s", req.User, rec.Label(), p.cardText(card)))
	return nil
}

func (p *Processor) commit(ctx context.Context, req Request, gameID, _ string, reply *Reply) error {
	latest, err := p.store.LatestRecord(ctx, gameID)
	if err != nil {
		reply.Add(fmt.Sprintf("Err: %v", err))
		return err
	}
	if latest == nil {
		reply.Add(fmt.Sprintf("Unable to get pick: no draft record for game %s", gameID))
		return nil
	}

	rec, changed, err := p.store.CommitPick(ctx, gameID, latest.PickID, req.User)
	switch {
	case errors.Is(err, draft.ErrNoVotes):
		reply.Add(fmt.Sprintf("Unable to get pick: no votes for pick [%s]", latest.Label()))
		return nil
	case errors.Is(err, ErrNotOwner):
		reply.Add(fmt.Sprintf("Unable to pick: [%s] does not own game [%s]", req.User, gameID))
		return nil
	case errors.Is(err, draft.ErrAlreadyCommitted):
		reply.Add(fmt.Sprintf("Unable to pick: pick [%s] is already committed", latest.Label()))
		return nil
	case err != nil:
		reply.Add(fmt.Sprintf("Unable to pick: %v", err))
		return err
	}

	card, _ := rec.Selected()
	if changed {
		p.metrics.IncrementCommits()
		p.dispatcher.Dispatch(events.NewTypedEvent(ctx, events.TypePickCommitted, events.PickCommittedEvent{
			GameID: gameID,
			PickID: rec.PickID,
			Label:  rec.Label(),
			UserID: req.User,
			Index:  *rec.SelectedIndex,
			Card:   card,
		}))
	}
	reply.Add(fmt.Sprintf("[%s] committed card for pick [%s]:\n%s", req.User, rec.Label(), p.cardText(card)))
	return nil
}

func (p *Processor) cardText(name string) string {
	if p.catalog != nil {
		if card, ok := p.catalog.Get(name); ok {
			return card.Text()
		}
	}
	return name
}

// VoteIndex turns a vote argument into a 0-based index into offered. The
// argument is either a 1-based display index or part of a card name. When
// a name matches several offered cards the lowest index wins.
func VoteIndex(offered []string, arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, fmt.Errorf("%w: empty vote", draft.ErrInvalidIndex)
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(offered) {
			return 0, fmt.Errorf("%w: no card at position %d", draft.ErrInvalidIndex, n)
		}
		return n - 1, nil
	}

	index, err := resolver.FindInList(offered, arg)
	if err == nil {
		return index, nil
	}
	var me *resolver.MatchError
	if errors.As(err, &me) && errors.Is(err, resolver.ErrAmbiguousMatch) && len(me.Candidates) > 0 {
		for i, name := range offered {
			if name == me.Candidates[0] {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("unable to find card in list with vote text: %w", err)
}
