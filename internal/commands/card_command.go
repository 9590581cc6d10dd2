package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ramonehamilton/draft-claw/internal/eternal/resolver"
)

const maxCardCandidates = 3

func (p *Processor) card(args string, reply *Reply) {
	if p.resolver == nil || p.catalog == nil {
		reply.Add("Unable to find card: no card data loaded")
		return
	}
	if strings.TrimSpace(args) == "" {
		reply.Add("Usage: " + p.opts.CardPrefix + " <name>")
		return
	}

	name, err := p.resolver.Resolve(args)
	if err == nil {
		card, _ := p.catalog.Get(name)
		if card.ImageURL != "" {
			reply.Add(card.ImageURL)
		} else {
			reply.Add(card.Text())
		}
		return
	}

	var me *resolver.MatchError
	switch {
	case errors.As(err, &me) && errors.Is(err, resolver.ErrAmbiguousMatch):
		reply.Add("Unable to find card: Multiple cards found: " + bracketed(me.Candidates, maxCardCandidates))
	default:
		reply.Add("Unable to find card: No card found")
		if suggestions := p.resolver.Suggest(args, maxCardCandidates); len(suggestions) > 0 {
			reply.Add(fmt.Sprintf("Did you mean: %s?", bracketed(suggestions, maxCardCandidates)))
		}
	}
}

func bracketed(names []string, limit int) string {
	if len(names) > limit {
		names = names[:limit]
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = "[" + n + "]"
	}
	return strings.Join(parts, ", ")
}
