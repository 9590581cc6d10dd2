package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ramonehamilton/draft-claw/internal/api/response"
	"github.com/ramonehamilton/draft-claw/internal/eternal/cards"
	"github.com/ramonehamilton/draft-claw/internal/eternal/resolver"
)

// CardHandler resolves card names.
type CardHandler struct {
	catalog  *cards.Catalog
	resolver *resolver.Resolver
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(catalog *cards.Catalog, r *resolver.Resolver) *CardHandler {
	return &CardHandler{catalog: catalog, resolver: r}
}

// CardSearchResponse holds the resolved card or, failing that, the names
// the query could refer to.
type CardSearchResponse struct {
	Query      string      `json:"query"`
	Match      *cards.Card `json:"match,omitempty"`
	Text       string      `json:"text,omitempty"`
	Candidates []string    `json:"candidates,omitempty"`
}

// SearchCards resolves the q parameter against the catalog.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	if h.resolver == nil {
		response.ServiceUnavailable(w, errors.New("card data is not loaded"))
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, errors.New("query parameter q is required"))
		return
	}
	limit := 5
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	body := CardSearchResponse{Query: query}
	name, err := h.resolver.Resolve(query)
	if err == nil {
		card, _ := h.catalog.Get(name)
		body.Match = &card
		body.Text = card.Text()
		response.Success(w, body)
		return
	}

	var me *resolver.MatchError
	if errors.As(err, &me) && len(me.Candidates) > 0 {
		body.Candidates = me.Candidates
		if len(body.Candidates) > limit {
			body.Candidates = body.Candidates[:limit]
		}
	} else {
		body.Candidates = h.resolver.Suggest(query, limit)
	}
	response.Success(w, body)
}
