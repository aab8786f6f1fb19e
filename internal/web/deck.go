package web

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/peterkuimelis/skirmish/internal/game"
)

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.store.Cards.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleAddCard(w http.ResponseWriter, r *http.Request) {
	var in game.CardInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	cards, err := s.store.Cards.Append(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.resetBuilder()
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleListCollection(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Collection.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleUpsertCollection adds quantityOwned to the stored quantity.
func (s *Server) handleUpsertCollection(w http.ResponseWriter, r *http.Request) {
	var in game.CollectionEntry
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, err := s.store.Collection.Upsert(r.Context(), in.CardID, in.QuantityOwned)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.resetBuilder()
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := s.store.Deck.Load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (s *Server) handleSaveDeck(w http.ResponseWriter, r *http.Request) {
	var deck []game.DeckEntry
	if err := decodeJSON(r, &deck); err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.store.Deck.Save(r.Context(), deck)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.resetBuilder()
	writeJSON(w, http.StatusOK, saved)
}

// --- Deck builder ---

// DeckSlot is one deck entry with its card definition.
type DeckSlot struct {
	Card  game.Card `json:"card"`
	Count int       `json:"count"`
}

// DeckBuilderView is the deck builder screen: the active deck and the cards
// that can still be added.
type DeckBuilderView struct {
	Deck      []DeckSlot       `json:"deck"`
	Available []game.OwnedCard `json:"available"`
	Size      int              `json:"size"`
}

func (s *Server) resetBuilder() {
	s.builderMu.Lock()
	s.builder = nil
	s.builderMu.Unlock()
}

// loadBuilder returns the in-memory builder, building it from the stores on
// first use. The caller must hold builderMu.
func (s *Server) loadBuilder(ctx context.Context) (*game.DeckBuilder, *game.Catalog, error) {
	catalog, err := s.store.Cards.Catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	if s.builder != nil {
		return s.builder, catalog, nil
	}
	collection, err := s.store.Collection.Collection(ctx)
	if err != nil {
		return nil, nil, err
	}
	saved, err := s.store.Deck.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	s.builder = game.NewDeckBuilder(catalog, collection, saved)
	return s.builder, catalog, nil
}

func builderView(b *game.DeckBuilder, catalog *game.Catalog) DeckBuilderView {
	v := DeckBuilderView{
		Deck:      []DeckSlot{},
		Available: b.Owned(),
		Size:      b.Size(),
	}
	if v.Available == nil {
		v.Available = []game.OwnedCard{}
	}
	for _, e := range b.Entries() {
		card, _ := catalog.Lookup(e.CardID)
		v.Deck = append(v.Deck, DeckSlot{Card: card, Count: e.Count})
	}
	return v
}

// withBuilder runs fn on the builder and responds with the resulting view.
func (s *Server) withBuilder(w http.ResponseWriter, r *http.Request, fn func(*game.DeckBuilder) error) {
	s.builderMu.Lock()
	defer s.builderMu.Unlock()

	b, catalog, err := s.loadBuilder(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if fn != nil {
		if err := fn(b); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, builderView(b, catalog))
}

func (s *Server) handleDeckBuilder(w http.ResponseWriter, r *http.Request) {
	s.withBuilder(w, r, nil)
}

func (s *Server) handleDeckBuilderAdd(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withBuilder(w, r, func(b *game.DeckBuilder) error {
		return b.Add(id)
	})
}

func (s *Server) handleDeckBuilderRemove(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withBuilder(w, r, func(b *game.DeckBuilder) error {
		b.Remove(id)
		return nil
	})
}

// handleDeckBuilderSave persists the builder deck. A failed write is logged
// and reported, and the builder keeps its state.
func (s *Server) handleDeckBuilderSave(w http.ResponseWriter, r *http.Request) {
	s.withBuilder(w, r, func(b *game.DeckBuilder) error {
		if _, err := s.store.Deck.Save(r.Context(), b.Entries()); err != nil {
			s.logger.Error("save deck", zap.Error(err))
			return err
		}
		return nil
	})
}
