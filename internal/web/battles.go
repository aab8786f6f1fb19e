package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/log"
	"github.com/peterkuimelis/skirmish/internal/net"
	"github.com/peterkuimelis/skirmish/internal/store"
)

// handleBattleConfig returns the configuration for ?battleID=N, or a random
// configuration when no ID is given.
func (s *Server) handleBattleConfig(w http.ResponseWriter, r *http.Request) {
	var (
		bc  game.BattleConfig
		err error
	)
	if raw := r.URL.Query().Get("battleID"); raw != "" {
		id, convErr := strconv.Atoi(raw)
		if convErr != nil {
			s.writeError(w, r, game.ValidationError("invalid battleID %q", raw))
			return
		}
		bc, err = s.resolver.ByID(r.Context(), id)
	} else {
		bc, err = s.resolver.RandomConfig(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bc)
}

type ladderResponse struct {
	BattleID *int `json:"battleID"` // nil means a random battle
}

func (s *Server) handleLadderPeek(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ladderResponse{BattleID: s.ladder.Peek()})
}

func (s *Server) handleLadderNext(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ladderResponse{BattleID: s.ladder.Next()})
}

// --- Sessions ---

func (s *Server) handleStartBattle(w http.ResponseWriter, r *http.Request) {
	var req net.StartRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	events := log.NewMemoryLogger()
	br := store.BattleRequest{
		Resolver: s.resolver,
		BattleID: req.BattleID,
		Rules:    s.rules,
		Logger:   events,
	}
	if req.Ladder {
		br.Ladder = s.ladder
	}
	battle, battleID, err := s.store.StartBattle(r.Context(), br)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := s.sessions.Create(battle, events, battleID)
	s.logger.Info("battle session started",
		zap.String("session", sess.ID),
		zap.Intp("battle_id", battleID),
		zap.Int("enemies", len(battle.State.Enemy.Active)),
	)

	sess.mu.Lock()
	view := sess.View()
	sess.mu.Unlock()
	writeJSON(w, http.StatusCreated, view)
}

// withSession locks the session named by the {id} path value, runs fn on its
// battle and responds with the session view.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*game.Battle) error) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if fn != nil {
		if err := fn(sess.battle); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, sess.View())
}

func (s *Server) handleGetBattle(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, nil)
}

type playRequest struct {
	InstanceID int `json:"instanceId"`
}

func (s *Server) handlePlayCard(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(b *game.Battle) error {
		return b.PlayCard(req.InstanceID)
	})
}

type attackRequest struct {
	AttackerID int `json:"attackerId"`
	TargetID   int `json:"targetId"`
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	var req attackRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(b *game.Battle) error {
		return b.Attack(req.AttackerID, req.TargetID)
	})
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(b *game.Battle) error {
		return b.EndTurn()
	})
}

// handleExitBattle closes the battle and forgets the session.
func (s *Server) handleExitBattle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.withSession(w, r, func(b *game.Battle) error {
		if err := b.Exit(); err != nil {
			return err
		}
		s.sessions.Remove(id)
		phase, _ := b.Outcome()
		s.logger.Info("battle session closed", zap.String("session", id), zap.String("outcome", net.OutcomeName(phase)))
		return nil
	})
}

// handleBattleSocket drives a session over a websocket: the battle asks the
// client for every move and streams its events. REST calls may still act on
// the same session while the client is thinking.
func (s *Server) handleBattleSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		s.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer wsConn.CloseNow()

	ctx := r.Context()
	sess.mu.Lock()
	if sess.attached {
		sess.mu.Unlock()
		wsConn.Close(websocket.StatusPolicyViolation, "battle already has a client")
		return
	}
	sess.attached = true

	ctrl := net.NewNetworkController(net.NewWSTransport(wsConn))
	ctrl.Unlocker = &sess.mu
	phase, runErr := sess.battle.Run(ctx, ctrl)
	sess.attached = false
	closed := sess.battle.State.Closed
	if runErr == nil {
		err = ctrl.SendGameOver(ctx, sess.battle.State)
	}
	sess.mu.Unlock()

	if runErr != nil {
		if !errors.Is(runErr, context.Canceled) && websocket.CloseStatus(runErr) == -1 {
			s.logger.Warn("battle socket ended", zap.String("session", sess.ID), zap.Error(runErr))
		}
		return
	}
	if closed {
		s.sessions.Remove(sess.ID)
	}
	if err != nil {
		s.logger.Warn("send game_over", zap.String("session", sess.ID), zap.Error(err))
		return
	}
	s.logger.Info("battle session closed", zap.String("session", sess.ID), zap.String("outcome", net.OutcomeName(phase)))
	wsConn.Close(websocket.StatusNormalClosure, "battle ended")
}
