package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/skirmish/internal/game"
	"github.com/peterkuimelis/skirmish/internal/log"
	"github.com/peterkuimelis/skirmish/internal/store"
)

// Tools exposes one battle at a time to an MCP client. The player's deck
// and the enemy rosters come from the JSON stores.
type Tools struct {
	store    *store.Store
	resolver *game.Resolver
	ladder   *game.Ladder
	rules    game.Rules
	logger   *zap.Logger

	mu     sync.Mutex
	active *GameSession
}

// NewTools creates the tool set.
func NewTools(st *store.Store, resolver *game.Resolver, ladder *game.Ladder, rules game.Rules, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{
		store:    st,
		resolver: resolver,
		ladder:   ladder,
		rules:    rules,
		logger:   logger.Named("mcp"),
	}
}

// Register adds all battle tools to the MCP server.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(startBattleTool(), t.handleStartBattle)
	s.AddTool(takeActionTool(), t.handleTakeAction)
	s.AddTool(getBattleStateTool(), t.handleGetBattleState)
	s.AddTool(exitBattleTool(), t.handleExitBattle)
}

// --- Tool definitions ---

func startBattleTool() mcp.Tool {
	return mcp.NewTool("start_battle",
		mcp.WithDescription("Start a new battle with the saved deck. Returns the opening state and the legal actions. "+
			"Without battle_id a configured battle is picked at random; with ladder=true the next ladder battle is used."),
		mcp.WithNumber("battle_id", mcp.Description("ID of the battle configuration to fight")),
		mcp.WithBoolean("ladder", mcp.Description("Fight the next battle of the ladder instead")),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Choose an action from the actions list: play a card, attack, end the turn or exit."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the action to take from the actions list")),
	)
}

func getBattleStateTool() mcp.Tool {
	return mcp.NewTool("get_battle_state",
		mcp.WithDescription("Get the current battle state, accumulated events and legal actions without acting. Read-only."),
	)
}

func exitBattleTool() mcp.Tool {
	return mcp.NewTool("exit_battle",
		mcp.WithDescription("Leave the current battle. Allowed at any time, including after a win or loss."),
	)
}

// --- Tool handlers ---

func (t *Tools) handleStartBattle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active != nil {
		return mcp.NewToolResultError("A battle is already running. Use exit_battle first."), nil
	}

	req := store.BattleRequest{
		Resolver: t.resolver,
		Rules:    t.rules,
		Logger:   log.NewMemoryLogger(),
	}
	if _, ok := request.GetArguments()["battle_id"]; ok {
		id := request.GetInt("battle_id", 0)
		req.BattleID = &id
	}
	if request.GetBool("ladder", false) {
		req.Ladder = t.ladder
	}

	battle, battleID, err := t.store.StartBattle(ctx, req)
	if err != nil {
		t.logger.Warn("start battle", zap.Error(err))
		return mcp.NewToolResultErrorf("Failed to start battle: %v", err), nil
	}

	sess := NewGameSession(battle, battleID)
	resp, err := sess.waitForPending(ctx)
	if err != nil {
		sess.Close()
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	t.active = sess
	t.logger.Info("battle started", zap.Intp("battle_id", battleID))
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (t *Tools) handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess := t.active
	if sess == nil {
		return mcp.NewToolResultError("No battle is running. Use start_battle first."), nil
	}
	pending := sess.currentPending
	if pending == nil || pending.Type != DecisionChooseAction {
		return mcp.NewToolResultError("The battle is over. Use exit_battle to leave it."), nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Actions) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Actions)-1), nil
	}
	return t.advance(ctx, sess, index)
}

func (t *Tools) handleGetBattleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return mcp.NewToolResultError("No battle is running. Use start_battle first."), nil
	}
	return mcp.NewToolResultText(respondJSON(t.active.response())), nil
}

// handleExitBattle picks the exit action, which is always offered last.
func (t *Tools) handleExitBattle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess := t.active
	if sess == nil {
		return mcp.NewToolResultError("No battle is running."), nil
	}
	pending := sess.currentPending
	if pending == nil || pending.Type != DecisionChooseAction {
		t.active = nil
		sess.Close()
		return mcp.NewToolResultText(respondJSON(sess.response())), nil
	}
	return t.advance(ctx, sess, len(pending.Actions)-1)
}

// advance answers the pending decision and waits for the next one. The
// caller must hold t.mu.
func (t *Tools) advance(ctx context.Context, sess *GameSession, index int) (*mcp.CallToolResult, error) {
	if err := sess.answer(ctx, index); err != nil {
		return mcp.NewToolResultErrorf("Error submitting action: %v", err), nil
	}
	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	if resp.GameOver {
		t.active = nil
		t.logger.Info("battle closed", zap.String("outcome", resp.Outcome))
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
