package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cardroom/internal/config"
	"cardroom/internal/domain"
	"cardroom/internal/ports"
)

// SequencedEvent is an effect with its position in the session's ordered
// log. Clients resume delivery after a cursor; an effect is never handed
// out twice for the same advancing cursor.
type SequencedEvent struct {
	Seq   uint64 `json:"seq"`
	Event Event  `json:"event"`
}

// session is the single live slot for one (player, game kind) pair. Its
// mutex serializes every action for that player, ledger calls included.
type session struct {
	mu sync.Mutex

	playerID string
	game     GameKind
	// instance counts bets placed in this slot; it feeds the ledger
	// idempotency keys so each bet/settlement pair is unique.
	instance int

	blackjack *domain.BlackjackGame
	war       *domain.WarMatch

	log     []SequencedEvent
	nextSeq uint64
}

func (s *session) append(events []Event) {
	for _, ev := range events {
		s.nextSeq++
		s.log = append(s.log, SequencedEvent{Seq: s.nextSeq, Event: ev})
	}
}

func (s *session) since(cursor uint64) []SequencedEvent {
	idx := sort.Search(len(s.log), func(i int) bool { return s.log[i].Seq > cursor })
	out := make([]SequencedEvent, len(s.log)-idx)
	copy(out, s.log[idx:])
	return out
}

// idemKey builds the at-most-once ledger key for one money movement.
func (s *session) idemKey(phase string) string {
	return fmt.Sprintf("%s:%s:%d:%s", s.playerID, s.game, s.instance, phase)
}

// Registry maps player identities to their single live game instance per
// kind and owns all ledger movement around bets and settlements.
type Registry struct {
	mu       sync.Mutex
	sessions map[sessionKey]*session

	svc    *Service
	ledger ports.LedgerPort
}

type sessionKey struct {
	PlayerID string
	Game     GameKind
}

// NewRegistry constructs a Registry over the given service and ledger.
func NewRegistry(svc *Service, ledger ports.LedgerPort) *Registry {
	return &Registry{
		sessions: make(map[sessionKey]*session),
		svc:      svc,
		ledger:   ledger,
	}
}

// resolve returns the session slot for the pair, creating it if absent.
func (r *Registry) resolve(playerID string, game GameKind) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := sessionKey{PlayerID: playerID, Game: game}
	if s, ok := r.sessions[key]; ok {
		return s
	}
	s := &session{playerID: playerID, game: game}
	r.sessions[key] = s
	return s
}

// Apply runs one player action through the engine and returns the updated
// snapshot plus the effects the action produced, already appended to the
// session's ordered log. Errors leave game state unchanged.
func (r *Registry) Apply(ctx context.Context, playerID string, act Action) (Snapshot, []Event, error) {
	if act.Game != GameBlackjack && act.Game != GameWar {
		return Snapshot{}, nil, fmt.Errorf("%w: unknown game %q", domain.ErrInvalidAction, act.Game)
	}

	s := r.resolve(playerID, act.Game)
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		events []Event
		err    error
	)
	switch act.Kind {
	case ActionPlaceBet:
		events, err = r.placeBet(ctx, s, act.Amount)
	case ActionHit:
		events, err = r.blackjackAction(ctx, s, func(g *domain.BlackjackGame) ([]Event, error) {
			return r.svc.Hit(g)
		})
	case ActionStand:
		events, err = r.blackjackAction(ctx, s, func(g *domain.BlackjackGame) ([]Event, error) {
			return r.svc.Stand(g)
		})
	case ActionSelectCard:
		events, err = r.selectCard(ctx, s, act.CardIndex)
	case ActionReset:
		events, err = r.reset(s)
	default:
		err = fmt.Errorf("%w: unknown action %q", domain.ErrInvalidAction, act.Kind)
	}

	// Effects that did happen are logged even when a later step (such as
	// the settlement credit) failed; the failed step is retried by Tick
	// under the same idempotency key.
	if len(events) > 0 {
		s.append(events)
	}
	return r.snapshotLocked(s), events, err
}

// placeBet enforces the single-live-instance invariant, validates the
// stake, debits the ledger and only then creates the new instance. A
// refused debit is all-or-nothing; an invalid stake never reaches the
// ledger at all.
func (r *Registry) placeBet(ctx context.Context, s *session, amount int64) ([]Event, error) {
	if s.game == GameBlackjack && s.blackjack != nil && !s.blackjack.Terminal() {
		return nil, domain.ErrGameInProgress
	}
	if s.game == GameWar && s.war != nil && !s.war.Terminal() {
		return nil, domain.ErrGameInProgress
	}

	// An owed payout from the previous instance clears before the slot
	// takes a new bet; while the credit keeps failing the bet is refused.
	settled, err := r.settlePending(ctx, s)
	if err != nil {
		return settled, fmt.Errorf("pending settlement: %w", err)
	}

	if amount <= 0 || amount < config.GetTableMin("") {
		return settled, domain.ErrBetBelowMinimum
	}

	s.instance++
	if _, err := r.ledger.Debit(ctx, s.playerID, amount, s.idemKey("bet")); err != nil {
		s.instance--
		return settled, err
	}

	switch s.game {
	case GameBlackjack:
		g, events, err := r.svc.StartBlackjack(s.playerID, amount)
		if err != nil {
			return settled, r.refund(ctx, s, amount, err)
		}
		s.blackjack = g
		s.log = nil
		return append(settled, events...), nil
	default:
		m, events, err := r.svc.StartWar(s.playerID, amount)
		if err != nil {
			return settled, r.refund(ctx, s, amount, err)
		}
		s.war = m
		s.log = nil
		return append(settled, events...), nil
	}
}

// settlePending retries the settlement credit of an ended-but-unsettled
// instance in this slot, under its original idempotency key.
func (r *Registry) settlePending(ctx context.Context, s *session) ([]Event, error) {
	switch s.game {
	case GameBlackjack:
		if s.blackjack != nil {
			return r.settleBlackjack(ctx, s, nil)
		}
	case GameWar:
		if s.war != nil {
			return r.settleWar(ctx, s, nil)
		}
	}
	return nil, nil
}

// refund undoes a bet debit when instance creation fails, keeping
// placeBet all-or-nothing from the player's point of view.
func (r *Registry) refund(ctx context.Context, s *session, amount int64, cause error) error {
	if _, err := r.ledger.Credit(ctx, s.playerID, amount, s.idemKey("refund")); err != nil {
		return fmt.Errorf("refund after failed deal: %w", err)
	}
	return cause
}

func (r *Registry) blackjackAction(ctx context.Context, s *session, fn func(*domain.BlackjackGame) ([]Event, error)) ([]Event, error) {
	if s.game != GameBlackjack {
		return nil, domain.ErrInvalidAction
	}
	if s.blackjack == nil {
		return nil, domain.ErrNotFound
	}
	events, err := fn(s.blackjack)
	if err != nil {
		return events, err
	}
	return r.settleBlackjack(ctx, s, events)
}

// settleBlackjack credits a finished hand at most once. The Settled flag
// flips only after the ledger accepts the credit; a credit failure keeps
// the hand retryable under the same idempotency key.
func (r *Registry) settleBlackjack(ctx context.Context, s *session, events []Event) ([]Event, error) {
	g := s.blackjack
	if g.State != domain.BlackjackEnded || g.Settled {
		return events, nil
	}

	amount := BlackjackPayout(g)
	if amount > 0 {
		if _, err := r.ledger.Credit(ctx, s.playerID, amount, s.idemKey("settle")); err != nil {
			return events, fmt.Errorf("settlement credit: %w", err)
		}
		events = append(events, private(s.playerID, EventPayoutIssued, PayoutIssuedPayload{
			Game:   GameBlackjack,
			Amount: amount,
		}))
	}
	g.Settled = true
	return events, nil
}

func (r *Registry) selectCard(ctx context.Context, s *session, idx int) ([]Event, error) {
	if s.game != GameWar {
		return nil, domain.ErrInvalidAction
	}
	if s.war == nil {
		return nil, domain.ErrNotFound
	}
	events, err := r.svc.SelectCard(s.war, idx)
	if err != nil {
		return events, err
	}
	return r.settleWar(ctx, s, events)
}

// settleWar credits a completed match at most once, mirroring
// settleBlackjack.
func (r *Registry) settleWar(ctx context.Context, s *session, events []Event) ([]Event, error) {
	m := s.war
	if m.State != domain.WarComplete || m.Settled {
		return events, nil
	}

	amount := WarPayout(m)
	if amount > 0 {
		if _, err := r.ledger.Credit(ctx, s.playerID, amount, s.idemKey("settle")); err != nil {
			return events, fmt.Errorf("settlement credit: %w", err)
		}
		events = append(events, private(s.playerID, EventPayoutIssued, PayoutIssuedPayload{
			Game:   GameWar,
			Amount: amount,
		}))
	}
	m.Settled = true
	return events, nil
}

func (r *Registry) reset(s *session) ([]Event, error) {
	switch s.game {
	case GameBlackjack:
		if s.blackjack == nil {
			s.blackjack = domain.NewBlackjackGame(s.playerID)
			return []Event{private(s.playerID, EventGameReset, GameResetPayload{Game: GameBlackjack})}, nil
		}
		return r.svc.ResetBlackjack(s.blackjack)
	default:
		if s.war == nil {
			s.war = domain.NewWarMatch(s.playerID)
			return []Event{private(s.playerID, EventGameReset, GameResetPayload{Game: GameWar})}, nil
		}
		return r.svc.ResetWar(s.war)
	}
}

// Tick advances every live war match clock by one second and retries any
// pending settlement credit, returning the resulting effects grouped per
// player in player order. A match that completes on this tick is settled
// here.
func (r *Registry) Tick(ctx context.Context) map[string][]Event {
	return r.tickSessions(ctx, nil)
}

// TickPresences ticks only the named players' sessions. A transport
// hosting a subset of the live sessions ticks exactly its own players, so
// two hosts sharing the registry never double-advance a clock.
func (r *Registry) TickPresences(ctx context.Context, playerIDs []string) map[string][]Event {
	if len(playerIDs) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		allowed[id] = struct{}{}
	}
	return r.tickSessions(ctx, allowed)
}

// tickSessions ticks the sessions in allowed, or all of them when allowed
// is nil. War sessions advance their clock; any session whose instance
// ended without a successful settlement credit retries it here.
func (r *Registry) tickSessions(ctx context.Context, allowed map[string]struct{}) map[string][]Event {
	r.mu.Lock()
	live := make([]*session, 0, len(r.sessions))
	for key, s := range r.sessions {
		if allowed != nil {
			if _, ok := allowed[key.PlayerID]; !ok {
				continue
			}
		}
		live = append(live, s)
	}
	r.mu.Unlock()

	sort.Slice(live, func(i, j int) bool {
		if live[i].playerID != live[j].playerID {
			return live[i].playerID < live[j].playerID
		}
		return live[i].game < live[j].game
	})

	out := make(map[string][]Event)
	for _, s := range live {
		s.mu.Lock()
		var events []Event
		switch s.game {
		case GameWar:
			if s.war == nil {
				break
			}
			events, _ = r.svc.TickWar(s.war)
			if s.war.State == domain.WarComplete && !s.war.Settled {
				// A failed settlement credit stays retryable on the next
				// tick under the same idempotency key.
				events, _ = r.settleWar(ctx, s, events)
			}
		case GameBlackjack:
			if s.blackjack == nil {
				break
			}
			events, _ = r.settleBlackjack(ctx, s, nil)
		}
		if len(events) > 0 {
			s.append(events)
			out[s.playerID] = append(out[s.playerID], events...)
		}
		s.mu.Unlock()
	}
	return out
}

// Project returns the read-only snapshot for a player's game plus the
// effect log after the given cursor, for reconnection without losing or
// duplicating effects.
func (r *Registry) Project(playerID string, game GameKind, cursor uint64) (Snapshot, []SequencedEvent, error) {
	r.mu.Lock()
	s, ok := r.sessions[sessionKey{PlayerID: playerID, Game: game}]
	r.mu.Unlock()
	if !ok {
		return Snapshot{}, nil, domain.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return r.snapshotLocked(s), s.since(cursor), nil
}
