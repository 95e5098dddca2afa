package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"cardroom/internal/ports"
)

const defaultStartingChips = 10000

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but
	// onboarding continued.
	ProfileUpdateErr error
	// StartingChipsGranted is false when the grant was already applied.
	StartingChipsGranted bool
}

// Service handles post-auth onboarding for new players: a display name
// and the one-time starting chip stack they need to place a first bet.
type Service struct {
	accounts ports.AccountPort
	bonus    ports.WelcomeBonusPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, bonus ports.WelcomeBonusPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{accounts: accounts, bonus: bonus, rng: rng}
}

// OnboardNewPlayer initializes profile and chip balance for a newly
// created account. Profile updates are best-effort; the chip grant is not.
func (s *Service) OnboardNewPlayer(ctx context.Context, playerID string) (Result, error) {
	if s.accounts == nil || s.bonus == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, playerID, displayName, displayName); err != nil {
		result.ProfileUpdateErr = err
	}

	granted, err := s.bonus.GrantWelcomeBonusOnce(ctx, playerID, defaultStartingChips, map[string]interface{}{
		"reason": "starting_chips",
	})
	if err != nil {
		return result, fmt.Errorf("failed to grant starting chips: %w", err)
	}
	result.StartingChipsGranted = granted

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Lucky", "Bold", "Quiet", "Swift", "Golden", "Sly", "Wild", "Sharp", "Cool", "Grand"}
	nouns := []string{"Shark", "Raven", "Tiger", "Joker", "Dealer", "Fox", "Baron", "Queen", "Knight", "Ace"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
