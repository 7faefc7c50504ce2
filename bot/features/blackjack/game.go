package blackjack

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
)

const numDecks = 4

// dealer stands on 17 and above
const dealerStand = 17

var (
	ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
	suits = []string{"♠", "♥", "♦", "♣"}
)

// Card is one playing card
type Card struct {
	Rank string
	Suit string
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

// value returns the card's blackjack value, aces as 11
func (c Card) value() int {
	switch c.Rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	default:
		return int(c.Rank[0] - '0')
	}
}

// newShoe builds and shuffles a multi-deck shoe
func newShoe() []Card {
	shoe := make([]Card, 0, numDecks*52)
	for d := 0; d < numDecks; d++ {
		for _, suit := range suits {
			for _, rank := range ranks {
				shoe = append(shoe, Card{Rank: rank, Suit: suit})
			}
		}
	}
	rand.Shuffle(len(shoe), func(i, j int) {
		shoe[i], shoe[j] = shoe[j], shoe[i]
	})
	return shoe
}

// HandValue totals a hand, counting aces as 11 and dropping them to 1
// while the hand busts.
func HandValue(cards []Card) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += c.value()
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// Hand is one player hand; splitting produces several
type Hand struct {
	Cards   []Card
	Bet     int64
	Doubled bool
	Stood   bool
	split   bool
}

// Busted reports whether the hand went over 21
func (h *Hand) Busted() bool {
	return HandValue(h.Cards) > 21
}

// Done reports whether the hand takes no more cards
func (h *Hand) Done() bool {
	return h.Stood || h.Busted() || HandValue(h.Cards) == 21
}

// IsBlackjack reports a natural: 21 from the first two dealt cards.
// Split hands can't be naturals.
func (h *Hand) IsBlackjack() bool {
	return !h.split && len(h.Cards) == 2 && HandValue(h.Cards) == 21
}

func (h *Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// State is the game phase
type State string

const (
	StatePlayerTurn State = "player_turn"
	StateSettled    State = "settled"
)

// Game is one user's blackjack session. The mutex guards every state read
// and write: button presses and the session reaper each arrive on their own
// goroutine, and a settled hand must never pay out twice.
type Game struct {
	mu sync.Mutex

	shoe   []Card
	Hands  []*Hand
	Dealer []Card
	state  State

	// active is the hand currently taking cards
	active int

	InsuranceBet int64
	baseBet      int64
	forfeited    bool
	paid         bool
}

// NewGame deals the opening hands
func NewGame(bet int64) *Game {
	g := &Game{
		shoe:    newShoe(),
		state:   StatePlayerTurn,
		baseBet: bet,
	}
	hand := &Hand{Bet: bet}
	hand.Cards = append(hand.Cards, g.draw(), g.draw())
	g.Hands = []*Hand{hand}
	g.Dealer = append(g.Dealer, g.draw(), g.draw())

	// A dealt natural settles immediately
	if hand.IsBlackjack() || g.dealerBlackjack() {
		g.finish()
	}
	return g
}

func (g *Game) draw() Card {
	card := g.shoe[0]
	g.shoe = g.shoe[1:]
	return card
}

// State returns the current game phase
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// activeHand returns the hand currently playing, or nil once settled.
// Callers hold the lock.
func (g *Game) activeHand() *Hand {
	if g.state != StatePlayerTurn || g.active >= len(g.Hands) {
		return nil
	}
	return g.Hands[g.active]
}

// ActiveBet returns the stake of the hand currently playing, 0 once settled
func (g *Game) ActiveBet() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	hand := g.activeHand()
	if hand == nil {
		return 0
	}
	return hand.Bet
}

// advance moves to the next unfinished hand, running the dealer when all
// hands are done. Callers hold the lock.
func (g *Game) advance() {
	for g.active < len(g.Hands) && g.Hands[g.active].Done() {
		g.active++
	}
	if g.active >= len(g.Hands) {
		g.finish()
	}
}

// Hit deals one card to the active hand
func (g *Game) Hit() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	hand := g.activeHand()
	if hand == nil {
		return fmt.Errorf("no hand to hit")
	}
	hand.Cards = append(hand.Cards, g.draw())
	g.advance()
	return nil
}

// Stand ends the active hand
func (g *Game) Stand() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	hand := g.activeHand()
	if hand == nil {
		return fmt.Errorf("no hand to stand")
	}
	hand.Stood = true
	g.advance()
	return nil
}

// canDouble reports whether the active hand may double down.
// Callers hold the lock.
func (g *Game) canDouble() bool {
	hand := g.activeHand()
	return hand != nil && len(hand.Cards) == 2 && !hand.Doubled
}

// CanDouble reports whether the active hand may double down
func (g *Game) CanDouble() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canDouble()
}

// Double doubles the stake, deals exactly one card, and stands.
// The caller must debit the extra stake first.
func (g *Game) Double() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.canDouble() {
		return fmt.Errorf("cannot double down")
	}
	hand := g.activeHand()
	hand.Bet *= 2
	hand.Doubled = true
	hand.Cards = append(hand.Cards, g.draw())
	hand.Stood = true
	g.advance()
	return nil
}

// canSplit reports whether the active hand may split. Callers hold the lock.
func (g *Game) canSplit() bool {
	hand := g.activeHand()
	return hand != nil && len(hand.Cards) == 2 &&
		hand.Cards[0].Rank == hand.Cards[1].Rank &&
		len(g.Hands) < 4
}

// CanSplit reports whether the active hand may split
func (g *Game) CanSplit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canSplit()
}

// Split turns a pair into two hands, each dealt a second card.
// The caller must debit the second stake first.
func (g *Game) Split() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.canSplit() {
		return fmt.Errorf("cannot split")
	}
	hand := g.activeHand()
	second := &Hand{
		Cards: []Card{hand.Cards[1]},
		Bet:   hand.Bet,
		split: true,
	}
	hand.Cards = hand.Cards[:1]
	hand.split = true
	hand.Cards = append(hand.Cards, g.draw())
	second.Cards = append(second.Cards, g.draw())

	rest := append([]*Hand{}, g.Hands[g.active+1:]...)
	g.Hands = append(append(g.Hands[:g.active+1], second), rest...)
	g.advance()
	return nil
}

// canInsure reports whether insurance is available: dealer shows an ace,
// first decision of the game, not yet taken. Callers hold the lock.
func (g *Game) canInsure() bool {
	return g.state == StatePlayerTurn &&
		g.InsuranceBet == 0 &&
		len(g.Hands) == 1 &&
		len(g.Hands[0].Cards) == 2 &&
		g.Dealer[0].Rank == "A"
}

// CanInsure reports whether insurance is available
func (g *Game) CanInsure() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canInsure()
}

// Insure places the side bet. The caller must debit amount first;
// by convention it is half the base bet.
func (g *Game) Insure(amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.canInsure() {
		return fmt.Errorf("insurance not available")
	}
	g.InsuranceBet = amount
	return nil
}

// InsuranceCost returns the price of insurance
func (g *Game) InsuranceCost() int64 {
	return g.baseBet / 2
}

// dealerBlackjack reports a dealer natural. Callers hold the lock.
func (g *Game) dealerBlackjack() bool {
	return len(g.Dealer) == 2 && HandValue(g.Dealer) == 21
}

// DealerBlackjack reports a dealer natural
func (g *Game) DealerBlackjack() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dealerBlackjack()
}

// finish runs the dealer and settles the game. Callers hold the lock.
func (g *Game) finish() {
	anyLive := false
	for _, h := range g.Hands {
		if !h.Busted() && !h.IsBlackjack() {
			anyLive = true
			break
		}
	}
	if anyLive {
		for HandValue(g.Dealer) < dealerStand {
			g.Dealer = append(g.Dealer, g.draw())
		}
	}
	g.state = StateSettled
}

// Forfeit abandons the game; all stakes are lost. Returns false when the
// game had already settled.
func (g *Game) Forfeit() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateSettled {
		return false
	}
	g.forfeited = true
	g.state = StateSettled
	return true
}

// payout computes the total amount to credit back: settled winnings for
// each hand plus any insurance payout. Stakes were debited up front, so a
// push credits the stake and a loss credits nothing. Callers hold the lock.
func (g *Game) payout() int64 {
	if g.state != StateSettled || g.forfeited {
		return 0
	}

	dealerValue := HandValue(g.Dealer)
	dealerBust := dealerValue > 21
	dealerNatural := g.dealerBlackjack()

	var total int64
	for _, h := range g.Hands {
		value := HandValue(h.Cards)
		switch {
		case h.Busted():
			// nothing
		case h.IsBlackjack() && !dealerNatural:
			total += int64(float64(h.Bet) * 2.5)
		case dealerNatural && !h.IsBlackjack():
			// nothing
		case dealerBust || value > dealerValue:
			total += h.Bet * 2
		case value == dealerValue:
			total += h.Bet
		}
	}

	if g.InsuranceBet > 0 && dealerNatural {
		total += g.InsuranceBet * 3
	}

	return total
}

// Payout returns what a settled game pays, without claiming it
func (g *Game) Payout() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.payout()
}

// SettlePayout claims the payout of a settled game exactly once. The claim
// and the amount are one locked step, so racing callers credit at most
// once: later calls return false.
func (g *Game) SettlePayout() (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateSettled || g.paid {
		return 0, false
	}
	g.paid = true
	return g.payout(), true
}

// totalStaked sums everything debited for this game. Callers hold the lock.
func (g *Game) totalStaked() int64 {
	var total int64
	for _, h := range g.Hands {
		total += h.Bet
	}
	return total + g.InsuranceBet
}

// TotalStaked returns everything debited for this game
func (g *Game) TotalStaked() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.totalStaked()
}

// HandView is a rendering copy of one hand
type HandView struct {
	Cards  []Card
	Bet    int64
	Active bool
}

// View is a point-in-time copy of the game for rendering
type View struct {
	Hands     []HandView
	Dealer    []Card
	State     State
	Staked    int64
	CanDouble bool
	CanSplit  bool
	CanInsure bool
}

// View snapshots the game under the lock so rendering never races a press
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := View{
		State:     g.state,
		Staked:    g.totalStaked(),
		CanDouble: g.canDouble(),
		CanSplit:  g.canSplit(),
		CanInsure: g.canInsure(),
		Dealer:    append([]Card(nil), g.Dealer...),
	}
	active := g.activeHand()
	for _, h := range g.Hands {
		v.Hands = append(v.Hands, HandView{
			Cards:  append([]Card(nil), h.Cards...),
			Bet:    h.Bet,
			Active: h == active,
		})
	}
	return v
}
