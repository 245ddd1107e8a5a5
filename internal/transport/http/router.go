package httptransport

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"velrixo-casino/internal/config"
	"velrixo-casino/internal/leaderboard"
	"velrixo-casino/internal/ledger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Ledger is the slice of *ledger.Engine the handlers call.
type Ledger interface {
	Balance(ctx context.Context, accountID int64) (int64, error)
	ClaimBonus(ctx context.Context, accountID int64, now time.Time) (ledger.ClaimResult, error)
	Spin(ctx context.Context, accountID int64) (ledger.Settlement, error)
	Coinflip(ctx context.Context, accountID int64) (ledger.Settlement, error)
	Blackjack(ctx context.Context, accountID int64) (ledger.Settlement, error)
	Bet(ctx context.Context, accountID, amount int64) (ledger.Settlement, error)
	Transfer(ctx context.Context, fromID, toID, amount int64) (ledger.TransferResult, error)
}

type Leaderboard interface {
	Top(ctx context.Context, n int) (leaderboard.Board, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Ledger      Ledger
	Leaderboard Leaderboard
	Store       Pinger

	// StartingBalance is what the command catalog advertises.
	StartingBalance int64
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewRouter(deps Deps, cfg config.ServerConfig) *chi.Mux {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	accountHandlers := NewAccountHandlers(deps.Ledger, deps.Now)
	publicHandlers := NewPublicHandlers(deps.Leaderboard, deps.StartingBalance)
	adminHandlers := NewAdminHandlers(deps.Store)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", adminHandlers.Health())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Get("/games", publicHandlers.Games())
		r.Get("/leaderboard", publicHandlers.Leaderboard())

		r.Route("/accounts/{account_id}", func(r chi.Router) {
			r.Use(BodyCaptureMiddleware(4096))
			r.Get("/balance", accountHandlers.Balance())
			r.Post("/bonus", accountHandlers.Bonus())
			r.Post("/spin", accountHandlers.Spin())
			r.Post("/coinflip", accountHandlers.Coinflip())
			r.Post("/blackjack", accountHandlers.Blackjack())
			r.Post("/bet", accountHandlers.Bet())
			r.Post("/transfer", accountHandlers.Transfer())
		})

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
