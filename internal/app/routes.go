package app

import (
	"hash/maphash"
	"math/rand/v2"

	"github.com/vancomm/sweeper/internal/handlers"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	rounds := handlers.NewRoundHandler(
		a.logger, a.sessions, a.mode, a.storage.Slots, a.storage.Results, a.ws,
	)

	a.router.HandleFunc("POST /round", rounds.NewRound)
	a.router.HandleFunc("GET /round/{id}", rounds.Fetch)
	a.router.HandleFunc("DELETE /round/{id}", rounds.Delete)
	a.router.HandleFunc("POST /round/{id}/move", rounds.MakeAMove)
	a.router.HandleFunc("POST /round/{id}/next", rounds.Next)
	a.router.HandleFunc("POST /round/{id}/reset", rounds.Reset)
	a.router.HandleFunc("PUT /round/{id}/save/{slot}", rounds.Save)
	a.router.HandleFunc("POST /round/{id}/save/{slot}", rounds.SaveNew)
	a.router.HandleFunc("POST /round/{id}/load/{slot}", rounds.Load)
	a.router.HandleFunc("GET /results", rounds.BestTimes)
	a.router.HandleFunc("/round/{id}/connect", rounds.ConnectWS)
}
