package app

import (
	"hash/maphash"
	"math/rand/v2"

	"github.com/vancomm/gridsweep/internal/handlers"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	base := a.cfg.BasePath

	game := handlers.NewGameHandler(
		a.logger, a.repo, a.jwt, a.cookies, a.ws, base,
		a.cfg.Sessions.MaxCells, createRand(),
	)

	a.router.HandleFunc("GET "+base+"/presets", game.Presets)
	a.router.HandleFunc("POST "+base+"/game", game.NewGame)
	a.router.HandleFunc("GET "+base+"/game/{id}", game.Fetch)
	a.router.HandleFunc("POST "+base+"/game/{id}/move", game.MakeAMove)
	a.router.HandleFunc("POST "+base+"/game/{id}/forfeit", game.Forfeit)
	a.router.HandleFunc("DELETE "+base+"/game/{id}", game.Close)
	a.router.HandleFunc(base+"/game/{id}/connect", game.ConnectWS)
}
