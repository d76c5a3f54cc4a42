// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/whitelist/app/services/node/handlers/v1/private"
	"github.com/ardanlabs/whitelist/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/whitelist/foundation/chain/state"
	"github.com/ardanlabs/whitelist/foundation/events"
	"github.com/ardanlabs/whitelist/foundation/nameservice"
	"github.com/ardanlabs/whitelist/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)

	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/accounts/list", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/list/:account", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/tx/uncommitted/list", pbl.Mempool)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitWalletTransaction)

	app.Handle(http.MethodGet, version, "/realm/whitelist/list", pbl.Whitelists)
	app.Handle(http.MethodGet, version, "/realm/whitelist/list/:id", pbl.Whitelists)
	app.Handle(http.MethodGet, version, "/realm/render", pbl.Render)
	app.Handle(http.MethodGet, version, "/realm/render/:path", pbl.Render)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/block/list/:from/:to", prv.BlocksByNumber)
}
