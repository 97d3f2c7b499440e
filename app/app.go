package app

import (
	"database/sql"

	"github.com/mbolis/survey-studio/config"
	"github.com/mbolis/survey-studio/httpx"
)

// App carries what the handlers share: the database pool, the token issuer
// and the configuration they were started with.
type App struct {
	*sql.DB
	Tokens *httpx.TokenIssuer
	config.Config
}

func New(db *sql.DB, cfg config.Config) App {
	return App{
		DB:     db,
		Tokens: httpx.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL),
		Config: cfg,
	}
}
