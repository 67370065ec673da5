package handlers

import "net/http"

// Routes registers the API on a new mux. Pronunciation files under audioDir
// are served at AudioPathPrefix when audioDir is set.
func Routes(m *Middleware, auth *AuthHandler, games *GameHandler, audioDir string) http.Handler {
	mux := http.NewServeMux()

	if audioDir != "" {
		mux.Handle("GET "+AudioPathPrefix, http.StripPrefix(AudioPathPrefix, http.FileServer(http.Dir(audioDir))))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/token", m.RateLimit(auth.Login))

	mux.HandleFunc("GET /api/templates", m.RequirePlayer(games.ListTemplates))

	mux.HandleFunc("GET /api/games", m.RequirePlayer(games.ListSaved))

	const game = "/api/games/{mode}/{templateId}"
	mux.HandleFunc("GET "+game, m.RequirePlayer(games.GetGame))
	mux.HandleFunc("DELETE "+game, m.RequirePlayer(games.DeleteGame))
	mux.HandleFunc("POST "+game+"/options", m.RequirePlayer(games.SelectOption))
	mux.HandleFunc("POST "+game+"/letters", m.RequirePlayer(games.PlaceLetter))
	mux.HandleFunc("DELETE "+game+"/letters/{slot}", m.RequirePlayer(games.RemoveLetter))
	mux.HandleFunc("POST "+game+"/advance", m.RequirePlayer(games.Advance))
	mux.HandleFunc("POST "+game+"/reset", m.RequirePlayer(games.Reset))

	return m.Logging(mux)
}
