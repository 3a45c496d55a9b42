package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// The /register routes exist only when the backend can both verify and
// register; the file backend registers through POST /signin instead.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("POST /signin", h.SignIn)

	if h.hasRegisterPage() {
		mux.HandleFunc("GET /register", h.RegisterForm)
		mux.HandleFunc("POST /register", h.Register)
	}
}
