// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/loginpanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/loginpanel/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/loginpanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/loginpanel/internal/application"
	"github.com/ericfisherdev/loginpanel/internal/domain/port/driven"
)

// User-facing response bodies. msgRegistered keeps its historical spelling.
const (
	msgWelcome        = "Welcome, %s!"
	msgInvalidSignIn  = "Invalid username or password. Please try again."
	msgDuplicate      = "Username already exists. Please choose another one."
	msgInvalidInput   = "Invalid Input"
	msgRegistered     = "Your registration is sucessful %s"
	msgInternalError  = "internal server error"
	msgBadRequest     = "Bad Request"
	msgCSRFValidation = "invalid CSRF token"
)

// Options configure optional GUI behaviour.
type Options struct {
	// CSRF enables token validation on form posts.
	CSRF bool
	// Banner is operator markdown shown above the forms.
	Banner string
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	accounts   *application.AccountService
	csrf       bool
	bannerHTML string
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(accounts *application.AccountService, opts Options, logger *slog.Logger) *Handler {
	return &Handler{
		accounts:   accounts,
		csrf:       opts.CSRF,
		bannerHTML: RenderMarkdown(opts.Banner),
		logger:     logger,
	}
}

// hasRegisterPage reports whether the dedicated /register routes apply.
func (h *Handler) hasRegisterPage() bool {
	return h.accounts.CanSignIn() && h.accounts.CanRegister()
}

// Index renders the landing form. Backends that cannot verify show the
// registration form instead, posting to /signin.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	data := vm.CredentialFormViewModel{
		Title:       "Sign In",
		Heading:     "Sign In",
		Action:      "/signin",
		SubmitLabel: "Sign In",
		CSRFToken:   csrfToken(w, r),
		BannerHTML:  h.bannerHTML,
	}

	switch {
	case !h.accounts.CanSignIn():
		data.Title = "Register"
		data.Heading = "Create an account"
		data.SubmitLabel = "Register"
	case h.hasRegisterPage():
		data.AltLinkPath = "/register"
		data.AltLinkLabel = "Don't have an account? Register"
	}

	h.render(w, r, data)
}

// RegisterForm renders the registration form.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, vm.CredentialFormViewModel{
		Title:        "Register",
		Heading:      "Create an account",
		Action:       "/register",
		SubmitLabel:  "Register",
		CSRFToken:    csrfToken(w, r),
		BannerHTML:   h.bannerHTML,
		AltLinkPath:  "/",
		AltLinkLabel: "Already registered? Sign in",
	})
}

// SignIn verifies the posted credentials. On a backend without verify it
// registers them instead.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	username, password, ok := h.readCredentials(w, r)
	if !ok {
		return
	}

	if !h.accounts.CanSignIn() {
		h.registerViaSignIn(w, r, username, password)
		return
	}

	matched, err := h.accounts.SignIn(r.Context(), username, password)
	if err != nil {
		h.logger.Error("sign-in failed", "username", username, "error", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}

	if matched {
		writeText(w, fmt.Sprintf(msgWelcome, username))
		return
	}
	writeText(w, msgInvalidSignIn)
}

// Register creates an account and redirects to the sign-in page.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	username, password, ok := h.readCredentials(w, r)
	if !ok {
		return
	}

	err := h.accounts.Register(r.Context(), username, password)
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.Is(err, driven.ErrDuplicateUsername):
		writeText(w, msgDuplicate)
	case errors.Is(err, driven.ErrInvalidInput):
		writeText(w, msgInvalidInput)
	default:
		h.logger.Error("registration failed", "username", username, "error", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
	}
}

func (h *Handler) registerViaSignIn(w http.ResponseWriter, r *http.Request, username, password string) {
	err := h.accounts.Register(r.Context(), username, password)
	switch {
	case err == nil:
		writeText(w, fmt.Sprintf(msgRegistered, username))
	case errors.Is(err, driven.ErrInvalidInput):
		writeText(w, msgInvalidInput)
	default:
		h.logger.Error("registration failed", "username", username, "error", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
	}
}

// readCredentials parses the form, enforces CSRF when enabled, and returns
// the username and password fields. A field missing from the body is a 400;
// an empty field is passed through to the backend.
func (h *Handler) readCredentials(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, msgBadRequest, http.StatusBadRequest)
		return "", "", false
	}

	if h.csrf && !validateCSRF(r) {
		http.Error(w, msgCSRFValidation, http.StatusForbidden)
		return "", "", false
	}

	_, hasUser := r.PostForm["username"]
	_, hasPass := r.PostForm["password"]
	if !hasUser || !hasPass {
		http.Error(w, msgBadRequest, http.StatusBadRequest)
		return "", "", false
	}

	return r.PostForm.Get("username"), r.PostForm.Get("password"), true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data vm.CredentialFormViewModel) {
	layout := templates.Layout(data.Title, pages.CredentialForm(data))
	renderHTML(w, r, layout, h.logger)
}

func renderHTML(w http.ResponseWriter, r *http.Request, c templ.Component, logger *slog.Logger) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
	}
}

// writeText writes body as a 200 text/plain response.
func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
