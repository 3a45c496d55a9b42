// Package viewmodel holds the data passed from web handlers to templ components.
package viewmodel

// CredentialFormViewModel describes one username/password form.
type CredentialFormViewModel struct {
	Title       string
	Heading     string
	Action      string
	SubmitLabel string
	CSRFToken   string

	// BannerHTML is sanitized operator markup shown above the form.
	BannerHTML string

	// AltLinkPath and AltLinkLabel point to the other form, when one exists.
	AltLinkPath  string
	AltLinkLabel string
}
