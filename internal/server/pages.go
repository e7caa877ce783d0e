// internal/server/pages.go
package server

import (
	"html/template"
	"net/http"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} — vigil</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 40rem; margin: 3rem auto; padding: 0 1rem; color: #222; }
h1 { font-size: 1.4rem; }
label { display: block; margin: 0.6rem 0 0.2rem; }
input[type=text], input[type=email] { width: 100%; padding: 0.4rem; }
button { margin-top: 1rem; padding: 0.5rem 1.2rem; }
footer { margin-top: 3rem; font-size: 0.8rem; color: #888; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Body}}
<footer><a href="/privacy">Privacy</a> &middot; <a href="/terms">Terms</a></footer>
</body>
</html>
`))

type pageData struct {
	Title string
	Body  template.HTML
}

const consentBody = template.HTML(`
<p>This dashboard displays AI safety evaluation results. Viewing them requires
acknowledging the terms below.</p>
<form method="post" action="/consent">
<label for="name">Name</label>
<input type="text" id="name" name="name" required>
<label for="email">Email</label>
<input type="email" id="email" name="email" required>
<label><input type="checkbox" name="agree"> I agree to the <a href="/terms">terms</a> and <a href="/privacy">privacy policy</a>.</label>
<button type="submit">Continue</button>
</form>
`)

const privacyBody = template.HTML(`
<p>Consent submissions are stored locally in an append-only CSV containing the
timestamp, the name and email you provide, and your browser user agent. Nothing
is sent to third parties. Evaluation logs are read from the local filesystem
and never modified.</p>
`)

const termsBody = template.HTML(`
<p>The evaluation results shown here are test artifacts for model safety
research. They may include harmful prompt content used to probe refusal
behavior. Do not redistribute raw test content outside your organization.</p>
`)

func (s *Server) handleConsentForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, "Consent Required", consentBody)
}

func staticPage(title string, body template.HTML) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		renderPage(w, title, body)
	}
}

func renderPage(w http.ResponseWriter, title string, body template.HTML) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = pageTmpl.Execute(w, pageData{Title: title, Body: body})
}
