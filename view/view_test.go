package view

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diewo77/go-trainings/auth"
	"github.com/diewo77/go-trainings/i18n"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setupTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "layout.html"), `<html lang="{{ lang }}">{{ template "header" . }}{{ template "content" . }}</html>`)
	writeFile(t, filepath.Join(dir, "partials", "header.html"), `{{ define "header" }}[{{ if isAdmin }}admin{{ else }}guest{{ end }}]{{ end }}`)
	writeFile(t, filepath.Join(dir, "partials", "errors-alert.html"), `{{ define "errors-alert" }}{{ range .Errors }}<li>{{ . }}</li>{{ end }}{{ end }}`)
	writeFile(t, filepath.Join(dir, "users", "page.html"), `{{ define "content" }}{{ t "login" }}|{{ .Name }}|{{ template "errors-alert" . }}{{ end }}`)
	writeFile(t, filepath.Join(dir, "broken.html"), `{{ define "content" }}{{ .Missing.Field }}{{ end }}`)
	ResetForTests()
	SetBaseDir(dir)
	t.Cleanup(ResetForTests)
	return dir
}

func TestRenderLayoutPartialsAndLanguage(t *testing.T) {
	setupTemplates(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, RenderStatus(rec, req, http.StatusUnprocessableEntity, "users/page.html", map[string]any{"Name": "<b>x</b>", "Errors": []string{"e1"}}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<html lang="fr">`)
	assert.Contains(t, body, "[guest]Connexion|&lt;b&gt;x&lt;/b&gt;|<li>e1</li>")

	// the cached template must not keep the first request's language or identity
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := i18n.WithLang(req.Context(), "en")
	ctx = auth.WithIdentity(ctx, &auth.Identity{ID: 1, IsAdmin: true})
	rec = httptest.NewRecorder()
	require.NoError(t, Render(rec, req.WithContext(ctx), "users/page.html", map[string]any{"Name": "y"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<html lang="en">[admin]Log in|y|`)
}

func TestRenderErrorsWriteNothing(t *testing.T) {
	setupTemplates(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	assert.Error(t, Render(rec, req, "missing.html", nil))
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	assert.Error(t, Render(rec, req, "broken.html", map[string]any{"Missing": 3}))
	assert.Empty(t, rec.Body.String())
}

func TestRenderDefaults(t *testing.T) {
	setupTemplates(t)
	writeFile(t, filepath.Join(baseDir, "who.html"), `{{ define "content" }}{{ .IsLoggedIn }}-{{ .CurrentUserID }}{{ end }}`)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{ID: 7}))
	rec := httptest.NewRecorder()
	require.NoError(t, Render(rec, req, "who.html", nil))
	assert.Contains(t, rec.Body.String(), "true-7")
}

func TestDevModeReloads(t *testing.T) {
	dir := setupTemplates(t)
	SetDevMode(true)
	t.Cleanup(func() { SetDevMode(false) })

	page := filepath.Join(dir, "dev.html")
	writeFile(t, page, `{{ define "content" }}v1{{ end }}`)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, Render(rec, req, "dev.html", nil))
	assert.Contains(t, rec.Body.String(), "v1")

	writeFile(t, page, `{{ define "content" }}v2{{ end }}`)
	rec = httptest.NewRecorder()
	require.NoError(t, Render(rec, req, "dev.html", nil))
	assert.Contains(t, rec.Body.String(), "v2")
}

func TestDict(t *testing.T) {
	dict := Funcs(nil)["dict"].(func(...any) map[string]any)
	assert.Equal(t, map[string]any{"A": 1}, dict("A", 1))
	assert.Nil(t, dict("A"))
}

func TestApplicationTemplatesParse(t *testing.T) {
	ResetForTests()
	SetBaseDir(filepath.Join("..", "templates"))
	t.Cleanup(ResetForTests)

	for _, name := range []string{"index.html", "login.html", "users/index.html", "users/profile.html", "users/edit.html", "users/add.html", "users/invoices.html"} {
		_, err := parse(name)
		assert.NoError(t, err, name)
	}
}
