// Package view renders the html/template pages of the application.
//
// Each page template is parsed together with layout.html and the partials found
// next to it. Parsed templates are cached unless dev mode is on; request bound
// helpers (t, lang, isAdmin) are attached to a clone at execution time.
package view

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/diewo77/go-trainings/auth"
	"github.com/diewo77/go-trainings/i18n"
)

var (
	baseDir  string
	once     sync.Once
	devMode  bool
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}
)

var partialNames = []string{"header.html", "errors-alert.html"}

// layoutBase walks upward from a template path to find the directory that contains layout.html.
// If none is found, it returns the template's own directory.
func layoutBase(mainPath string) string {
	d := filepath.Dir(mainPath)
	for {
		lp := filepath.Join(d, "layout.html")
		if fi, err := os.Stat(lp); err == nil && !fi.IsDir() {
			return d
		}
		p := filepath.Dir(d)
		if p == d {
			return filepath.Dir(mainPath)
		}
		d = p
	}
}

func detectBase() {
	candidates := []string{"templates", "../templates", "../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the func map bound to r.
func Funcs(r *http.Request) template.FuncMap {
	lang := i18n.DefaultLang
	var ident *auth.Identity
	if r != nil {
		lang = i18n.LangFromContext(r.Context())
		ident = auth.IdentityFromContext(r.Context())
	}
	return template.FuncMap{
		"t":       func(code string) string { return i18n.T(lang, code) },
		"lang":    func() string { return lang },
		"isAdmin": func() bool { return ident != nil && ident.IsAdmin },
		"year":    func() int { return time.Now().Year() },
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// SetBaseDir overrides the template base directory (useful for tests or custom setups).
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseDir = filepath.Clean(path)
	once = sync.Once{}
}

// SetDevMode disables the template cache so edits show up without a restart.
func SetDevMode(on bool) {
	devMode = on
}

// ResetForTests clears caches and forces base dir detection to rerun.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
	baseDir = ""
	once = sync.Once{}
}

// Render executes the page template name with status 200.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	return RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus executes the page template name and writes it with status.
// Nothing is written when the template fails.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	if baseDir == "" {
		once.Do(detectBase)
	}
	if data == nil {
		data = map[string]any{}
	}
	ident := auth.IdentityFromContext(r.Context())
	setDefault(data, "Year", time.Now().Year())
	setDefault(data, "IsLoggedIn", ident != nil)
	if ident != nil {
		setDefault(data, "CurrentUserID", ident.ID)
	}

	t, err := lookup(name)
	if err != nil {
		return err
	}
	t, err = t.Clone()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.Funcs(Funcs(r)).Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

func setDefault(data map[string]any, key string, value any) {
	if _, exists := data[key]; !exists {
		data[key] = value
	}
}

func lookup(name string) (*template.Template, error) {
	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok {
			return t, nil
		}
	}
	t, err := parse(name)
	if err != nil {
		return nil, err
	}
	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return t, nil
}

func parse(name string) (*template.Template, error) {
	mainPath := filepath.Join(baseDir, name)
	if _, err := os.Stat(mainPath); err != nil {
		return nil, err
	}
	root := layoutBase(mainPath)
	layoutPath := filepath.Join(root, "layout.html")
	if fi, err := os.Stat(layoutPath); err != nil || fi.IsDir() {
		return template.New(filepath.Base(name)).Funcs(Funcs(nil)).ParseFiles(mainPath)
	}
	files := []string{layoutPath, mainPath}
	for _, p := range partialNames {
		pp := filepath.Join(root, "partials", p)
		if fi, err := os.Stat(pp); err == nil && !fi.IsDir() {
			files = append(files, pp)
		}
	}
	t, err := template.New("layout.html").Funcs(Funcs(nil)).ParseFiles(files...)
	if err != nil {
		return nil, err
	}
	if t.Lookup("content") == nil {
		return nil, errors.New("view: " + name + " does not define a content block")
	}
	return t, nil
}
