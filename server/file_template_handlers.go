package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"slices"
	"strings"

	"github.com/jrsteele09/go-patient-portal/identity"
	"github.com/jrsteele09/go-patient-portal/patients"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

var templateFuncs = template.FuncMap{
	"patientPath": patientPath,
	"formDate":    patients.FormDate,
	"contains": func(list []string, v string) bool {
		return slices.Contains(list, v)
	},
	"orDash": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	},
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Funcs(templateFuncs).Parse(string(content))
}

// renderPage renders contentTemplate with data inside the page layout
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, pageTitle, contentTemplate string, data any) {
	contentTmpl, err := ParseTemplate(contentTemplate)
	if err != nil {
		log.Err(err).Str("template", contentTemplate).Msg("Failed to load content template")
		http.Error(w, "Failed to load content template", http.StatusInternalServerError)
		return
	}

	var contentBuf bytes.Buffer
	if err := contentTmpl.Execute(&contentBuf, data); err != nil {
		log.Err(err).Str("template", contentTemplate).Msg("Failed to render content")
		http.Error(w, "Failed to render content", http.StatusInternalServerError)
		return
	}

	layoutTmpl, err := ParseTemplate("layout.html")
	if err != nil {
		log.Err(err).Msg("Failed to load layout template")
		http.Error(w, "Failed to load layout template", http.StatusInternalServerError)
		return
	}

	layout := map[string]interface{}{
		"AppName":         s.config.GetAppName(),
		"PageTitle":       pageTitle,
		"IsAuthenticated": false,
		"Content":         template.HTML(contentBuf.String()),
	}
	if session := sessionFromContext(r.Context()); session != nil {
		layout["IsAuthenticated"] = true
		layout["UserName"] = session.Name
		layout["Initials"] = initials(session.Name)
		layout["IsAdmin"] = identity.HasRole(session.Roles, rolePlatformAdmin)
	}

	var page bytes.Buffer
	if err := layoutTmpl.Execute(&page, layout); err != nil {
		log.Err(err).Msg("Failed to render layout")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = page.WriteTo(w)
}

const contentTypeHTML = "text/html; charset=utf-8"

func initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		out = append(out, []rune(strings.ToUpper(part))[0])
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}
