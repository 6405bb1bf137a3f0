package handlers

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*
var templatesFS embed.FS

func parseTemplate(name string) (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/"+name)
}

func render(w http.ResponseWriter, logger *slog.Logger, tmpl *template.Template, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		logger.Error("failed to render template", "template", tmpl.Name(), "error", err)
	}
}
