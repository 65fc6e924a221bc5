package view

import (
	"fmt"
	"html/template"
	"io"
)

var (
	pageTmpl   = template.Must(template.New("page").Parse(pageTemplate))
	reportTmpl = template.Must(template.New("report").Parse(reportTemplate))
)

// PageData parameterizes the viewer shell.
type PageData struct {
	DefaultLimit int
	MaxLimit     int
}

// RenderPage writes the viewer shell.
func RenderPage(w io.Writer, data PageData) error {
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// RenderReport writes the card list as an HTML fragment.
func RenderReport(w io.Writer, cards []Card) error {
	if err := reportTmpl.Execute(w, cards); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
