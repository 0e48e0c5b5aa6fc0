package rest

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

type previewPage struct {
	Document     string
	SizeKB       float64
	WithinBudget bool
}

type viewerPage struct {
	Username string
	Document string
	Owner    string
	IsOwner  bool
	Version  int64
}

type missingPage struct {
	Username    string
	Unreachable bool
}

// srcdoc is filled from a plain string so the whole document is attribute
// escaped and reaches the frame unchanged.
const pageTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.}}</title>
<style>
html,body{margin:0;height:100%;font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif;background:#f5f5f5;color:#111}
iframe{border:0;width:100%;height:100%;display:block}
.bar{position:fixed;top:8px;right:8px;background:#111;color:#fff;border-radius:999px;padding:4px 12px;font-size:12px}
.missing{display:flex;flex-direction:column;align-items:center;justify-content:center;height:100%;gap:8px}
.missing h1{margin:0;font-size:24px}
.missing p{margin:0;color:#666}
</style>
</head>
<body>{{end}}

{{define "preview"}}{{template "head" "Preview"}}
<div class="bar">{{printf "%.1f" .SizeKB}} KB{{if not .WithinBudget}} (over limit){{end}}</div>
<iframe sandbox="allow-same-origin" srcdoc="{{.Document}}"></iframe>
</body>
</html>{{end}}

{{define "viewer"}}{{template "head" .Username}}
{{if .IsOwner}}<div class="bar">you own this page</div>{{end}}
<iframe sandbox="allow-same-origin allow-popups allow-popups-to-escape-sandbox" srcdoc="{{.Document}}"></iframe>
</body>
</html>{{end}}

{{define "missing"}}{{template "head" .Username}}
<div class="missing">
<h1>@{{.Username}}</h1>
{{if .Unreachable}}<p>This page exists but could not be loaded right now.</p>{{else}}<p>This page does not exist yet.</p>{{end}}
</div>
</body>
</html>{{end}}
`

// Renderer renders the host pages that frame published documents.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		templates: template.Must(template.New("pages").Parse(pageTemplates)),
	}
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
