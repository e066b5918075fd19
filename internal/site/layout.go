package site

import (
	"bytes"
	"html/template"

	"github.com/matsen/labsite/internal/config"
	"github.com/matsen/labsite/internal/viz"
)

var layoutTemplate = template.Must(template.New("layout").Funcs(template.FuncMap{
	"authors": authorList,
}).Parse(layoutHTML))

// navLink is an entry in the site navigation.
type navLink struct {
	Title  string
	URL    string
	Active bool
}

// pageView is what the layout template sees.
type pageView struct {
	SiteTitle   string
	Description string
	Title       string
	BuildID     string
	ScriptSrc   string
	HomeURL     string
	Nav         []navLink
	Style       template.CSS
	Body        template.HTML
	Graph       template.HTML
	HasGraph    bool
	Years       []YearGroup
	NotFound    bool
}

// layout renders every page of one site build.
type layout struct {
	cfg       *config.SiteConfig
	scriptSrc string
	buildID   string
}

func newLayout(cfg *config.SiteConfig, scriptSrc, buildID string) *layout {
	if scriptSrc == "" {
		scriptSrc = viz.DefaultScriptSrc
	}
	return &layout{cfg: cfg, scriptSrc: scriptSrc, buildID: buildID}
}

func (l *layout) base(title, activeSlug string) pageView {
	v := pageView{
		SiteTitle:   l.cfg.Title,
		Description: l.cfg.Description,
		Title:       title,
		BuildID:     l.buildID,
		ScriptSrc:   l.scriptSrc,
		HomeURL:     pageURL(l.cfg.BasePath, ""),
		Style:       template.CSS(siteCSS + viz.SectionCSS),
	}
	for _, p := range l.cfg.Pages {
		v.Nav = append(v.Nav, navLink{
			Title:  p.Title,
			URL:    pageURL(l.cfg.BasePath, p.Slug),
			Active: p.Slug == activeSlug,
		})
	}
	return v
}

// renderPage renders a configured page. A page with the graph in full-page mode
// also lists the publications by year.
func (l *layout) renderPage(p config.Page, model *viz.Model, years []YearGroup) ([]byte, error) {
	v := l.base(p.Title, p.Slug)
	v.Body = template.HTML(p.Body)

	if p.Graph {
		title := l.cfg.Graph.Title
		if title == "" {
			title = defaultGraphTitle
		}
		section, err := viz.SectionHTML(viz.SectionData{
			Title:       title,
			Description: l.cfg.Graph.Description,
			Embedded:    p.Embedded,
			Model:       model,
			Options:     viz.DefaultOptions(),
		})
		if err != nil {
			return nil, err
		}
		v.Graph = section
		v.HasGraph = true
		if !p.Embedded {
			v.Years = years
		}
	}
	return execute(v)
}

func (l *layout) renderNotFound() ([]byte, error) {
	v := l.base(notFoundTitle, "")
	for i := range v.Nav {
		v.Nav[i].Active = false
	}
	v.NotFound = true
	return execute(v)
}

func execute(v pageView) ([]byte, error) {
	var buf bytes.Buffer
	if err := layoutTemplate.Execute(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const siteCSS = `
body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
  margin: 0; background: #fafafa; color: #171717;
}
.site-header { border-bottom: 1px solid #e5e5e5; background: #fff; }
.site-header nav { max-width: 72rem; margin: 0 auto; padding: 1rem; display: flex; gap: 1.5rem; align-items: baseline; }
.site-title { font-family: Georgia, serif; font-weight: bold; font-size: 1.25rem; color: inherit; text-decoration: none; }
.site-header a { color: #525252; text-decoration: none; }
.site-header a.active { color: #B7410E; }
main { max-width: 72rem; margin: 0 auto; padding: 1rem; }
.publications h2 { font-family: Georgia, serif; border-bottom: 1px solid #e5e5e5; }
.publications li { margin-bottom: 0.75rem; }
.publications .venue { font-style: italic; }
.not-found { text-align: center; padding: 6rem 0; }
.not-found h1 { font-family: Georgia, serif; font-size: 2.25rem; }
`

const layoutHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta name="generator" content="labsite {{.BuildID}}">
  <title>{{if .Title}}{{.Title}} | {{end}}{{.SiteTitle}}</title>
  {{- if .Description}}
  <meta name="description" content="{{.Description}}">
  {{- end}}
  {{- if .HasGraph}}
  <script src="{{.ScriptSrc}}"></script>
  {{- end}}
  <style>{{.Style}}</style>
</head>
<body>
<header class="site-header">
  <nav>
    <a class="site-title" href="{{.HomeURL}}">{{.SiteTitle}}</a>
    {{- range .Nav}}
    <a href="{{.URL}}"{{if .Active}} class="active"{{end}}>{{.Title}}</a>
    {{- end}}
  </nav>
</header>
<main>
{{- if .NotFound}}
  <div class="not-found">
    <h1>Page not found</h1>
    <p>The page you are looking for does not exist.</p>
    <p><a href="{{.HomeURL}}">Return home</a></p>
  </div>
{{- else}}
  {{.Body}}
  {{.Graph}}
  {{- if .Years}}
  <section class="publications">
    {{- range .Years}}
    <h2>{{.Year}}</h2>
    <ol>
      {{- range .Publications}}
      <li>
        <span class="authors">{{authors .Authors}}</span>.
        <span class="title">{{.Title}}</span>.
        {{- if .Venue}} <span class="venue">{{.Venue}}</span>.{{end}}
        {{- if .DOI}} <a href="https://doi.org/{{.DOI}}">doi:{{.DOI}}</a>{{end}}
      </li>
      {{- end}}
    </ol>
    {{- end}}
  </section>
  {{- end}}
{{- end}}
</main>
</body>
</html>
`
