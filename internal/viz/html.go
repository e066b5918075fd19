package viz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"
)

// DefaultScriptSrc is the CDN build of vis-network used when no local copy is configured.
const DefaultScriptSrc = "https://unpkg.com/vis-network@9/standalone/umd/vis-network.min.js"

// DefaultHintDuration is how long the "Copied!" hint stays visible.
const DefaultHintDuration = 2 * time.Second

// sectionID is the DOM id of the widget container. One graph section per page.
const sectionID = "coauthor-graph"

// compiled templates are parsed at init time to fail fast on template errors.
var (
	sectionTemplate *template.Template
	pageTemplate    *template.Template
)

func init() {
	sectionTemplate = template.Must(template.New("section").Parse(sectionHTML))
	pageTemplate = template.Must(template.New("page").Parse(pageHTML))
}

// SectionData configures one rendered graph section.
type SectionData struct {
	Title        string
	Description  string
	Embedded     bool // Compact sizing for embedding in another page
	Model        *Model
	Options      Options
	HintDuration time.Duration
}

// sectionView is what the section template sees.
type sectionView struct {
	ID          string
	Title       string
	Description string
	Embedded    bool
	Empty       bool
	DataJSON    template.JS
	OptionsJSON template.JS
	HintMillis  int64
}

// RenderSection writes the graph section: a title, the widget mount point behind a
// skeleton placeholder, and the copy hint. With no nodes it writes the empty state
// instead of mounting the widget.
func RenderSection(w io.Writer, data SectionData) error {
	view := sectionView{
		ID:          sectionID,
		Title:       data.Title,
		Description: data.Description,
		Embedded:    data.Embedded,
		Empty:       data.Model.IsEmpty(),
		HintMillis:  data.HintDuration.Milliseconds(),
	}
	if view.HintMillis <= 0 {
		view.HintMillis = DefaultHintDuration.Milliseconds()
	}

	if !view.Empty {
		graphJSON, err := json.Marshal(data.Model)
		if err != nil {
			return fmt.Errorf("marshaling graph model: %w", err)
		}
		optsJSON, err := data.Options.JSON()
		if err != nil {
			return err
		}
		view.DataJSON = template.JS(graphJSON)
		view.OptionsJSON = template.JS(optsJSON)
	}

	return sectionTemplate.Execute(w, view)
}

// SectionHTML renders a section to an HTML fragment for embedding in a page template.
func SectionHTML(data SectionData) (template.HTML, error) {
	var buf bytes.Buffer
	if err := RenderSection(&buf, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// HTMLOptions configures standalone page generation.
type HTMLOptions struct {
	Title       string
	Description string
	ScriptSrc   string // vis-network script URL or relative path; empty uses the CDN
}

// GenerateHTML generates a self-contained HTML page showing the graph full-size.
func GenerateHTML(model *Model, opts HTMLOptions) (string, error) {
	if model == nil {
		return "", fmt.Errorf("model cannot be nil")
	}

	title := opts.Title
	if title == "" {
		title = "Co-author Network"
	}

	section, err := SectionHTML(SectionData{
		Title:       title,
		Description: opts.Description,
		Model:       model,
		Options:     DefaultOptions(),
	})
	if err != nil {
		return "", err
	}

	scriptSrc := opts.ScriptSrc
	if scriptSrc == "" {
		scriptSrc = DefaultScriptSrc
	}

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, struct {
		Title     string
		ScriptSrc string
		Style     template.CSS
		Section   template.HTML
	}{
		Title:     title,
		ScriptSrc: scriptSrc,
		Style:     template.CSS(SectionCSS),
		Section:   section,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SectionCSS styles the graph section. Pages that embed a section include it once.
const SectionCSS = `
.graph { width: 100%; margin: 0 auto; }
.graph--full { max-width: 72rem; padding: 2rem 0; }
.graph h1 { font-family: Georgia, serif; font-weight: bold; margin: 0 0 1rem; }
.graph--full h1 { font-size: 2.25rem; }
.graph--embedded h1 { font-size: 1.5rem; }
.graph__description { color: #525252; max-width: 42rem; margin: 0 0 1rem; }
.graph__frame {
  width: 100%; background: #fff; border: 1px solid #e5e5e5; border-radius: 0.75rem;
  box-shadow: 0 10px 15px rgba(0,0,0,0.1); padding: 1rem; box-sizing: border-box;
}
.graph--full .graph__frame { height: 70vh; min-height: 550px; }
.graph--embedded .graph__frame { height: 400px; }
.graph__canvas { width: 100%; height: 100%; }
.graph__skeleton {
  width: 100%; height: 100%; border-radius: 0.75rem; background: #f5f5f5;
  animation: graph-pulse 1.5s ease-in-out infinite;
}
@keyframes graph-pulse { 50% { opacity: 0.5; } }
.graph__empty {
  display: flex; flex-direction: column; align-items: center; justify-content: center;
  height: 100%; color: #6b7280; font-size: 1.125rem;
}
.graph__empty svg { width: 3rem; height: 3rem; margin-bottom: 0.75rem; color: #9ca3af; }
.copy-hint {
  position: fixed; bottom: 2rem; left: 50%; transform: translateX(-50%);
  padding: 0.75rem; background: #1f2937; color: #fff; border-radius: 0.5rem;
  box-shadow: 0 25px 50px rgba(0,0,0,0.25); z-index: 1000; pointer-events: none;
  display: flex; align-items: center; gap: 0.5rem; font-size: 0.875rem;
}
.copy-hint[hidden] { display: none; }
.copy-hint__icon { color: #4ade80; }
`

const sectionHTML = `<section class="graph {{if .Embedded}}graph--embedded{{else}}graph--full{{end}}">
  <div class="graph__header">
    <h1>{{.Title}}</h1>
    {{- if .Description}}
    <p class="graph__description">{{.Description}}</p>
    {{- end}}
  </div>
  <div class="graph__frame">
  {{- if .Empty}}
    <div class="graph__empty">
      <svg xmlns="http://www.w3.org/2000/svg" fill="none" viewBox="0 0 24 24" stroke-width="1.5" stroke="currentColor" aria-hidden="true">
        <path stroke-linecap="round" stroke-linejoin="round" d="M7.5 14.25v2.25m3-4.5v4.5m3-6.75v6.75m3-9v9M6 20.25h12A2.25 2.25 0 0 0 20.25 18V6A2.25 2.25 0 0 0 18 3.75H6A2.25 2.25 0 0 0 3.75 6v12A2.25 2.25 0 0 0 6 20.25Z"/>
      </svg>
      <p>None</p>
    </div>
  {{- else}}
    <div class="graph__skeleton" id="{{.ID}}-skeleton"></div>
    <div class="graph__canvas" id="{{.ID}}" hidden></div>
  {{- end}}
  </div>
  <div class="copy-hint" id="{{.ID}}-hint" role="status" hidden>
    <span class="copy-hint__icon">&#10003;</span><span>Copied!</span>
  </div>
</section>
{{- if not .Empty}}
<script>
(function() {
  const graphData = {{.DataJSON}};
  const options = {{.OptionsJSON}};
  const hintMillis = {{.HintMillis}};
  const containerId = {{.ID}};

  // Render tooltip markup as text lines; the raw title is kept for copying.
  function tooltip(title) {
    const el = document.createElement('div');
    el.style.whiteSpace = 'pre-line';
    el.innerText = title.replace(/<hr>/g, '\n').replace(/<br>/g, '\n');
    return el;
  }

  function copyText(title) {
    return title.replace(/<br>/g, '\n').replace(/<hr>/g, '—');
  }

  function mount() {
    if (typeof vis === 'undefined') {
      return;
    }
    const container = document.getElementById(containerId);
    const skeleton = document.getElementById(containerId + '-skeleton');
    const hint = document.getElementById(containerId + '-hint');

    const nodes = new vis.DataSet(graphData.nodes.map(function(n) {
      return Object.assign({}, n, { title: tooltip(n.title) });
    }));
    const edges = new vis.DataSet(graphData.edges.map(function(e) {
      return Object.assign({}, e, { title: tooltip(e.title) });
    }));

    skeleton.remove();
    container.hidden = false;
    const network = new vis.Network(container, { nodes: nodes, edges: edges }, options);

    let hintTimer = null;
    function showHint() {
      hint.hidden = false;
      if (hintTimer !== null) {
        clearTimeout(hintTimer);
      }
      hintTimer = setTimeout(function() {
        hint.hidden = true;
        hintTimer = null;
      }, hintMillis);
    }

    network.on('selectEdge', function(params) {
      if (params.edges.length !== 1) {
        return;
      }
      const edgeId = params.edges[0];
      const edge = graphData.edges.find(function(e) { return e.id === edgeId; });
      if (edge && edge.title && navigator.clipboard) {
        navigator.clipboard.writeText(copyText(edge.title)).then(showHint).catch(function() {});
      }
      network.unselectAll();
    });

    network.on('click', function(params) {
      if (params.edges.length === 0) {
        network.unselectAll();
      }
    });

    window.addEventListener('pagehide', function() {
      if (hintTimer !== null) {
        clearTimeout(hintTimer);
        hintTimer = null;
      }
    });
  }

  if (document.readyState === 'loading') {
    document.addEventListener('DOMContentLoaded', mount);
  } else {
    mount();
  }
})();
</script>
{{- end}}
`

const pageHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <script src="{{.ScriptSrc}}"></script>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0 1rem;
      background: #fafafa;
    }
    {{.Style}}
  </style>
</head>
<body>
{{.Section}}
</body>
</html>
`
