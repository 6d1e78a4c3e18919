package web

import (
	"bytes"
	"html/template"

	"datachat-cli/internal/api"
	"datachat-cli/internal/service"
	"datachat-cli/internal/session"
)

// Values from the backend are escaped once with service.EscapeHTML and
// handed to the template as template.HTML so they are not escaped again.
type pageData struct {
	Question string
	Agents   []agentOption
	Notice   string

	HasResult    bool
	PrettyActive bool

	Failed    bool
	ErrorKind string
	ErrorText template.HTML

	Answer template.HTML
	SQL    template.HTML
	Notes  template.HTML
	Meta   template.HTML
	Table  *tableData
	Raw    template.HTML
}

type agentOption struct {
	Key      string
	Desc     string
	Selected bool
}

type tableData struct {
	Header  []template.HTML
	Body    [][]template.HTML
	Summary string
	Notice  string
}

func newPageData(s session.State, question, agent string) pageData {
	d := pageData{
		Question:     question,
		Notice:       s.Notice,
		HasResult:    s.Outcome != session.OutcomeNone,
		PrettyActive: s.Tab == session.TabPretty,
		Raw:          html(s.Raw),
	}
	for _, a := range api.Agents {
		d.Agents = append(d.Agents, agentOption{Key: a.Key, Desc: a.Desc, Selected: a.Key == agent})
	}

	if s.Outcome == session.OutcomeFailed {
		d.Failed = true
		d.ErrorKind = session.ErrorLabel(s.Err)
		d.ErrorText = html(s.Err.Error())
		return d
	}

	res := s.Result
	d.Answer = html(res.AnswerText)
	d.SQL = html(res.SQL)
	d.Notes = html(res.Notes)
	meta := res.Agent
	if res.Mode != "" {
		if meta != "" {
			meta += " · "
		}
		meta += res.Mode
	}
	d.Meta = html(meta)

	if tbl := s.Table(service.HTMLCell); tbl.Visible {
		td := &tableData{Summary: tbl.Summary(), Notice: tbl.Notice}
		for _, h := range tbl.Header {
			td.Header = append(td.Header, template.HTML(h))
		}
		for _, row := range tbl.Body {
			cells := make([]template.HTML, len(row))
			for i, c := range row {
				cells[i] = template.HTML(c)
			}
			td.Body = append(td.Body, cells)
		}
		d.Table = td
	}
	return d
}

func html(v any) template.HTML {
	return template.HTML(service.EscapeHTML(v))
}

func renderPage(d pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>datachat</title>
    <style>
      :root {
        --bg: #0b1020;
        --panel: #111832;
        --text: #e9edf7;
        --muted: #a5b0cc;
        --border: rgba(255, 255, 255, 0.10);
        --accent: #f28c28;
        --bad: #fb7185;
        --warn: #fbbf24;
        --mono: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, monospace;
        --sans: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial;
      }
      * { box-sizing: border-box; }
      body { margin: 0; background: var(--bg); color: var(--text); font-family: var(--sans); }
      main { max-width: 1100px; margin: 0 auto; padding: 24px; }
      h1 { font-size: 20px; margin: 0 0 16px; }
      form { display: flex; gap: 8px; flex-wrap: wrap; }
      textarea { flex: 1 1 480px; min-height: 64px; background: var(--panel); color: var(--text); border: 1px solid var(--border); border-radius: 8px; padding: 10px; font: inherit; }
      select, button { background: var(--panel); color: var(--text); border: 1px solid var(--border); border-radius: 8px; padding: 8px 12px; font: inherit; }
      button.primary { background: var(--accent); color: #1b1204; font-weight: 600; }
      .notice { margin: 12px 0; color: var(--warn); }
      .error { margin: 12px 0; color: var(--bad); }
      .tabs { margin-top: 20px; }
      .tabs > input { display: none; }
      .tabs > label { display: inline-block; padding: 6px 14px; border: 1px solid var(--border); border-bottom: none; border-radius: 8px 8px 0 0; color: var(--muted); cursor: pointer; }
      .tabs > input:checked + label { color: var(--text); background: var(--panel); }
      .panel { display: none; background: var(--panel); border: 1px solid var(--border); border-radius: 0 8px 8px 8px; padding: 16px; }
      #tab-pretty:checked ~ .pretty, #tab-raw:checked ~ .raw { display: block; }
      .answer { white-space: pre-wrap; line-height: 1.5; }
      pre { font-family: var(--mono); white-space: pre-wrap; background: rgba(0,0,0,0.25); padding: 12px; border-radius: 8px; overflow-x: auto; }
      .muted { color: var(--muted); font-size: 13px; }
      table { border-collapse: collapse; width: 100%; margin-top: 12px; font-size: 14px; }
      th, td { border: 1px solid var(--border); padding: 6px 8px; text-align: left; vertical-align: top; }
      th { background: rgba(255,255,255,0.05); }
    </style>
  </head>
  <body>
    <main>
      <h1>datachat</h1>
      <form method="post" action="/ask">
        <textarea name="question" placeholder="Ask a question about your data">{{.Question}}</textarea>
        <select name="agent">
          {{range .Agents}}<option value="{{.Key}}" title="{{.Desc}}"{{if .Selected}} selected{{end}}>{{.Key}}</option>
          {{end}}
        </select>
        <button class="primary" type="submit">Ask</button>
      </form>
      {{if .Notice}}<div class="notice" id="notice">{{.Notice}}</div>{{end}}
      {{if .HasResult}}
      <div class="tabs">
        <input type="radio" name="tab" id="tab-pretty"{{if .PrettyActive}} checked{{end}} />
        <label for="tab-pretty">Pretty</label>
        <input type="radio" name="tab" id="tab-raw"{{if not .PrettyActive}} checked{{end}} />
        <label for="tab-raw">Raw</label>
        <section class="panel pretty">
          {{if .Failed}}
          <div class="error" data-kind="{{.ErrorKind}}">{{.ErrorText}}</div>
          {{else}}
          {{if .Answer}}<div class="answer">{{.Answer}}</div>{{end}}
          {{if .SQL}}
          <p class="muted">SQL <button type="button" id="copy-sql">Copy</button></p>
          <pre id="sql">{{.SQL}}</pre>
          {{end}}
          {{if .Meta}}<p class="muted">{{.Meta}}</p>{{end}}
          {{if .Notes}}<p class="muted">Notes: {{.Notes}}</p>{{end}}
          {{with .Table}}
          <table>
            <thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
            <tbody>
              {{range .Body}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
              {{end}}
            </tbody>
          </table>
          <p class="muted">{{.Summary}}</p>
          {{if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
          {{end}}
          {{end}}
        </section>
        <section class="panel raw"><pre>{{.Raw}}</pre></section>
      </div>
      {{end}}
    </main>
    <script>
      const btn = document.getElementById("copy-sql");
      if (btn) {
        btn.addEventListener("click", async () => {
          try {
            await navigator.clipboard.writeText(document.getElementById("sql").innerText);
            btn.textContent = "Copied";
          } catch (e) {
            btn.textContent = "Clipboard unavailable";
          }
        });
      }
    </script>
  </body>
</html>
`))
