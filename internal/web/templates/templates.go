// Package templates renders the HTML views of a session.
//
// Views are templ components built from templ.ComponentFunc so they compose
// with templ.Handler and any generated components added later.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/statentry/internal/core"
)

// htmlWriter accumulates the first write error so views read linearly.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) rawf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

// Layout wraps body in a minimal HTML document.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title></head><body>`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</body></html>`)
		return h.err
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="alert alert-error" role="alert"><p class="alert-message">`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p class="alert-action">`)
			h.text(action)
			h.raw(`</p>`)
		}
		if code != "" {
			h.raw(`<p class="alert-code">Code: `)
			h.text(code)
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

// SessionPage shows a session's schema, draft and data table.
func SessionPage(id string, snap core.Snapshot) templ.Component {
	return Layout("Data entry", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<main class="session" data-session="`)
		h.text(id)
		h.raw(`"><h1>Data entry</h1>`)
		h.rawf(`<p class="state">Schema: %s</p>`, templ.EscapeString(string(snap.State)))
		if h.err != nil {
			return h.err
		}

		if len(snap.Draft) > 0 {
			if err := DraftForm(snap.Draft).Render(ctx, w); err != nil {
				return err
			}
		}
		if !snap.Schema.IsZero() {
			if err := SchemaSummary(snap.Schema).Render(ctx, w); err != nil {
				return err
			}
			if err := DataTable(snap.Schema, snap.Rows).Render(ctx, w); err != nil {
				return err
			}
			base := "/api/sessions/" + templ.EscapeString(id)
			h.rawf(`<nav class="downloads"><a href="%s/export">Download CSV</a> <a href="%s/template">Download template</a></nav>`, base, base)
		}
		h.raw(`</main>`)
		return h.err
	}))
}

// DraftForm lists draft slots with their names and types.
func DraftForm(draft []core.Field) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.rawf(`<section class="draft"><h2>Variables (%d)</h2><ol>`, len(draft))
		for i, f := range draft {
			h.rawf(`<li><input name="name-%d" value="`, i)
			h.text(f.Name)
			h.rawf(`" placeholder="Variable %d"><select name="type-%d">`, i+1, i)
			for _, t := range core.FieldTypes {
				selected := ""
				if t == f.Type {
					selected = " selected"
				}
				h.rawf(`<option value="%s"%s>%s</option>`, t, selected, t)
			}
			h.raw(`</select></li>`)
		}
		h.raw(`</ol></section>`)
		return h.err
	})
}

// SchemaSummary lists the committed fields.
func SchemaSummary(schema core.Schema) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="schema"><h2>Schema</h2><ul>`)
		for _, f := range schema.Fields() {
			h.raw(`<li><strong>`)
			h.text(f.Name)
			h.raw(`</strong> `)
			h.text(f.Type.String())
			h.raw(`</li>`)
		}
		h.raw(`</ul></section>`)
		return h.err
	})
}

// DataTable renders rows in schema column order. Nulls are empty cells.
func DataTable(schema core.Schema, rows []core.Row) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.rawf(`<section class="data"><h2>Data (%d rows)</h2>`, len(rows))
		if len(rows) == 0 {
			h.raw(`<p class="empty">No data yet. Add a row or import a CSV file.</p></section>`)
			return h.err
		}

		names := schema.Names()
		h.raw(`<table><thead><tr>`)
		for _, n := range names {
			h.raw(`<th>`)
			h.text(n)
			h.raw(`</th>`)
		}
		h.raw(`</tr></thead><tbody>`)
		for _, row := range rows {
			h.raw(`<tr>`)
			for _, n := range names {
				v := row[n]
				class := "cell"
				if v.IsNull() {
					class += " null"
				}
				h.rawf(`<td class="%s">`, class)
				h.text(v.String())
				h.raw(`</td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table></section>`)
		return h.err
	})
}
