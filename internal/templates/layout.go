package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const styles = `
  :root {
    --ink: #0d1117;
    --paper: #f5f0e8;
    --ledger: #e8e0cc;
    --accent: #c0392b;
    --accent2: #2c6e49;
    --muted: #6b5e4e;
    --rule: #b8a898;
  }
  * { box-sizing: border-box; }
  body {
    background: var(--paper);
    color: var(--ink);
    font-family: 'IBM Plex Sans', sans-serif;
    min-height: 100vh;
    margin: 0;
  }
  .wrap { max-width: 1100px; margin: 0 auto; padding: 32px 24px; }
  .mono { font-family: 'IBM Plex Mono', monospace; }
  .card {
    background: rgba(255,255,255,0.7);
    border: 1px solid var(--ledger);
    border-left: 4px solid var(--ink);
    padding: 24px;
    margin-bottom: 24px;
  }
  .section-header {
    font-family: 'IBM Plex Mono', monospace;
    font-size: 0.7rem;
    font-weight: 600;
    letter-spacing: 0.18em;
    text-transform: uppercase;
    color: var(--muted);
    border-bottom: 1px solid var(--rule);
    padding-bottom: 4px;
    margin-bottom: 16px;
  }
  .field-label {
    font-family: 'IBM Plex Mono', monospace;
    font-size: 0.6rem;
    font-weight: 600;
    letter-spacing: 0.1em;
    text-transform: uppercase;
    color: var(--muted);
    display: block;
    margin: 8px 0 2px;
  }
  input, select, textarea {
    background: white;
    border: 1px solid var(--rule);
    border-bottom: 2px solid var(--ink);
    padding: 6px 8px;
    font-family: 'IBM Plex Mono', monospace;
    font-size: 0.85rem;
    width: 100%;
  }
  table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
  th { text-align: left; font-family: 'IBM Plex Mono', monospace; font-size: 0.65rem; color: var(--muted); }
  td, th { padding: 6px 8px; border-bottom: 1px solid var(--ledger); }
  td.num { text-align: right; font-family: 'IBM Plex Mono', monospace; }
  .btn {
    font-family: 'IBM Plex Mono', monospace;
    font-weight: 600;
    font-size: 0.8rem;
    letter-spacing: 0.08em;
    padding: 8px 18px;
    border: 2px solid var(--ink);
    cursor: pointer;
    text-transform: uppercase;
    text-decoration: none;
    display: inline-block;
  }
  .btn-primary { background: var(--ink); color: white; }
  .btn-danger { background: white; color: var(--accent); border-color: var(--accent); }
  .btn-success { background: var(--accent2); color: white; border-color: var(--accent2); }
  .error { border-left-color: var(--accent); color: var(--accent); }
`

// Layout wraps body in the page chrome.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1.0"><title>`)
		h.text(title)
		h.raw(`</title><script src="https://unpkg.com/htmx.org@1.9.12"></script>`)
		h.raw(`<link href="https://fonts.googleapis.com/css2?family=IBM+Plex+Mono:wght@400;600&family=IBM+Plex+Sans:wght@400;600&display=swap" rel="stylesheet">`)
		h.raw(`<style>` + styles + `</style></head><body><div class="wrap">`)
		h.raw(`<div class="mono" style="font-size:0.65rem;letter-spacing:0.2em;color:var(--muted);">SOCIAL SECURITY ADMINISTRATION · EFW2</div>`)
		h.raw(`<h1 class="mono" style="margin:4px 0 32px;"><a href="/" style="color:inherit;text-decoration:none;">W-2 Wage File Generator</a></h1>`)
		h.component(ctx, body)
		h.raw(`</div></body></html>`)
		return h.err
	})
}

// ErrorMessage is the fragment returned when an upload or edit is rejected.
func ErrorMessage(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="card error" role="alert"><div class="section-header">Rejected</div><pre class="mono" style="white-space:pre-wrap;">`)
		h.text(msg)
		h.raw(`</pre></div>`)
		return h.err
	})
}
