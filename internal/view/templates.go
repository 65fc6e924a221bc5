package view

// pageTemplate is the viewer shell. The report body is fetched separately
// from /report and swapped into #report by static/history.js.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Analysis History</title>
<link rel="stylesheet" href="/static/style.css">
</head>
<body>
<header>
	<h1>Analysis History</h1>
	<div class="controls">
		<label for="type">Type</label>
		<select id="type">
			<option value="responses" selected>responses</option>
			<option value="requests">requests</option>
			<option value="latest">latest</option>
		</select>
		<label for="limit">Limit</label>
		<input id="limit" type="number" min="1" max="{{.MaxLimit}}" value="{{.DefaultLimit}}">
		<button id="refresh" type="button">Refresh</button>
	</div>
</header>
<main id="report">
	<div class="card placeholder"><div class="title">Loading</div></div>
</main>
<script src="/static/history.js"></script>
</body>
</html>
`

// reportTemplate renders a card list as an HTML fragment.
const reportTemplate = `{{range . -}}
<div class="card {{.Kind}}">
{{- if eq .Kind "response"}}
	<div class="head">
		<span class="title">{{.Title}}</span>
		<span class="time">{{.Time}}</span>
		{{- with .Meta}}
		<span class="meta">{{.}}</span>
		{{- end}}
	</div>
	{{- if .RequestText}}
	<div class="section">
		<button class="toggle" type="button">Request</button>
		<pre class="body hidden">{{.RequestText}}</pre>
	</div>
	{{- end}}
	<div class="section">
		<button class="toggle" type="button">Reasoning</button>
		<pre class="body">{{.Reasoning}}</pre>
	</div>
	{{- if .DecisionHTML}}
	<div class="section">
		<button class="toggle" type="button">Decision</button>
		<button class="copy" type="button" data-text="{{.DecisionCopy}}">Copy</button>
		<pre class="body json">{{.DecisionHTML}}</pre>
	</div>
	{{- else if .DecisionRaw}}
	<div class="section">
		<button class="toggle" type="button">Output</button>
		<pre class="body">{{.DecisionRaw}}</pre>
	</div>
	{{- end}}
{{- else if eq .Kind "request"}}
	<div class="head">
		<span class="title">{{.Title}}</span>
		<span class="time">{{.Time}}</span>
	</div>
	<div class="section">
		<pre class="body">{{.RequestText}}</pre>
	</div>
{{- else}}
	<div class="head">
		<span class="title">{{.Title}}</span>
	</div>
	{{- with .Message}}
	<div class="message">{{.}}</div>
	{{- end}}
{{- end}}
</div>
{{end -}}
`
