package web

import (
	"html/template"
	"strconv"
)

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"num": formatNumber,
}).Parse(pageTemplates))

// formatNumber renders v without trailing zeros, e.g. 50 or 0.5.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

const pageTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; background-color: #F5F5F5; color: #333; }
        .layout { display: flex; min-height: 100vh; }
        .sidebar { width: 320px; background-color: #EEEEEE; padding: 20px; border-radius: 0 10px 10px 0; }
        .main { flex: 1; max-width: 760px; padding: 30px; }
        .nav a { margin-right: 15px; color: #042380; font-weight: bold; text-decoration: none; }
        .slider { margin-bottom: 16px; }
        .slider label { display: flex; justify-content: space-between; font-weight: 500; }
        .slider input[type=range] { width: 100%; accent-color: #83e4f7; }
        .predict-button { background-color: #042380; color: white; border: none; border-radius: 5px; font-weight: bold; padding: 10px 24px; cursor: pointer; }
        .predict-button:hover { background-color: #000000; }
        .banner { padding: 15px; border-radius: 8px; margin: 15px 0; font-weight: bold; }
        .banner-success { background-color: #d4edda; color: #155724; }
        .banner-error { background-color: #f8d7da; color: #721c24; }
        .banner-warning { background-color: #fff3cd; color: #856404; }
        .inputs-table { width: 100%; border-collapse: collapse; background: white; }
        .inputs-table th, .inputs-table td { text-align: left; padding: 8px; border-bottom: 1px solid #eee; }
        .inputs-table th { background-color: #f8f9fa; font-weight: 600; }
        .note { margin-top: 20px; padding: 15px; border: 2px solid #ccc; border-radius: 10px; }
        .schema { color: #666; font-size: 0.9em; }
    </style>
</head>
<body>
{{end}}

{{define "nav"}}<div class="nav"><a href="/">Predict</a><a href="/about">About</a></div>{{end}}

{{define "index"}}{{template "head" .}}
<div class="layout">
{{if .LoadError}}
    <div class="main">
        {{template "nav"}}
        <h1>Mining Site Prediction</h1>
        <div class="banner banner-error" id="load-error">{{.LoadError}}</div>
    </div>
{{else}}
    <form class="sidebar" method="POST" action="/predict">
        <h2>Input Features</h2>
        {{range .Sliders}}
        <div class="slider">
            <label for="{{.Key}}"><span>{{.Label}}</span><output id="{{.Key}}-value">{{num .Value}}</output></label>
            <input type="range" id="{{.Key}}" name="{{.Key}}" min="{{num .Min}}" max="{{num .Max}}" step="{{num .Step}}" value="{{num .Value}}"
                   oninput="document.getElementById('{{.Key}}-value').value = this.value">
        </div>
        {{end}}
        <button type="submit" class="predict-button">Predict</button>
    </form>
    <div class="main">
        {{template "nav"}}
        <h1>Mining Site Prediction</h1>
        <p><strong>Discover the potential of your mining site!</strong><br>
        Enter the details in the sidebar to find out if your site is worth mining.</p>
        {{if eq .SchemaSource "positional"}}
        <div class="banner banner-warning" id="schema-warning">The model declares only a feature count; inputs are assumed to follow the slider order.</div>
        {{end}}
        {{if .Inputs}}
        <h3>User Input Features</h3>
        <table class="inputs-table" id="inputs">
            <thead><tr>{{range .Inputs}}<th>{{.Name}}</th>{{end}}</tr></thead>
            <tbody><tr>{{range .Inputs}}<td>{{num .Value}}</td>{{end}}</tr></tbody>
        </table>
        {{end}}
        {{if .Error}}
        <div class="banner banner-error" id="predict-error">{{.Error}}</div>
        {{end}}
        {{with .Result}}
        <h3>Prediction Result</h3>
        {{if .Viable}}
        <div class="banner banner-success" id="outcome">{{.Outcome}}</div>
        {{else}}
        <div class="banner banner-error" id="outcome">{{.Outcome}}</div>
        {{end}}
        {{end}}
        <div class="note"><strong>Note:</strong> {{.Note}}</div>
        <p class="schema">Model features ({{.SchemaSource}}): {{range $i, $n := .ExpectedOrder}}{{if $i}}, {{end}}{{$n}}{{end}}</p>
    </div>
{{end}}
</div>
</body>
</html>
{{end}}

{{define "about"}}{{template "head" .}}
<div class="main">
    {{template "nav"}}
    <h1>About AstroMineX</h1>
    <p>Welcome to <strong>AstroMineX</strong>, where we push the boundaries of space exploration. This platform turns data into actionable insights to guide the next generation of space mining operations.</p>
    <h3>Our Mission</h3>
    <ul>
        <li><strong>Predict Potential:</strong> assess the viability of mining sites across celestial bodies.</li>
        <li><strong>Recommend Sites:</strong> surface sites that match user criteria and site characteristics.</li>
        <li><strong>Drive Insights:</strong> support decisions with data about the most promising opportunities.</li>
    </ul>
    <h3>How it works</h3>
    <p>Eight site characteristics are collected from the sliders and passed to a pre-trained classifier, which labels the site as a potential mining site or not.</p>
</div>
</body>
</html>
{{end}}
`
