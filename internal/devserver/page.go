package devserver

import (
	"html/template"
	"strings"

	"github.com/vango-dev/weft/internal/demo"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>weft · {{.Name}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; }
header small { color: #666; }
.done span { text-decoration: line-through; }
.weft-error { border: 1px solid #c33; padding: .5rem; color: #c33; }
</style>
</head>
<body>
<header><strong>{{.Name}}</strong> <small>{{.Description}}</small></header>
<main id="weft-root" data-component="{{.Component}}">{{.HTML}}</main>
<script>{{.Script}}</script>
</body>
</html>
`))

// clientScript mirrors pushed HTML into #weft-root and forwards events on
// elements carrying data-key to /dispatch.
const clientScript = `
(function() {
    'use strict';
    var root = document.getElementById('weft-root');
    var delay = 500;

    function connect() {
        var proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(proto + '//' + location.host + '/ws');
        ws.onopen = function() { delay = 500; };
        ws.onmessage = function(e) {
            var msg;
            try { msg = JSON.parse(e.data); } catch (err) { return; }
            if (msg.type !== 'render') return;
            var active = document.activeElement;
            var key = active && active.dataset ? active.dataset.key : null;
            root.innerHTML = msg.html;
            if (key) {
                var again = root.querySelector('[data-key="' + key + '"]');
                if (again) again.focus();
            }
        };
        ws.onclose = function() {
            setTimeout(connect, delay);
            delay = Math.min(delay * 2, 10000);
        };
    }

    function send(type, el, body) {
        fetch('/dispatch/' + type + '/' + encodeURIComponent(el.dataset.key), {
            method: 'POST',
            body: body === undefined ? '' : body
        });
    }

    function keyed(e) {
        var el = e.target.closest ? e.target.closest('[data-key]') : null;
        return el && root.contains(el) ? el : null;
    }

    root.addEventListener('click', function(e) {
        var el = keyed(e);
        if (el) { e.preventDefault(); send('click', el); }
    });
    ['input', 'change'].forEach(function(type) {
        root.addEventListener(type, function(e) {
            var el = keyed(e);
            if (el) send(type, el, el.value);
        });
    });
    root.addEventListener('focusin', function(e) { var el = keyed(e); if (el) send('focus', el); });
    root.addEventListener('focusout', function(e) { var el = keyed(e); if (el) send('blur', el); });

    connect();
})();
`

func renderPage(d *demo.Demo, body string) string {
	var b strings.Builder
	pageTemplate.Execute(&b, struct {
		Name        string
		Description string
		Component   string
		HTML        template.HTML
		Script      template.JS
	}{
		Name:        d.Name,
		Description: d.Description,
		Component:   d.Host.ComponentID(),
		HTML:        template.HTML(body),
		Script:      template.JS(clientScript),
	})
	return b.String()
}
