package view

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/nutridata/portal/internal/core/domain"
)

type layoutOptions struct {
	title   string
	refresh bool
}

func layout(opts layoutOptions, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="es"><head><meta charset="UTF-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
		if opts.refresh {
			p.raw(`<meta http-equiv="refresh" content="1">`)
		}
		p.raw(`<title>`)
		if opts.title != "" {
			p.text(opts.title)
			p.raw(` | `)
		}
		p.raw(`NutriData</title>`,
			`<script src="https://unpkg.com/htmx.org@1.9.12"></script>`,
			`</head><body class="min-h-screen bg-background">`)
		p.component(ctx, body)
		p.raw(`</body></html>`)
		return p.err
	})
}

// Toasts renders one alert per notification.
func Toasts(notifications []domain.Notification) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &printer{w: w}
		for _, n := range notifications {
			p.raw(`<div class="toast toast-`)
			p.text(string(n.Kind))
			p.raw(`" role="alert" data-kind="`)
			p.text(string(n.Kind))
			p.raw(`"><strong>`)
			p.text(n.Title)
			p.raw(`</strong><p>`)
			p.text(n.Description)
			p.raw(`</p></div>`)
		}
		return p.err
	})
}

func csrfField(p *printer, token string) {
	p.raw(`<input type="hidden" name="_csrf" value="`)
	p.text(token)
	p.raw(`">`)
}

// Auth is the login page with the forgot-password form folded underneath.
func Auth(page AuthPage) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<main class="flex min-h-screen items-center justify-center">`,
			`<section class="w-full max-w-md space-y-6">`,
			`<h1 class="text-2xl font-bold">NutriData</h1>`)
		p.component(ctx, Toasts(page.Notifications))

		p.raw(`<form method="post" action="`, domain.RouteAuth, `" class="space-y-4">`)
		csrfField(p, page.CSRF)
		p.raw(`<label>Correo electrónico <input type="email" name="email" value="`)
		p.text(page.Email)
		p.raw(`" required autocomplete="email"></label>`,
			`<label>Contraseña <input type="password" name="password" required autocomplete="current-password"></label>`,
			`<button type="submit">Iniciar sesión</button></form>`)

		p.raw(`<details><summary>¿Olvidaste tu contraseña?</summary>`,
			`<form method="post" action="/forgot-password" class="space-y-4">`)
		csrfField(p, page.CSRF)
		p.raw(`<label>Correo electrónico <input type="email" name="email" value="`)
		p.text(page.Email)
		p.raw(`" required></label><button type="submit">Enviar enlace</button></form></details>`,
			`</section></main>`)
		return p.err
	})
	return layout(layoutOptions{}, body)
}

// Dashboard is the shell shared by every role page.
func Dashboard(page DashboardPage) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<div class="flex min-h-screen"><aside class="w-64 border-r"><nav><ul>`)
		for _, item := range page.Nav {
			p.raw(`<li><a href="`)
			p.url(item.Path)
			p.raw(`"`)
			if item.Path == page.Active {
				p.raw(` aria-current="page" class="active"`)
			}
			p.raw(`>`)
			p.text(item.Label)
			p.raw(`</a></li>`)
		}
		p.raw(`</ul></nav></aside><div class="flex-1">`,
			`<header class="flex items-center justify-between border-b px-6 py-3">`,
			`<h1 class="text-xl font-semibold">`)
		p.text(page.Title)
		p.raw(`</h1><div class="user-menu">`)
		if page.User.Avatar != "" {
			p.raw(`<img src="`)
			p.url(page.User.Avatar)
			p.raw(`" alt="`)
			p.text(page.User.Name)
			p.raw(`" class="h-8 w-8 rounded-full">`)
		} else {
			p.raw(`<span class="avatar">`)
			p.text(initials(page.User.Name))
			p.raw(`</span>`)
		}
		p.raw(`<span>`)
		p.text(page.User.Name)
		p.raw(`</span><form method="post" action="/logout">`)
		csrfField(p, page.CSRF)
		p.raw(`<button type="submit">Cerrar Sesión</button></form></div></header>`)
		p.component(ctx, Toasts(page.Notifications))
		p.raw(`<main id="page" class="p-6" data-role="`)
		p.text(string(page.User.Role))
		p.raw(`" data-path="`)
		p.text(page.Active)
		p.raw(`"></main></div></div>`)
		return p.err
	})
	return layout(layoutOptions{title: page.Title}, body)
}

// Loading is served while the session cannot be resolved yet. The page
// reloads itself every second.
func Loading() templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<div class="flex min-h-screen items-center justify-center" role="status" aria-busy="true">`,
			`<div class="animate-spin rounded-full h-10 w-10 border-b-2 border-primary"></div></div>`)
		return p.err
	})
	return layout(layoutOptions{refresh: true}, body)
}

// Error is the page browsers get when a request fails outside the auth forms.
func Error(status int, message string) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<main class="flex min-h-screen items-center justify-center">`,
			`<section class="w-full max-w-md space-y-4 text-center" data-status="`, strconv.Itoa(status), `">`,
			`<h1 class="text-2xl font-bold">`, strconv.Itoa(status), ` `)
		p.text(http.StatusText(status))
		p.raw(`</h1><p>`)
		p.text(message)
		p.raw(`</p><a href="/">Volver al inicio</a></section></main>`)
		return p.err
	})
	return layout(layoutOptions{title: http.StatusText(status)}, body)
}
