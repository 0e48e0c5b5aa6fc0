package compiler

import (
	"strings"

	"github.com/totegamma/rebento"
)

type palette struct {
	bg, accent, text, sub, card, border           string
	avatarBorder, muted, mapFrom, mapTo, mapLabel string
	header                                        string
}

func paletteOf(theme rebento.Theme) palette {
	def := rebento.DefaultTheme()
	p := palette{
		bg:     cssValue(theme.BackgroundColor, def.BackgroundColor),
		accent: cssValue(theme.AccentColor, def.AccentColor),
	}
	if theme.DarkMode {
		p.text, p.sub, p.card, p.border = "#f3f4f6", "#9ca3af", "#111827", "#1f2937"
		p.avatarBorder, p.muted = "#1f2937", "#1f2937"
		p.mapFrom, p.mapTo, p.mapLabel = "#1e3a5f", "#1a3347", "rgba(17,24,39,.95)"
		p.header = "#d1d5db"
	} else {
		p.text, p.sub, p.card, p.border = "#111827", "#6b7280", "#ffffff", "#f3f4f6"
		p.avatarBorder, p.muted = "#fff", "#f3f4f6"
		p.mapFrom, p.mapTo, p.mapLabel = "#dbeafe", "#e0f2fe", "rgba(255,255,255,.95)"
		p.header = "#374151"
	}
	return p
}

func stylesheet(p palette) string {
	return strings.NewReplacer(
		"{{bg}}", p.bg,
		"{{accent}}", p.accent,
		"{{text}}", p.text,
		"{{sub}}", p.sub,
		"{{card}}", p.card,
		"{{border}}", p.border,
		"{{avatarBorder}}", p.avatarBorder,
		"{{muted}}", p.muted,
		"{{mapFrom}}", p.mapFrom,
		"{{mapTo}}", p.mapTo,
		"{{mapLabel}}", p.mapLabel,
		"{{header}}", p.header,
	).Replace(styleTemplate)
}

// page holds the already compressed image sources for one build.
type page struct {
	profile rebento.Profile
	blocks  []rebento.Block
	theme   rebento.Theme
	avatar  string
	images  []string
}

func (pg page) build() string {
	var b strings.Builder
	name := esc(pg.profile.Name)
	bio := esc(pg.profile.Bio)

	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>` + name + ` | ReBento</title>
<meta name="description" content="` + bio + `">
<meta property="og:title" content="` + name + `">
<meta property="og:description" content="` + bio + `">
`)
	if rebento.IsRemoteURL(pg.avatar) {
		b.WriteString(`<meta property="og:image" content="` + esc(pg.avatar) + `">` + "\n")
	}
	b.WriteString("<style>\n")
	b.WriteString(stylesheet(paletteOf(pg.theme)))
	b.WriteString(`</style>
</head>
<body>
<div class="page">
  <div class="profile">
    <img class="avatar" src="` + esc(pg.avatar) + `" alt="` + name + `">
    <h1 class="name">` + name + `</h1>
    <p class="bio">` + bio + `</p>
`)
	if pg.profile.Location != "" {
		b.WriteString(`    <div class="location"><svg viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">` + pinIconPath + `</svg><span>` + esc(pg.profile.Location) + `</span></div>` + "\n")
	}
	b.WriteString(`  </div>
  <div class="grid-wrap">
    <div class="grid">
`)
	for i, block := range pg.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderBlock(block, pg.images[i], pg.theme.DarkMode))
	}
	b.WriteString(`
    </div>
  </div>
</div>
<div class="footer">Made with <a href="https://rebento_arlink.ar.io" target="_blank">ReBento</a> &mdash; Stored permanently on <a href="https://arweave.org" target="_blank">Arweave</a></div>
</body>
</html>`)
	return b.String()
}

const styleTemplate = `*{margin:0;padding:0;box-sizing:border-box}
body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,'Helvetica Neue',Arial,sans-serif;background:{{bg}};color:{{text}};min-height:100vh;-webkit-font-smoothing:antialiased}
a{text-decoration:none;color:inherit}
img{display:block}

.page{max-width:1200px;margin:0 auto;padding:48px 24px 80px;display:grid;grid-template-columns:320px 1fr;gap:48px}
@media(max-width:768px){.page{grid-template-columns:1fr;padding:32px 16px 64px;gap:32px}}

.profile{display:flex;flex-direction:column;align-items:flex-start;gap:20px}
@media(max-width:768px){.profile{align-items:center;text-align:center}}
.avatar{width:128px;height:128px;border-radius:50%;object-fit:cover;border:4px solid {{avatarBorder}};box-shadow:0 4px 12px rgba(0,0,0,.1)}
.name{font-size:1.875rem;font-weight:700;line-height:1.2}
.bio{font-size:1.125rem;line-height:1.6;color:{{sub}}}
.location{display:flex;align-items:center;gap:8px;color:{{sub}};font-size:.875rem}
.location svg{width:16px;height:16px;flex-shrink:0}

.grid-wrap{min-width:0}
.grid-title{font-size:1.125rem;font-weight:600;margin-bottom:24px}
.grid{display:grid;grid-template-columns:repeat(4,1fr);gap:20px;grid-auto-rows:80px;grid-auto-flow:dense}
@media(max-width:768px){.grid{grid-template-columns:repeat(2,1fr)}}

.card{background:{{card}};border-radius:16px;border:2px solid {{border}};overflow:hidden;box-shadow:0 1px 3px rgba(0,0,0,.08),0 4px 12px rgba(0,0,0,.05);transition:transform .2s,box-shadow .2s}
.card:hover{transform:translateY(-2px);box-shadow:0 4px 16px rgba(0,0,0,.12)}
.card-inner{display:flex;flex-direction:column;height:100%;width:100%}

.social-card{padding:16px}
.social-icon{width:40px;height:40px;border-radius:12px;display:flex;align-items:center;justify-content:center;color:#fff;margin-bottom:12px;flex-shrink:0}
.social-icon svg{width:24px;height:24px}
.social-user{font-size:.875rem;font-weight:600;color:{{text}}}
.social-label{font-size:.75rem;color:{{sub}};margin-top:2px}
.social-btn{display:inline-block;margin-top:auto;padding:8px 16px;border-radius:9999px;font-size:.75rem;font-weight:500;text-align:center;transition:opacity .2s}
.social-btn:hover{opacity:.9}

.text-card{padding:16px;justify-content:center}
.text-card p{font-size:.875rem;color:{{sub}};line-height:1.5}

.image-card{position:relative}
.image-card img{width:100%;height:100%;object-fit:cover}
.img-caption{position:absolute;bottom:0;left:0;right:0;padding:12px;background:linear-gradient(transparent,rgba(0,0,0,.6));color:#fff;font-size:.875rem;font-weight:500}
.image-empty{display:flex;align-items:center;justify-content:center;height:100%;background:{{muted}}}

.link-card-img{display:flex;flex-direction:column;height:100%}
.link-preview{flex:1;overflow:hidden}
.link-preview img{width:100%;height:100%;object-fit:cover}
.link-bar{display:flex;align-items:center;gap:8px;padding:12px;min-height:44px}
.link-fav{width:16px;height:16px;border-radius:2px;flex-shrink:0}
.link-title{font-size:.75rem;color:{{sub}};overflow:hidden;text-overflow:ellipsis;white-space:nowrap;flex:1}
.link-card-simple{display:flex;flex-direction:column;align-items:center;justify-content:center;height:100%;padding:16px;gap:12px}
.link-icon-wrap{width:48px;height:48px;border-radius:12px;background:{{muted}};display:flex;align-items:center;justify-content:center}
.link-icon-wrap img{width:24px;height:24px;border-radius:2px}
.link-title-lg{font-size:.875rem;font-weight:500;text-align:center;color:{{text}};display:-webkit-box;-webkit-line-clamp:2;-webkit-box-orient:vertical;overflow:hidden}
.link-desc{font-size:.75rem;color:{{sub}};text-align:center;display:-webkit-box;-webkit-line-clamp:2;-webkit-box-orient:vertical;overflow:hidden}

.map-card{position:relative;height:100%;background:linear-gradient(135deg,{{mapFrom}},{{mapTo}})}
.map-bg{position:absolute;inset:0;opacity:.15;background-image:url("data:image/svg+xml,%3Csvg width='60' height='60' xmlns='http://www.w3.org/2000/svg'%3E%3Cpath d='M0 30h60M30 0v60' stroke='%239ca3af' stroke-width='.5' fill='none'/%3E%3C/svg%3E")}
.map-label{position:absolute;bottom:12px;left:12px;right:12px;background:{{mapLabel}};backdrop-filter:blur(8px);border-radius:12px;padding:8px 12px;display:flex;align-items:center;gap:8px;box-shadow:0 2px 8px rgba(0,0,0,.1)}
.map-label svg{flex-shrink:0}
.map-label span{font-size:.875rem;font-weight:500;overflow:hidden;text-overflow:ellipsis;white-space:nowrap}
.map-empty{display:flex;flex-direction:column;align-items:center;justify-content:center;height:100%;gap:8px;color:{{sub}}}

.section-header{display:flex;align-items:center;height:100%;padding:0 24px;font-size:1.125rem;font-weight:600;color:{{header}}}

.footer{text-align:center;margin-top:48px;font-size:.875rem;color:{{sub}}}
.footer a{color:{{accent}};font-weight:500}
.footer a:hover{text-decoration:underline}
`
