package compiler

import (
	"html"
	"strconv"
	"strings"

	"github.com/totegamma/rebento"
)

// Span is the grid footprint of a block.
type Span struct {
	Columns int
	Rows    int
	FullRow bool
}

var spans = map[rebento.BlockSize]Span{
	rebento.SizeSmall:  {Columns: 1, Rows: 2},
	rebento.SizeMedium: {Columns: 1, Rows: 2},
	rebento.SizeLarge:  {Columns: 2, Rows: 4},
	rebento.SizeWide:   {Columns: 2, Rows: 2},
	rebento.SizeTall:   {Columns: 1, Rows: 4},
}

// SpanOf maps a block to its footprint. Section headers always take the full row.
func SpanOf(b rebento.Block) Span {
	if b.Kind == rebento.KindSectionHeader {
		return Span{Rows: 1, FullRow: true}
	}
	if s, ok := spans[b.Size]; ok {
		return s
	}
	return spans[rebento.SizeSmall]
}

func (s Span) Style() string {
	if s.FullRow {
		return "grid-column:1/-1;grid-row:span " + strconv.Itoa(s.Rows) + ";"
	}
	return "grid-column:span " + strconv.Itoa(s.Columns) + ";grid-row:span " + strconv.Itoa(s.Rows) + ";"
}

func esc(s string) string {
	return html.EscapeString(s)
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// cssValue admits colors and gradients only; anything else falls back.
func cssValue(s, fallback string) string {
	if s == "" {
		return fallback
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case strings.IndexByte("#(),.% -", c) >= 0:
		default:
			return fallback
		}
	}
	return s
}

func renderBlock(b rebento.Block, imageSrc string, dark bool) string {
	var inner string
	switch b.Kind {
	case rebento.KindSocial:
		inner = renderSocial(b, dark)
	case rebento.KindText:
		inner = renderText(b)
	case rebento.KindImage:
		inner = renderImage(b, imageSrc)
	case rebento.KindLink:
		inner = renderLink(b)
	case rebento.KindMap:
		inner = renderMap(b)
	case rebento.KindSectionHeader:
		inner = renderSectionHeader(b)
	default:
		inner = renderText(b)
	}

	bg := ""
	if color := cssValue(b.BgColor, ""); color != "" {
		bg = "background:" + esc(color) + ";"
	}
	return `<div class="card" style="` + SpanOf(b).Style() + bg + `">` + inner + `</div>`
}

func renderSocial(b rebento.Block, dark bool) string {
	style, ok := platforms[b.SocialPlatform]
	if !ok {
		style = platforms[rebento.PlatformTwitter]
	}
	btnBg, btnColor := "#111", "#fff"
	if dark {
		btnBg, btnColor = "#fff", "#111"
	}

	return `<div class="card-inner social-card">
  <div class="social-icon" style="background:` + style.Background + `">` + style.Icon + `</div>
  <p class="social-user">` + or(esc(b.SocialUsername), "@username") + `</p>
  <p class="social-label">` + style.Label + `</p>
  <a href="` + or(esc(b.SocialURL), "#") + `" target="_blank" rel="noopener noreferrer" class="social-btn" style="background:` + btnBg + `;color:` + btnColor + `">Follow</a>
</div>`
}

func renderText(b rebento.Block) string {
	return `<div class="card-inner text-card">
  <p>` + esc(b.Content) + `</p>
</div>`
}

func renderImage(b rebento.Block, src string) string {
	if src == "" {
		return `<div class="card-inner image-empty">` + imagePlaceholderIcon + `</div>`
	}
	caption := ""
	if b.Caption != "" {
		caption = `<div class="img-caption">` + esc(b.Caption) + `</div>`
	}
	return `<div class="card-inner image-card"><img src="` + esc(src) + `" alt="` + esc(or(b.Caption, "Image")) + `" loading="lazy"/>` + caption + `</div>`
}

func linkHost(url string) string {
	for _, p := range []string{"https://www.", "http://www.", "https://", "http://"} {
		if strings.HasPrefix(url, p) {
			url = url[len(p):]
			break
		}
	}
	return strings.TrimSuffix(url, "/")
}

func renderLink(b rebento.Block) string {
	url := or(esc(b.LinkURL), "#")
	title := esc(or(b.LinkTitle, b.Title))
	if title == "" {
		title = linkHost(url)
	}

	favicon := globeIcon
	if b.LinkFavicon != "" {
		favicon = `<img src="` + esc(b.LinkFavicon) + `" alt="" class="link-fav" onerror="this.style.display='none'"/>`
	}

	if b.LinkImage != "" {
		return `<a href="` + url + `" target="_blank" rel="noopener noreferrer" class="card-inner link-card-img">
  <div class="link-preview"><img src="` + esc(b.LinkImage) + `" alt="" loading="lazy"/></div>
  <div class="link-bar">` + favicon + `<span class="link-title">` + title + `</span><svg viewBox="0 0 24 24" width="12" height="12" fill="none" stroke="#9ca3af" stroke-width="2">` + externalIconPath + `</svg></div>
</a>`
	}

	desc := ""
	if b.LinkDescription != "" {
		desc = `<p class="link-desc">` + esc(b.LinkDescription) + `</p>`
	}
	return `<a href="` + url + `" target="_blank" rel="noopener noreferrer" class="card-inner link-card-simple">
  <div class="link-icon-wrap">` + favicon + `</div>
  <p class="link-title-lg">` + title + `</p>
  ` + desc + `
  <svg viewBox="0 0 24 24" width="14" height="14" fill="none" stroke="#9ca3af" stroke-width="2">` + externalIconPath + `</svg>
</a>`
}

func renderMap(b rebento.Block) string {
	loc := esc(b.MapLocation)
	if loc == "" {
		return `<div class="card-inner map-empty"><svg viewBox="0 0 24 24" width="24" height="24" fill="none" stroke="#3b82f6" stroke-width="2">` + pinIconPath + `</svg><span>No location</span></div>`
	}
	return `<div class="card-inner map-card">
  <div class="map-bg"></div>
  <div class="map-label"><svg viewBox="0 0 24 24" width="16" height="16" fill="none" stroke="#3b82f6" stroke-width="2">` + pinIconPath + `</svg><span>` + loc + `</span></div>
</div>`
}

func renderSectionHeader(b rebento.Block) string {
	return `<div class="section-header">` + or(esc(b.Content), "Section") + `</div>`
}
