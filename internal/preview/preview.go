// Package preview renders the social-preview card served at /og.png.
package preview

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"
)

const (
	cardWidth  = 1200
	cardHeight = 630
	dotCount   = 40
)

// Card renders a 1200x630 SVG preview card for the given recipient name.
// An empty name produces the generic site card. Output is deterministic
// per name: the confetti layout is seeded from the name itself.
func Card(name, siteName, siteDescription string) []byte {
	name = truncateRunes(strings.TrimSpace(name), 40)
	title := siteName
	sub := siteDescription
	if name != "" {
		title = fmt.Sprintf("Happy Birthday, %s!", name)
		sub = "A sweet wish made just for you"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">
  <defs>
    <linearGradient id="g" x1="0" y1="0" x2="1" y2="1">
      <stop offset="0%%" stop-color="#f472b6"/>
      <stop offset="100%%" stop-color="#a78bfa"/>
    </linearGradient>
  </defs>
  <rect width="%d" height="%d" fill="url(#g)"/>
  <g fill="#fff">
    <text x="60" y="220" font-size="88" font-family="Segoe UI, Arial, sans-serif" font-weight="700">%s</text>
    <text x="60" y="310" font-size="42" font-family="Segoe UI, Arial, sans-serif" opacity="0.95">%s</text>
  </g>
  <g opacity="0.15">
`, cardWidth, cardHeight, cardWidth, cardHeight, cardWidth, cardHeight, escapeXML(title), escapeXML(sub))

	rng := rand.New(rand.NewSource(seedFor(name)))
	for i := 0; i < dotCount; i++ {
		x := rng.Intn(cardWidth)
		y := rng.Intn(cardHeight)
		r := rng.Intn(5) + 2
		fmt.Fprintf(&b, `    <circle cx="%d" cy="%d" r="%d" fill="#ffffff"/>`+"\n", x, y, r)
	}

	b.WriteString("  </g>\n</svg>\n")
	return []byte(b.String())
}

func seedFor(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
