package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/wisnuprasetya/gamedex/internal/models"
	"golang.org/x/net/publicsuffix"
)

// ExtractPage pulls the structured content out of a parsed page: title, meta
// description, headings by level, paragraphs, links, images and the full body
// text. Pure function over the document; fetching is the caller's problem.
func ExtractPage(doc *goquery.Document, pageURL string) models.PageContent {
	content := models.PageContent{
		URL:      pageURL,
		Headings: make(map[string][]string),
	}

	content.Title = strings.TrimSpace(doc.Find("title").First().Text())

	content.MetaDescription = metaContent(doc, `meta[name="description"]`)
	if content.MetaDescription == "" {
		content.MetaDescription = metaContent(doc, `meta[property="og:description"]`)
	}

	for level := 1; level <= 6; level++ {
		tag := fmt.Sprintf("h%d", level)
		var texts []string
		doc.Find(tag).Each(func(_ int, sel *goquery.Selection) {
			if t := normalizeSpace(sel.Text()); t != "" {
				texts = append(texts, t)
			}
		})
		if len(texts) > 0 {
			content.Headings[tag] = texts
		}
	}

	doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
		if t := normalizeSpace(sel.Text()); t != "" {
			content.Paragraphs = append(content.Paragraphs, t)
		}
	})

	pageDomain := registrableDomain(pageURL)
	seenLinks := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs := resolveURL(pageURL, href)
		if abs == "" || seenLinks[abs] {
			return
		}
		seenLinks[abs] = true
		content.Links = append(content.Links, models.PageLink{
			Text:     normalizeSpace(sel.Text()),
			Href:     abs,
			External: pageDomain != "" && registrableDomain(abs) != pageDomain,
		})
	})

	seenImages := make(map[string]bool)
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		abs := resolveURL(pageURL, src)
		if abs == "" || seenImages[abs] {
			return
		}
		seenImages[abs] = true
		content.Images = append(content.Images, models.PageImage{
			Src: abs,
			Alt: strings.TrimSpace(sel.AttrOr("alt", "")),
		})
	})

	content.AllText = normalizeSpace(doc.Find("body").Text())

	return content
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

// normalizeSpace collapses all whitespace runs (including newlines) to single
// spaces
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// registrableDomain returns the eTLD+1 for a URL ("playground.bfl.ai" ->
// "bfl.ai"), or "" when it cannot be determined. Used to classify links as
// internal or external to the page's site.
func registrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	if host == "" {
		return ""
	}
	root, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Bare hostnames and IPs have no registrable domain; compare as-is
		return host
	}
	return root
}
