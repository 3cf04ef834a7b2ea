package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"fashionetl/internal/model"
)

const priceUnavailable = "Price Unavailable"

// ParseProducts extracts one RawProduct per collection card. Cards without a
// product title are skipped.
func ParseProducts(html string, timestamp string) ([]model.RawProduct, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var products []model.RawProduct
	doc.Find("div.collection-card").Each(func(_ int, card *goquery.Selection) {
		p, ok := parseCard(card)
		if !ok {
			return
		}
		p.Timestamp = timestamp
		products = append(products, p)
	})

	return products, nil
}

func parseCard(card *goquery.Selection) (model.RawProduct, bool) {
	var p model.RawProduct

	details := card.Find("div.product-details").First()
	if details.Length() == 0 {
		return p, false
	}

	title := details.Find("h3.product-title").First()
	if title.Length() == 0 {
		return p, false
	}
	p.Title = textPtr(title)

	// Preço: span dentro do container ou o aviso "Price Unavailable"
	if container := details.Find("div.price-container").First(); container.Length() > 0 {
		if price := container.Find("span.price").First(); price.Length() > 0 {
			p.Price = textPtr(price)
		}
	} else if strings.Contains(details.Find("p.price").Text(), priceUnavailable) ||
		strings.Contains(details.Text(), priceUnavailable) {
		p.Price = model.Ptr(priceUnavailable)
	}

	details.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		switch {
		case strings.Contains(text, "Rating:"):
			p.Rating = model.Ptr(text)
		case strings.Contains(text, "Color") && !strings.Contains(text, "Size:") && !strings.Contains(text, "Gender:"):
			p.Colors = model.Ptr(text)
		case strings.Contains(text, "Size:"):
			p.Size = model.Ptr(text)
		case strings.Contains(text, "Gender:"):
			p.Gender = model.Ptr(text)
		}
	})

	return p, true
}

func textPtr(s *goquery.Selection) *string {
	return model.Ptr(strings.TrimSpace(s.Text()))
}
