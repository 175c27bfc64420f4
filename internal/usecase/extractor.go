package usecase

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/claimvalue/backend/internal/domain"
)

// unknownValue is reported for fields no selector or heuristic could fill.
const unknownValue = "Unknown"

// retailerParser is one entry of the extraction registry: an ordered selector
// cascade for a retailer identified by host fragments. The extractor tries
// each selector in order and takes the first non-empty match.
type retailerParser struct {
	name                string
	hostFragments       []string
	priceSelectors      []string
	titleSelectors      []string
	breadcrumbSelectors []string
}

// parserRegistry is consulted in order; site-specific parsers come before the
// generic fallback, which matches every host.
var parserRegistry = []retailerParser{
	{
		name:          "amazon",
		hostFragments: []string{"amazon.com"},
		priceSelectors: []string{
			"#corePrice_feature_div .a-offscreen",
			"span.a-price .a-offscreen",
			"#priceblock_ourprice",
			"#priceblock_dealprice",
		},
		titleSelectors:      []string{"#productTitle", "h1#title", "h1"},
		breadcrumbSelectors: []string{"#wayfinding-breadcrumbs_feature_div", "ul.a-unordered-list.a-horizontal"},
	},
	{
		name:          "walmart",
		hostFragments: []string{"walmart.com"},
		priceSelectors: []string{
			"span[itemprop=price]",
			"[data-testid=price-wrap] span",
			"span.price-characteristic",
		},
		titleSelectors:      []string{"h1[itemprop=name]", "h1.prod-ProductTitle", "h1"},
		breadcrumbSelectors: []string{"nav[aria-label=breadcrumb]", "ol.breadcrumb"},
	},
	{
		name:          "target",
		hostFragments: []string{"target.com"},
		priceSelectors: []string{
			"[data-test=product-price]",
			"span[data-test=current-price]",
		},
		titleSelectors:      []string{"h1[data-test=product-title]", "h1"},
		breadcrumbSelectors: []string{"[data-test=breadcrumb]", "nav[aria-label=Breadcrumbs]"},
	},
	{
		name:          "bestbuy",
		hostFragments: []string{"bestbuy.com"},
		priceSelectors: []string{
			".priceView-hero-price span[aria-hidden=true]",
			".priceView-customer-price span",
			".pricing-price__regular-price",
		},
		titleSelectors:      []string{"h1.heading-5", ".sku-title h1", "h1"},
		breadcrumbSelectors: []string{"ol.c-breadcrumbs", "nav.breadcrumb"},
	},
	{
		name:          "homedepot",
		hostFragments: []string{"homedepot.com"},
		priceSelectors: []string{
			"div.price-format__large",
			"span.price-detailed__price",
			"[data-testid=price-simple]",
		},
		titleSelectors:      []string{"h1.product-details__title", "h1"},
		breadcrumbSelectors: []string{"nav[aria-label=breadcrumb]", ".breadcrumbs"},
	},
	{
		name:          "lowes",
		hostFragments: []string{"lowes.com"},
		priceSelectors: []string{
			".main-price",
			"[data-selector=splp-prd-act-price]",
			"span.item-price-dollar",
		},
		titleSelectors:      []string{"h1.pdp-title", "h1"},
		breadcrumbSelectors: []string{"nav[aria-label=breadcrumb]", "ol.breadcrumb"},
	},
	{
		// Generic fallback: matches every host, tried last.
		name:          "generic",
		hostFragments: nil,
		priceSelectors: []string{
			"[itemprop=price]",
			"meta[property='product:price:amount']",
			".price",
			"[class*=price]",
			"[id*=price]",
		},
		titleSelectors:      []string{"h1", "meta[property='og:title']", "title"},
		breadcrumbSelectors: []string{"nav[aria-label=breadcrumb]", ".breadcrumb", ".breadcrumbs", "ol.breadcrumb"},
	},
}

// categoryKeywords maps category names to page keywords for generic pages.
// Iteration order is the tie-break: the first category with any keyword hit
// wins, so the table is an ordered slice, not a map.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"Electronics", []string{"tv", "television", "laptop", "computer", "monitor", "tablet", "phone", "camera", "headphone", "speaker", "soundbar", "console"}},
	{"Appliances", []string{"refrigerator", "freezer", "washer", "dryer", "dishwasher", "microwave", "oven", "range", "vacuum"}},
	{"Furniture", []string{"sofa", "couch", "chair", "table", "desk", "bed", "mattress", "dresser", "bookcase", "cabinet", "recliner"}},
	{"Kitchenware", []string{"cookware", "pan", "pot", "knife", "blender", "mixer", "dinnerware", "bakeware"}},
	{"Tools", []string{"drill", "saw", "wrench", "hammer", "screwdriver", "toolbox", "sander"}},
	{"Sporting Goods", []string{"bike", "bicycle", "treadmill", "golf", "tennis", "kayak", "fitness", "exercise"}},
	{"Clothing", []string{"shirt", "pants", "dress", "jacket", "shoes", "boots", "apparel"}},
	{"Toys & Games", []string{"toy", "lego", "doll", "puzzle", "game"}},
	{"Outdoor Equipment", []string{"grill", "mower", "patio", "trimmer", "garden"}},
}

// breadcrumbSplitRegex separates breadcrumb trails on ">", "/" or "›".
var breadcrumbSplitRegex = regexp.MustCompile(`\s*[>/›]\s*`)

// parserForHost returns the first registry entry whose fragment the host
// contains; the generic entry matches everything.
func parserForHost(host string) retailerParser {
	host = strings.ToLower(host)
	for _, p := range parserRegistry {
		if len(p.hostFragments) == 0 {
			return p
		}
		for _, fragment := range p.hostFragments {
			if strings.Contains(host, fragment) {
				return p
			}
		}
	}
	return parserRegistry[len(parserRegistry)-1]
}

// ExtractProduct parses a fetched page into an ExtractedProduct. Price is nil
// when no selector produced a recognizable USD price; description falls back
// to "Unknown". A parse failure of the markup itself returns an error so the
// pipeline can drop the item.
func ExtractProduct(pageURL, body string) (*domain.ExtractedProduct, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	host := hostOf(pageURL)
	parser := parserForHost(host)

	price := selectPrice(doc, parser.priceSelectors)
	description := selectFirstText(doc, parser.titleSelectors)
	if description == "" {
		description = unknownValue
	}

	trail := breadcrumbTrail(doc, parser.breadcrumbSelectors)
	category := categorize(doc, trail)
	subCategory := subCategoryOf(trail)

	return &domain.ExtractedProduct{
		URL:         pageURL,
		Source:      host,
		Price:       price,
		Description: description,
		Category:    category,
		SubCategory: subCategory,
		PricerTag:   parser.name,
	}, nil
}

// selectPrice walks the selector cascade and returns the first text that
// contains a USD price pattern.
func selectPrice(doc *goquery.Document, selectors []string) *string {
	for _, sel := range selectors {
		var price *string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if text == "" {
				// meta tags carry the value in content=
				text, _ = s.Attr("content")
			}
			if p := ExtractPriceText(text); p != nil {
				price = p
				return false
			}
			return true
		})
		if price != nil {
			return price
		}
	}
	return nil
}

// selectFirstText returns the first non-empty trimmed text (or content
// attribute) matched by the cascade.
func selectFirstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if text == "" {
				text, _ = s.Attr("content")
				text = strings.TrimSpace(text)
			}
			if text != "" {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return collapseWhitespace(found)
		}
	}
	return ""
}

// breadcrumbTrail returns the breadcrumb segments of the page, if any.
// Anchor texts are preferred; flat trails like "Home > Appliances >
// Refrigerators" are split on ">", "/" or "›".
func breadcrumbTrail(doc *goquery.Document, selectors []string) []string {
	for _, sel := range selectors {
		container := doc.Find(sel).First()
		if container.Length() == 0 {
			continue
		}

		var trail []string
		container.Find("a").Each(func(_ int, s *goquery.Selection) {
			if text := collapseWhitespace(s.Text()); text != "" {
				trail = append(trail, text)
			}
		})
		if len(trail) == 0 {
			for _, segment := range breadcrumbSplitRegex.Split(container.Text(), -1) {
				if segment = collapseWhitespace(segment); segment != "" {
					trail = append(trail, segment)
				}
			}
		}
		if len(trail) > 0 {
			return trail
		}
	}
	return nil
}

// categorize derives the category from breadcrumbs when present, otherwise by
// keyword-matching the page title and headings against the category table.
func categorize(doc *goquery.Document, trail []string) string {
	for _, segment := range trail {
		// Trails usually start with the storefront root
		if !strings.EqualFold(segment, "home") {
			return segment
		}
	}

	var pageText strings.Builder
	pageText.WriteString(doc.Find("title").Text())
	doc.Find("h1, h2").Each(func(_ int, s *goquery.Selection) {
		pageText.WriteString(" ")
		pageText.WriteString(s.Text())
	})

	tokens := TokenSet(pageText.String())
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if tokens[kw] {
				return entry.category
			}
		}
	}
	return unknownValue
}

// subCategoryOf returns the second-to-last breadcrumb segment, the retailer
// convention for the leaf's parent category.
func subCategoryOf(trail []string) string {
	if len(trail) < 2 {
		return unknownValue
	}
	return trail[len(trail)-2]
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return unknownValue
	}
	return strings.ToLower(u.Host)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
