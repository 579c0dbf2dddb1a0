package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/imovelhub/ingest/internal/ingest"
)

// Config describes how to turn one source's index page into listing records.
type Config struct {
	Agency       string
	BaseURL      string
	CardSelector string
	Rules        RuleSet
	// RefPattern derives the reference code from the detail link when the
	// card carries no explicit ref element (capture group 1).
	RefPattern string
	// ZeroPriceWhenMissing records 0 instead of null for cards without a
	// visible price. Kept explicit per source business rule.
	ZeroPriceWhenMissing bool
}

// CardExtractor converts rendered index pages into ScrapedListing records.
type CardExtractor struct {
	cfg        Config
	base       *url.URL
	refPattern *regexp.Regexp
	logger     *zap.Logger
}

// New validates the config and builds a CardExtractor.
func New(cfg Config, logger *zap.Logger) (*CardExtractor, error) {
	if cfg.CardSelector == "" {
		return nil, fmt.Errorf("card selector is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	var refPattern *regexp.Regexp
	if cfg.RefPattern != "" {
		refPattern, err = regexp.Compile(cfg.RefPattern)
		if err != nil {
			return nil, fmt.Errorf("compile ref pattern: %w", err)
		}
	}
	return &CardExtractor{
		cfg:        cfg,
		base:       base,
		refPattern: refPattern,
		logger:     logger,
	}, nil
}

// Extract parses every listing card on the page. Missing fields resolve to
// null; only a malformed document returns an error.
func (e *CardExtractor) Extract(page ingest.Page) ([]ingest.ScrapedListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", page.URL, err)
	}

	var listings []ingest.ScrapedListing
	doc.Find(e.cfg.CardSelector).Each(func(i int, card *goquery.Selection) {
		listing := e.extractCard(card)
		if listing.Ref == "" {
			e.logger.Debug("card without ref dropped at extraction",
				zap.String("agency", e.cfg.Agency),
				zap.String("page", page.URL),
				zap.Int("card", i),
			)
		}
		listings = append(listings, listing)
	})
	return listings, nil
}

func (e *CardExtractor) extractCard(card *goquery.Selection) ingest.ScrapedListing {
	listing := ingest.ScrapedListing{
		Agency:  e.cfg.Agency,
		ForSale: true,
	}

	if raw, ok := e.cfg.Rules.Name.Apply(card); ok {
		listing.Name = &raw
	}
	if raw, ok := e.cfg.Rules.Link.Apply(card); ok {
		link := e.resolveLink(raw)
		listing.Link = &link
	}
	if raw, ok := e.cfg.Rules.Image.Apply(card); ok {
		image := e.resolveLink(raw)
		listing.Image = &image
	}
	if raw, ok := e.cfg.Rules.Address.Apply(card); ok {
		listing.Address = &raw
	}
	if raw, ok := e.cfg.Rules.Type.Apply(card); ok {
		normalized := NormalizeType(raw)
		listing.Type = &normalized
	}
	if raw, ok := e.cfg.Rules.Area.Apply(card); ok {
		listing.Area = ParseArea(raw)
	}
	if raw, ok := e.cfg.Rules.Bedrooms.Apply(card); ok {
		listing.Bedrooms = ParseCount(raw)
	}
	if raw, ok := e.cfg.Rules.Bathrooms.Apply(card); ok {
		listing.Bathrooms = ParseCount(raw)
	}
	if raw, ok := e.cfg.Rules.Parking.Apply(card); ok {
		listing.Parking = ParseCount(raw)
	}

	listing.Price = e.extractPrice(card)
	listing.Ref = e.extractRef(card, listing.Link)

	return listing
}

func (e *CardExtractor) extractPrice(card *goquery.Selection) *float64 {
	if raw, ok := e.cfg.Rules.Price.Apply(card); ok {
		if price := ParsePrice(raw); price != nil {
			return price
		}
	}
	if e.cfg.ZeroPriceWhenMissing {
		zero := 0.0
		return &zero
	}
	return nil
}

func (e *CardExtractor) extractRef(card *goquery.Selection, link *string) string {
	if raw, ok := e.cfg.Rules.Ref.Apply(card); ok {
		return raw
	}
	if e.refPattern != nil && link != nil {
		if groups := e.refPattern.FindStringSubmatch(*link); len(groups) > 1 {
			return groups[1]
		}
	}
	return ""
}

func (e *CardExtractor) resolveLink(raw string) string {
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return e.base.ResolveReference(ref).String()
}
