package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/santistebanc/motia/internal/domain/entity"
	"github.com/santistebanc/motia/pkg/logger"
)

// Extractor parses the fare site's result page into raw itinerary
// records. The markup varies between single-leg, multi-leg, one-way and
// round-trip offers, so every field is pulled defensively and partially
// extracted legs are dropped rather than failing the document.
type Extractor struct {
	logger logger.Logger
}

// NewExtractor creates a new result page extractor
func NewExtractor(logger logger.Logger) *Extractor {
	return &Extractor{logger: logger}
}

var (
	airportCodeRe = regexp.MustCompile(`^([A-Z]{3})`)
	priceRe       = regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]+)?)`)
	legDateRe     = regexp.MustCompile(`(\d{1,2}\s+[A-Za-z]{3}\.?\s+\d{4})`)
)

// Extract pulls every itinerary block out of a result page document.
// A block that cannot be parsed is skipped; the rest of the document
// still yields results.
func (e *Extractor) Extract(html string) ([]entity.Itinerary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse result page: %w", err)
	}

	var itineraries []entity.Itinerary
	doc.Find("div.search-modal").Each(func(i int, block *goquery.Selection) {
		itinerary, err := e.extractBlock(block)
		if err != nil {
			e.logger.Debug("Skipping itinerary block", "index", i, "reason", err.Error())
			return
		}
		itineraries = append(itineraries, *itinerary)
	})

	return itineraries, nil
}

func (e *Extractor) extractBlock(block *goquery.Selection) (*entity.Itinerary, error) {
	outHeading := findHeading(block, isOutboundHeading)
	if outHeading == nil {
		return nil, fmt.Errorf("no outbound heading")
	}

	outbound, err := e.extractSection(outHeading)
	if err != nil {
		return nil, fmt.Errorf("outbound section: %w", err)
	}

	itinerary := &entity.Itinerary{Outbound: *outbound}

	if retHeading := findHeading(block, isReturnHeading); retHeading != nil {
		if ret, err := e.extractSection(retHeading); err == nil {
			itinerary.Return = ret
		} else {
			e.logger.Debug("Dropping return section", "reason", err.Error())
		}
	}

	itinerary.Prices = e.extractPrices(block)
	if len(itinerary.Prices) == 0 {
		return nil, fmt.Errorf("no parseable prices")
	}

	return itinerary, nil
}

func isOutboundHeading(text string) bool {
	return strings.Contains(text, "Outbound") &&
		!strings.Contains(text, "Return") &&
		!strings.Contains(text, "Book Your Ticket")
}

func isReturnHeading(text string) bool {
	return strings.Contains(text, "Return") &&
		!strings.Contains(text, "Book Your Ticket")
}

func findHeading(block *goquery.Selection, match func(string) bool) *goquery.Selection {
	var found *goquery.Selection
	block.Find(".card-header").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if match(strings.TrimSpace(h.Text())) {
			found = h
			return false
		}
		return true
	})
	return found
}

// extractSection reads one direction's panel: the date from the heading
// label, the summary row, and one record per leg sub-panel.
func (e *Extractor) extractSection(heading *goquery.Selection) (*entity.ItinerarySection, error) {
	panel := heading.Next()
	if panel.Length() == 0 || !panel.HasClass("card-body") {
		return nil, fmt.Errorf("no detail panel")
	}

	section := &entity.ItinerarySection{
		Date: headingDate(heading.Text()),
	}

	summary := panel.Find(".flight-summary").First()
	section.Airline = text(summary, ".airline-name")
	section.Depart = text(summary, ".depart")
	section.Arrive = text(summary, ".arrive")
	section.Duration = text(summary, ".duration")
	section.Stops = text(summary, ".stops")

	panel.Find(".leg").Each(func(_ int, legSel *goquery.Selection) {
		leg, ok := e.extractLeg(legSel)
		if !ok {
			e.logger.Debug("Dropping partially extracted leg")
			return
		}
		section.Legs = append(section.Legs, leg)
	})

	if len(section.Legs) == 0 {
		return nil, fmt.Errorf("no usable legs")
	}

	return section, nil
}

// extractLeg returns ok=false unless departure time, arrival time and
// both airport codes were all found.
func (e *Extractor) extractLeg(legSel *goquery.Selection) (entity.SectionLeg, bool) {
	var leg entity.SectionLeg

	// Combined "airline + number" label; the flight number is the last
	// whitespace-delimited token.
	label := text(legSel, ".flight-label")
	tokens := strings.Fields(label)
	if len(tokens) > 0 {
		leg.FlightNumber = tokens[len(tokens)-1]
		leg.Airline = strings.Join(tokens[:len(tokens)-1], " ")
	}

	leg.DepartTime = text(legSel, ".depart-time")
	leg.ArriveTime = text(legSel, ".arrive-time")
	leg.From = airportCode(text(legSel, ".depart-airport"))
	leg.To = airportCode(text(legSel, ".arrive-airport"))
	leg.Duration = text(legSel, ".leg-duration")
	leg.Connection = text(legSel, ".connection")

	// Usually only the final leg of a direction carries a summary with
	// an explicit arrival date, signalling an overnight arrival.
	if summary := text(legSel, ".leg-summary"); summary != "" {
		if match := legDateRe.FindStringSubmatch(summary); match != nil {
			leg.ArrivalDate = match[1]
		}
	}

	if leg.DepartTime == "" || leg.ArriveTime == "" || leg.From == "" || leg.To == "" {
		return entity.SectionLeg{}, false
	}
	return leg, true
}

// extractPrices reads the shared provider price list and returns it
// sorted ascending; the headline price is the minimum.
func (e *Extractor) extractPrices(block *goquery.Selection) []entity.PriceOption {
	var prices []entity.PriceOption

	block.Find(".price-list .price-row").Each(func(_ int, row *goquery.Selection) {
		provider := text(row, ".provider")
		if provider == "" {
			return
		}

		rowText := strings.TrimSpace(row.Find(".price").Text())
		if rowText == "" {
			rowText = strings.TrimSpace(row.Text())
			rowText = strings.TrimPrefix(rowText, provider)
		}
		match := priceRe.FindStringSubmatch(rowText)
		if match == nil {
			return
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			return
		}

		option := entity.PriceOption{Provider: provider, Price: price}
		if href, ok := row.Find("a").First().Attr("href"); ok {
			option.Link = deepLink(href)
		}
		prices = append(prices, option)
	})

	sort.Slice(prices, func(i, j int) bool { return prices[i].Price < prices[j].Price })
	return prices
}

// deepLink pulls the percent-encoded u= parameter out of a booking
// anchor, falling back to the raw substring when decoding fails.
func deepLink(href string) string {
	idx := strings.Index(href, "u=")
	if idx == -1 {
		return ""
	}
	raw := href[idx+2:]
	if amp := strings.IndexByte(raw, '&'); amp != -1 {
		raw = raw[:amp]
	}
	if decoded, err := url.QueryUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// headingDate reads the date label out of heading text like
// "Outbound - 11 Dec 2025".
func headingDate(headingText string) string {
	parts := strings.SplitN(strings.TrimSpace(headingText), " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// airportCode keeps the leading 3 uppercase letters of a longer airport
// label such as "VIE Vienna International".
func airportCode(label string) string {
	if match := airportCodeRe.FindStringSubmatch(strings.TrimSpace(label)); match != nil {
		return match[1]
	}
	return ""
}

func text(sel *goquery.Selection, selector string) string {
	return strings.TrimSpace(sel.Find(selector).First().Text())
}
