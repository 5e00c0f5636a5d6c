package command

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Input is one line of user text. Raw keeps the user's capitalization for
// captured names; Lower is used for keyword checks.
type Input struct {
	Raw   string
	Lower string
}

// NewInput trims text and prepares both views of it.
func NewInput(text string) Input {
	raw := strings.TrimSpace(text)

	return Input{Raw: raw, Lower: strings.ToLower(raw)}
}

// Rule recognizes one intent category. Match reports false when no phrasing
// of the category fits or when a captured number does not parse; either way
// dispatch moves on to the next rule.
type Rule struct {
	Name  string
	Kind  Kind
	Match func(in Input) (Command, bool)
}

// DefaultRules returns the intent categories in priority order. The first
// rule that matches wins.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "add with details", Kind: KindAddServiceDetailed, Match: matchAddDetailed},
		{Name: "add simple", Kind: KindAddServiceSimple, Match: matchAddSimple},
		{Name: "rename", Kind: KindRenameService, Match: matchRename},
		{Name: "reprice by amount", Kind: KindRepriceByOldAmount, Match: matchRepriceByAmount},
		{Name: "reprice last", Kind: KindRepriceLast, Match: matchRepriceLast},
		{Name: "gst from old value", Kind: KindSetGSTFromOld, Match: matchGSTFromOld},
		{Name: "gst set", Kind: KindSetGST, Match: matchGSTSet},
		{Name: "quantity last", Kind: KindSetQuantityLast, Match: matchQuantityLast},
		{Name: "remove with details", Kind: KindRemoveServiceDetailed, Match: matchRemoveDetailed},
		{Name: "remove simple", Kind: KindRemoveService, Match: matchRemoveSimple},
	}
}

const number = `(\d+(?:\.\d+)?)`

var (
	addDetailedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\badd\s+(?:service\s+)?(.+?)\s+with\s+(?:quantity|qty)\s+(\d+)\s+(?:and\s+)?(?:price|rate)\s+` + number),
		regexp.MustCompile(`(?i)\badd\s+service\s+(.+?)\s+(?:quantity|qty)\s+(\d+)\s+(?:and\s+)?(?:price|rate)\s+` + number),
		regexp.MustCompile(`(?i)\badd\s+(.+?)\s+(?:quantity|qty)\s+(\d+)\s+(?:and\s+)?(?:price|rate)\s+` + number),
	}

	addSimplePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^add\s+service\s+(.+)$`),
		regexp.MustCompile(`(?i)^add\s+(.+?)(?:\s+service)?$`),
	}

	renamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bchange\s+(?:the\s+)?service\s+name\s+(.+?)\s+to\s+(.+)`),
		regexp.MustCompile(`(?i)\bchange\s+(?:the\s+)?(.+?)\s+service\s+name\s+to\s+(.+)`),
		regexp.MustCompile(`(?i)\bchange\s+(?:existing\s+)?service\s+(.+?)\s+to\s+(.+)`),
		regexp.MustCompile(`(?i)\bchange\s+(?:the\s+)?(.+?)\s+to\s+(.+)`),
		regexp.MustCompile(`(?i)\brename\s+(?:the\s+)?(.+?)\s+(?:service\s+)?(?:to|into)\s+(.+)`),
	}

	repriceByAmountPattern = regexp.MustCompile(`(?i)\bchange\s+(?:the\s+)?(?:price\s+)?amount\s+` + number + `\s+(?:into|to)\s+` + number)
	repriceLastPattern     = regexp.MustCompile(`(?i)\bchange\s+(?:the\s+)?(?:price|rate)\s+(?:to\s+)?` + number)
	gstFromOldPattern      = regexp.MustCompile(`(?i)\bchange\s+(?:the\s+)?gst\s+(?:percentage\s+)?(?:from\s+)?` + number + `\s*%?\s+(?:to|into)\s+` + number)
	gstSetPattern          = regexp.MustCompile(`(?i)\bchange\s+(?:the\s+)?gst\s+(?:percentage\s+)?(?:to\s+)?` + number)
	quantityLastPattern    = regexp.MustCompile(`(?i)\bchange\s+(?:the\s+)?(?:quantity|qty)\s+(?:to\s+)?(\d+)`)
	removeDetailedPattern  = regexp.MustCompile(`(?i)\b(?:remove|delete)\s+(.+?)\s+(?:quantity|qty)\s+\d+`)
	removeSimplePattern    = regexp.MustCompile(`(?i)\b(?:remove|delete)\s+(.+)`)

	residualKeyword  = regexp.MustCompile(`(?i)\b(?:quantity|qty|price|rate)\b`)
	trailingClause   = regexp.MustCompile(`(?i)\s+(?:quantity|qty|price|rate)\b.*$`)
	trailingSuffix   = regexp.MustCompile(`(?i)\s+(?:service|works?|with|quantity|qty)\s*$`)
	leadingArticle   = regexp.MustCompile(`(?i)^the\s+`)
	trailingPunct    = regexp.MustCompile(`[\s.!,;:]+$`)
	reservedForRules = map[string]bool{
		"gst": true, "tax": true, "price": true, "rate": true,
		"amount": true, "quantity": true, "qty": true,
	}
)

func matchAddDetailed(in Input) (Command, bool) {
	for _, re := range addDetailedPatterns {
		m := re.FindStringSubmatch(in.Raw)
		if m == nil {
			continue
		}

		name := cleanName(m[1])
		qty, okQty := parseQuantity(m[2])
		price, okPrice := parseAmount(m[3])

		if name == "" || !okQty || !okPrice {
			continue
		}

		return AddServiceDetailed{Name: name, Quantity: qty, Price: price}, true
	}

	return nil, false
}

func matchAddSimple(in Input) (Command, bool) {
	for _, re := range addSimplePatterns {
		m := re.FindStringSubmatch(in.Raw)
		if m == nil {
			continue
		}

		name := cleanName(m[1])
		if name == "" || residualKeyword.MatchString(name) {
			continue
		}

		return AddServiceSimple{Name: name}, true
	}

	return nil, false
}

func matchRename(in Input) (Command, bool) {
	for _, re := range renamePatterns {
		m := re.FindStringSubmatch(in.Raw)
		if m == nil {
			continue
		}

		oldName := cleanName(m[1])
		newName := cleanName(m[2])

		if oldName == "" || newName == "" || strings.EqualFold(oldName, newName) {
			continue
		}

		if startsWithReserved(oldName) {
			continue
		}

		return RenameService{OldName: oldName, NewName: newName}, true
	}

	return nil, false
}

func matchRepriceByAmount(in Input) (Command, bool) {
	m := repriceByAmountPattern.FindStringSubmatch(in.Lower)
	if m == nil {
		return nil, false
	}

	oldPrice, okOld := parseAmount(m[1])
	newPrice, okNew := parseAmount(m[2])

	if !okOld || !okNew {
		return nil, false
	}

	return RepriceByOldAmount{OldPrice: oldPrice, NewPrice: newPrice}, true
}

func matchRepriceLast(in Input) (Command, bool) {
	m := repriceLastPattern.FindStringSubmatch(in.Lower)
	if m == nil {
		return nil, false
	}

	price, ok := parseAmount(m[1])
	if !ok {
		return nil, false
	}

	return RepriceLast{NewPrice: price}, true
}

func matchGSTFromOld(in Input) (Command, bool) {
	m := gstFromOldPattern.FindStringSubmatch(in.Lower)
	if m == nil {
		return nil, false
	}

	oldPct, okOld := parseAmount(m[1])
	newPct, okNew := parseAmount(m[2])

	if !okOld || !okNew {
		return nil, false
	}

	return SetGSTFromOld{OldPercent: oldPct, NewPercent: newPct}, true
}

func matchGSTSet(in Input) (Command, bool) {
	m := gstSetPattern.FindStringSubmatch(in.Lower)
	if m == nil {
		return nil, false
	}

	pct, ok := parseAmount(m[1])
	if !ok {
		return nil, false
	}

	return SetGST{Percent: pct}, true
}

func matchQuantityLast(in Input) (Command, bool) {
	m := quantityLastPattern.FindStringSubmatch(in.Lower)
	if m == nil {
		return nil, false
	}

	qty, ok := parseQuantity(m[1])
	if !ok {
		return nil, false
	}

	return SetQuantityLast{Quantity: qty}, true
}

func matchRemoveDetailed(in Input) (Command, bool) {
	m := removeDetailedPattern.FindStringSubmatch(in.Raw)
	if m == nil {
		return nil, false
	}

	name := cleanTarget(m[1])
	if name == "" {
		return nil, false
	}

	return RemoveServiceDetailed{Name: name}, true
}

func matchRemoveSimple(in Input) (Command, bool) {
	m := removeSimplePattern.FindStringSubmatch(in.Raw)
	if m == nil {
		return nil, false
	}

	name := cleanTarget(trailingClause.ReplaceAllString(m[1], ""))
	if name == "" {
		return nil, false
	}

	return RemoveService{Name: name}, true
}

// cleanName strips punctuation and generic suffix words left behind by a
// lazy capture, e.g. "Website service" or "Logo Design with".
func cleanName(s string) string {
	s = trailingPunct.ReplaceAllString(strings.TrimSpace(s), "")

	for {
		next := strings.TrimSpace(trailingSuffix.ReplaceAllString(s, ""))
		if next == s {
			return s
		}

		s = next
	}
}

func cleanTarget(s string) string {
	return cleanName(leadingArticle.ReplaceAllString(strings.TrimSpace(s), ""))
}

func startsWithReserved(name string) bool {
	fields := strings.Fields(strings.ToLower(name))

	return len(fields) > 0 && reservedForRules[fields[0]]
}

func parseQuantity(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}
