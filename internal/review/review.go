// Package review checks a quotation for problems before it is sent to a
// customer and proposes cleaned-up service names.
package review

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/quote-engine/internal/domain"
)

// IssueType groups findings.
type IssueType string

const (
	TypeCalculation  IssueType = "calculation"
	TypeFormatting   IssueType = "formatting"
	TypeGrammar      IssueType = "grammar"
	TypeLegal        IssueType = "legal"
	TypePresentation IssueType = "presentation"
)

// Severity ranks findings. Only SeverityError blocks readiness.
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Issue is a single finding.
type Issue struct {
	Type     IssueType
	Severity Severity
	Message  string
	Field    string
}

// Result is the outcome of Review.
type Result struct {
	Issues      []Issue
	Suggestions []string
	Ready       bool

	// Enhanced is a copy of the input with service names tidied.
	Enhanced *domain.Quotation
}

const highValueThreshold = 100000

var (
	tolerance = decimal.RequireFromString("0.01")
	hundred   = decimal.NewFromInt(100)
	thousand  = decimal.NewFromInt(1000)

	multiSpace   = regexp.MustCompile(`\s+`)
	commaSpacing = regexp.MustCompile(`\s*,\s*`)

	properTerms = []struct {
		pattern *regexp.Regexp
		proper  string
	}{
		{regexp.MustCompile(`(?i)\bwebsite\b`), "Website"},
		{regexp.MustCompile(`(?i)\bweb\b`), "Web"},
		{regexp.MustCompile(`(?i)\bapp\b`), "App"},
		{regexp.MustCompile(`(?i)\bapi\b`), "API"},
		{regexp.MustCompile(`(?i)\bui\b`), "UI"},
		{regexp.MustCompile(`(?i)\bux\b`), "UX"},
		{regexp.MustCompile(`(?i)\bseo\b`), "SEO"},
		{regexp.MustCompile(`(?i)\bgst\b`), "GST"},
		{regexp.MustCompile(`(?i)\bvat\b`), "VAT"},
		{regexp.MustCompile(`(?i)\bcrm\b`), "CRM"},
		{regexp.MustCompile(`(?i)\berp\b`), "ERP"},
		{regexp.MustCompile(`(?i)\bai\b`), "AI"},
	}
)

// Review runs every check over q. q is not modified.
func Review(q *domain.Quotation) Result {
	if q == nil {
		q = domain.NewQuotation("")
	}

	var issues []Issue

	issues = append(issues, checkFormatting(q)...)
	issues = append(issues, verifyCalculations(q)...)
	issues = append(issues, Issue{
		Type:     TypeLegal,
		Severity: SeveritySuggestion,
		Message:  "Verify that GST/tax information and payment terms are clearly stated.",
	})

	enhanced := q.Clone()
	for i := range enhanced.Services {
		enhanced.Services[i].Name = FormatServiceName(enhanced.Services[i].Name)
	}

	ready := true

	for _, issue := range issues {
		if issue.Severity == SeverityError {
			ready = false

			break
		}
	}

	return Result{
		Issues:      issues,
		Suggestions: presentationSuggestions(enhanced),
		Ready:       ready,
		Enhanced:    enhanced,
	}
}

// FormatServiceName trims and collapses whitespace, capitalizes the first
// letter and normalizes well-known acronyms.
func FormatServiceName(name string) string {
	name = strings.TrimSpace(multiSpace.ReplaceAllString(name, " "))
	if name == "" {
		return ""
	}

	name = strings.TrimSpace(commaSpacing.ReplaceAllString(name, ", "))

	r, size := utf8.DecodeRuneInString(name)
	name = string(unicode.ToUpper(r)) + name[size:]

	for _, term := range properTerms {
		name = term.pattern.ReplaceAllString(name, term.proper)
	}

	return name
}

func checkFormatting(q *domain.Quotation) []Issue {
	if len(q.Services) == 0 {
		return []Issue{{
			Type:     TypeFormatting,
			Severity: SeverityError,
			Message:  "No services found in quotation. Please add at least one service.",
		}}
	}

	var issues []Issue

	for i, s := range q.Services {
		name := strings.TrimSpace(s.Name)
		field := fmt.Sprintf("services[%d]", i)

		switch {
		case name == "":
			issues = append(issues, Issue{
				Type:     TypeFormatting,
				Severity: SeverityError,
				Message:  fmt.Sprintf("Service %d has no name.", i+1),
				Field:    field + ".service_name",
			})
		default:
			if r, _ := utf8.DecodeRuneInString(name); unicode.IsLower(r) {
				issues = append(issues, Issue{
					Type:     TypeGrammar,
					Severity: SeveritySuggestion,
					Message:  fmt.Sprintf("Service %q should start with a capital letter.", name),
					Field:    field + ".service_name",
				})
			}

			if strings.Contains(s.Name, "  ") || name != s.Name {
				issues = append(issues, Issue{
					Type:     TypeFormatting,
					Severity: SeveritySuggestion,
					Message:  fmt.Sprintf("Service %q has spacing issues.", name),
					Field:    field + ".service_name",
				})
			}
		}

		if s.Quantity <= 0 {
			issues = append(issues, Issue{
				Type:     TypeFormatting,
				Severity: SeverityError,
				Message:  fmt.Sprintf("Service %q has invalid quantity (%d).", name, s.Quantity),
				Field:    field + ".quantity",
			})
		}

		if s.Price < 0 {
			issues = append(issues, Issue{
				Type:     TypeFormatting,
				Severity: SeverityError,
				Message:  fmt.Sprintf("Service %q has negative unit price.", name),
				Field:    field + ".price",
			})
		}
	}

	return issues
}

// verifyCalculations recomputes every derived field in exact decimal and
// flags differences above 0.01.
func verifyCalculations(q *domain.Quotation) []Issue {
	if len(q.Services) == 0 {
		return nil
	}

	var issues []Issue

	mismatch := func(field, label string, expected, actual decimal.Decimal) {
		if expected.Sub(actual).Abs().GreaterThan(tolerance) {
			issues = append(issues, Issue{
				Type:     TypeCalculation,
				Severity: SeverityError,
				Message: fmt.Sprintf("%s mismatch. Expected: %s, Actual: %s",
					label, expected.StringFixed(2), actual.StringFixed(2)),
				Field: field,
			})
		}
	}

	subtotal := decimal.Zero

	for i, s := range q.Services {
		expected := dec(s.Price).Mul(decimal.NewFromInt(int64(s.Quantity)))
		actual := dec(s.Amount)
		mismatch(fmt.Sprintf("services[%d].amount", i), fmt.Sprintf("Service %q amount", s.Name), expected, actual)

		subtotal = subtotal.Add(actual)
	}

	mismatch("subtotal", "Subtotal", subtotal, dec(q.Subtotal))

	pct := dec(q.GSTPercentage)
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		issues = append(issues, Issue{
			Type:     TypeCalculation,
			Severity: SeverityError,
			Message:  fmt.Sprintf("Invalid GST percentage: %s%%. Must be between 0 and 100.", pct.String()),
			Field:    "gst_percentage",
		})
	} else {
		mismatch("gst_amount", "GST amount", subtotal.Mul(pct).Div(hundred), dec(q.GSTAmount))
	}

	mismatch("grand_total", "Grand total",
		subtotal.Add(dec(q.GSTAmount)), dec(q.GrandTotal))

	return issues
}

func presentationSuggestions(q *domain.Quotation) []string {
	if len(q.Services) == 0 {
		return nil
	}

	var (
		suggestions []string
		free        int
		highValue   int
		rounded     int
	)

	for _, s := range q.Services {
		if s.Price == 0 && s.Quantity > 0 {
			free++
		}

		if s.Amount > highValueThreshold {
			highValue++
		}

		if price := dec(s.Price); price.IsPositive() && price.Mod(thousand).IsZero() {
			rounded++
		}
	}

	if free > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("Consider clearly marking %d free/complimentary service(s) in the quotation.", free))
	}

	if highValue > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("Consider highlighting %d high-value service(s) for better visibility.", highValue))
	}

	if len(q.Services) > 10 {
		suggestions = append(suggestions, "Consider grouping similar services for better readability.")
	}

	if rounded == len(q.Services) {
		suggestions = append(suggestions, "All prices appear to be rounded. Consider if more precise pricing is needed.")
	}

	return suggestions
}

// dec converts a float, mapping NaN and infinities to zero.
func dec(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}

	return decimal.NewFromFloat(v)
}
