package command

import (
	"math"

	"github.com/jsamuelsen/quote-engine/internal/domain"
	"github.com/jsamuelsen/quote-engine/internal/pricing"
)

// Outcome reports what happened to the quotation.
type Outcome int

const (
	// OutcomeNoMatch means no rule recognized the text.
	OutcomeNoMatch Outcome = iota

	// OutcomeApplied means the command changed the quotation.
	OutcomeApplied

	// OutcomeTargetNotFound means a rule matched but no service satisfied its
	// name or price anchor, or the edit was already in place.
	OutcomeTargetNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeTargetNotFound:
		return "target_not_found"
	default:
		return "no_match"
	}
}

// priceTolerance is how close a service price must be to an "old amount"
// anchor, and how close the current GST must be to an "old percentage".
const priceTolerance = 0.01

// Result is the outcome of interpreting one line.
type Result struct {
	Command Command
	Outcome Outcome

	// Quotation is the recalculated copy when Outcome is OutcomeApplied and
	// the input quotation itself otherwise.
	Quotation *domain.Quotation
}

// Applied reports whether the quotation changed.
func (r Result) Applied() bool {
	return r.Outcome == OutcomeApplied
}

// Interpreter dispatches text over an ordered rule table.
type Interpreter struct {
	rules    []Rule
	features func(name string) []string
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithRules replaces the default rule table.
func WithRules(rules []Rule) Option {
	return func(i *Interpreter) {
		i.rules = rules
	}
}

// WithFeatureGenerator replaces the key-feature generator used for new and
// renamed services.
func WithFeatureGenerator(fn func(name string) []string) Option {
	return func(i *Interpreter) {
		i.features = fn
	}
}

// New creates an Interpreter with DefaultRules.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		rules:    DefaultRules(),
		features: GenerateKeyFeatures,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Rules returns a copy of the rule table in priority order.
func (i *Interpreter) Rules() []Rule {
	return append([]Rule(nil), i.rules...)
}

// Parse classifies text without touching any quotation.
func (i *Interpreter) Parse(text string) Command {
	in := NewInput(text)
	if in.Raw == "" {
		return NoMatch{}
	}

	for _, r := range i.rules {
		if cmd, ok := r.Match(in); ok {
			return cmd
		}
	}

	return NoMatch{}
}

// Interpret parses text and applies the resulting command to a copy of q.
// q is never mutated.
func (i *Interpreter) Interpret(text string, q *domain.Quotation) Result {
	if q == nil {
		q = domain.NewQuotation("")
	}

	cmd := i.Parse(text)
	if _, none := cmd.(NoMatch); none {
		return Result{Command: cmd, Outcome: OutcomeNoMatch, Quotation: q}
	}

	work := q.Clone()
	if !i.apply(cmd, work) {
		return Result{Command: cmd, Outcome: OutcomeTargetNotFound, Quotation: q}
	}

	return Result{Command: cmd, Outcome: OutcomeApplied, Quotation: pricing.Recalculate(work)}
}

func (i *Interpreter) apply(cmd Command, q *domain.Quotation) bool {
	switch c := cmd.(type) {
	case AddServiceDetailed:
		if idx := q.IndexExact(c.Name); idx >= 0 {
			s := &q.Services[idx]
			s.Quantity = c.Quantity
			s.Price = c.Price

			if len(s.KeyFeatures) == 0 {
				s.KeyFeatures = i.features(s.Name)
			}

			return true
		}

		q.Services = append(q.Services, domain.Service{
			Name:        c.Name,
			Quantity:    c.Quantity,
			Price:       c.Price,
			KeyFeatures: i.features(c.Name),
		})

		return true

	case AddServiceSimple:
		if q.IndexExact(c.Name) >= 0 {
			return false
		}

		q.Services = append(q.Services, domain.Service{
			Name:        c.Name,
			Quantity:    1,
			KeyFeatures: i.features(c.Name),
		})

		return true

	case RenameService:
		idx := q.IndexMatching(c.OldName)
		if idx < 0 {
			idx = q.IndexByFirstWord(c.OldName)
		}

		if idx < 0 {
			return false
		}

		q.Services[idx].Name = c.NewName
		q.Services[idx].KeyFeatures = i.features(c.NewName)

		return true

	case RepriceByOldAmount:
		for idx := range q.Services {
			if math.Abs(q.Services[idx].Price-c.OldPrice) < priceTolerance {
				q.Services[idx].Price = c.NewPrice

				return true
			}
		}

		return false

	case RepriceLast:
		last := q.Last()
		if last < 0 {
			return false
		}

		q.Services[last].Price = c.NewPrice

		return true

	case SetGSTFromOld:
		if math.Abs(q.GSTPercentage-c.OldPercent) >= priceTolerance && q.GSTPercentage != 0 {
			return false
		}

		q.GSTPercentage = c.NewPercent

		return true

	case SetGST:
		q.GSTPercentage = c.Percent

		return true

	case SetQuantityLast:
		last := q.Last()
		if last < 0 {
			return false
		}

		q.Services[last].Quantity = c.Quantity

		return true

	case RemoveServiceDetailed:
		return removeMatching(q, c.Name)

	case RemoveService:
		return removeMatching(q, c.Name)
	}

	return false
}

func removeMatching(q *domain.Quotation, name string) bool {
	idx := q.IndexMatching(name)
	if idx < 0 {
		return false
	}

	q.Services = append(q.Services[:idx], q.Services[idx+1:]...)

	return true
}
