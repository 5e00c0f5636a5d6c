// Package command turns one line of free text into at most one structured
// quotation edit and applies it.
package command

// Kind identifies a command variant.
type Kind int

const (
	KindNoMatch Kind = iota
	KindAddServiceDetailed
	KindAddServiceSimple
	KindRenameService
	KindRepriceByOldAmount
	KindRepriceLast
	KindSetGSTFromOld
	KindSetGST
	KindSetQuantityLast
	KindRemoveServiceDetailed
	KindRemoveService
)

var kindNames = map[Kind]string{
	KindNoMatch:               "no_match",
	KindAddServiceDetailed:    "add_service_detailed",
	KindAddServiceSimple:      "add_service_simple",
	KindRenameService:         "rename_service",
	KindRepriceByOldAmount:    "reprice_by_old_amount",
	KindRepriceLast:           "reprice_last",
	KindSetGSTFromOld:         "set_gst_from_old",
	KindSetGST:                "set_gst",
	KindSetQuantityLast:       "set_quantity_last",
	KindRemoveServiceDetailed: "remove_service_detailed",
	KindRemoveService:         "remove_service",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown"
}

// Command is one structured edit. Exactly one Command, possibly NoMatch,
// results from each line of input.
type Command interface {
	Kind() Kind
}

// AddServiceDetailed adds a service, or updates quantity and price of an
// existing service with the same name.
type AddServiceDetailed struct {
	Name     string
	Quantity int
	Price    float64
}

// AddServiceSimple adds a service with quantity 1 and no price.
type AddServiceSimple struct {
	Name string
}

// RenameService renames the service matching OldName.
type RenameService struct {
	OldName string
	NewName string
}

// RepriceByOldAmount reprices the first service whose price is within 0.01
// of OldPrice.
type RepriceByOldAmount struct {
	OldPrice float64
	NewPrice float64
}

// RepriceLast reprices the last service.
type RepriceLast struct {
	NewPrice float64
}

// SetGSTFromOld sets the GST percentage only when the current one equals
// OldPercent or is zero.
type SetGSTFromOld struct {
	OldPercent float64
	NewPercent float64
}

// SetGST sets the GST percentage unconditionally.
type SetGST struct {
	Percent float64
}

// SetQuantityLast sets the quantity of the last service.
type SetQuantityLast struct {
	Quantity int
}

// RemoveServiceDetailed removes a service named together with a quantity
// clause, as in "remove SEO quantity 2".
type RemoveServiceDetailed struct {
	Name string
}

// RemoveService removes the first service matching Name.
type RemoveService struct {
	Name string
}

// NoMatch is produced when no rule recognizes the text.
type NoMatch struct{}

func (AddServiceDetailed) Kind() Kind    { return KindAddServiceDetailed }
func (AddServiceSimple) Kind() Kind      { return KindAddServiceSimple }
func (RenameService) Kind() Kind         { return KindRenameService }
func (RepriceByOldAmount) Kind() Kind    { return KindRepriceByOldAmount }
func (RepriceLast) Kind() Kind           { return KindRepriceLast }
func (SetGSTFromOld) Kind() Kind         { return KindSetGSTFromOld }
func (SetGST) Kind() Kind                { return KindSetGST }
func (SetQuantityLast) Kind() Kind       { return KindSetQuantityLast }
func (RemoveServiceDetailed) Kind() Kind { return KindRemoveServiceDetailed }
func (RemoveService) Kind() Kind         { return KindRemoveService }
func (NoMatch) Kind() Kind               { return KindNoMatch }
