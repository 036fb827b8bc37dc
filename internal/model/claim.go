package model

// Datatype identifies the value shape of a canonical claim. Every claim a
// transformer emits carries exactly one of these; the serializer refuses
// anything it cannot match against the property registry.
type Datatype int

const (
	DatatypeItem Datatype = iota
	DatatypeString
	DatatypeMonolingualText
	DatatypeExternalID
	DatatypeTime
	DatatypeQuantity
)

func (d Datatype) String() string {
	switch d {
	case DatatypeItem:
		return "item"
	case DatatypeString:
		return "string"
	case DatatypeMonolingualText:
		return "monolingualtext"
	case DatatypeExternalID:
		return "external-id"
	case DatatypeTime:
		return "time"
	case DatatypeQuantity:
		return "quantity"
	default:
		return "unknown"
	}
}

// TimePrecision uses the Wikibase precision scale.
type TimePrecision int

const (
	PrecisionYear  TimePrecision = 9
	PrecisionMonth TimePrecision = 10
	PrecisionDay   TimePrecision = 11
)

// Claim is the universal intermediate representation every field transformer
// emits into: one typed value plus optional ordered qualifiers and an optional
// reference block.
type Claim struct {
	Type       Datatype
	Value      string        // item id, string, external id, or fixed-width date
	Language   string        // monolingual text only
	Precision  TimePrecision // time only
	Amount     int           // quantity only
	Unit       string        // quantity unit item, "" for dimensionless
	NoValue    bool          // explicit no-value snak
	Qualifiers []Qualifier
	Reference  *Reference
}

// Qualifier attaches one claim to another under a qualifier property.
type Qualifier struct {
	Property string
	Claim    Claim
}

// Reference is the provenance block of a claim: a stated-in item plus any
// extra reference parts (used for cross-reference mapping provenance).
type Reference struct {
	StatedIn string
	Parts    []Qualifier
}

// ItemClaim returns an item-reference claim for the given target identifier.
func ItemClaim(id string) Claim {
	return Claim{Type: DatatypeItem, Value: id}
}

// StringClaim returns a plain string claim.
func StringClaim(v string) Claim {
	return Claim{Type: DatatypeString, Value: v}
}

// TextClaim returns a monolingual-text claim.
func TextClaim(v, lang string) Claim {
	return Claim{Type: DatatypeMonolingualText, Value: v, Language: lang}
}

// ExternalIDClaim returns an external-identifier claim.
func ExternalIDClaim(v string) Claim {
	return Claim{Type: DatatypeExternalID, Value: v}
}

// TimeClaim returns a time claim with the given fixed-width date and precision.
func TimeClaim(date string, precision TimePrecision) Claim {
	return Claim{Type: DatatypeTime, Value: date, Precision: precision}
}

// QuantityClaim returns a quantity claim.
func QuantityClaim(amount int, unit string) Claim {
	return Claim{Type: DatatypeQuantity, Amount: amount, Unit: unit}
}

// Qualify returns a copy of the claim with an extra qualifier appended.
func (c Claim) Qualify(property string, q Claim) Claim {
	c.Qualifiers = append(append([]Qualifier(nil), c.Qualifiers...), Qualifier{Property: property, Claim: q})
	return c
}

// WithReference returns a copy of the claim carrying the given reference.
func (c Claim) WithReference(ref *Reference) Claim {
	c.Reference = ref
	return c
}

// ClaimGraph holds every statement about one target entity, keyed by property
// identifier, in insertion order, together with its alias block. Built per
// record and discarded after serialization.
type ClaimGraph struct {
	order   []string
	claims  map[string][]Claim
	Aliases map[string][]string // language → alias texts
}

// NewClaimGraph returns an empty claim graph.
func NewClaimGraph() *ClaimGraph {
	return &ClaimGraph{
		claims:  make(map[string][]Claim),
		Aliases: make(map[string][]string),
	}
}

// Set replaces the claims under a property with a single claim.
func (g *ClaimGraph) Set(property string, c Claim) {
	if _, ok := g.claims[property]; !ok {
		g.order = append(g.order, property)
	}
	g.claims[property] = []Claim{c}
}

// Add appends a claim under a property, preserving multi-valued order.
func (g *ClaimGraph) Add(property string, c Claim) {
	if _, ok := g.claims[property]; !ok {
		g.order = append(g.order, property)
	}
	g.claims[property] = append(g.claims[property], c)
}

// Claims returns the claims recorded under a property, in insertion order.
func (g *ClaimGraph) Claims(property string) []Claim {
	return g.claims[property]
}

// Properties returns every property in the graph, in first-insertion order.
func (g *ClaimGraph) Properties() []string {
	return g.order
}

// Len returns the number of distinct properties in the graph.
func (g *ClaimGraph) Len() int {
	return len(g.order)
}

// AddAlias records an alias text under a language code, skipping duplicates.
func (g *ClaimGraph) AddAlias(lang, text string) {
	for _, a := range g.Aliases[lang] {
		if a == text {
			return
		}
	}
	g.Aliases[lang] = append(g.Aliases[lang], text)
}
