// Package serialize renders canonical claim graphs into write-ready Wikibase
// statements. The property registry pins every property to one datatype and
// every claim class to its allowed qualifiers; a claim that does not match is
// a fatal UnrecognizedShapeError, never coerced.
package serialize

import (
	"fmt"
	"strings"

	"github.com/openlitdb/litbridge/internal/model"
	"github.com/openlitdb/litbridge/internal/wikibase"
)

const gregorianCalendar = "http://www.wikidata.org/entity/Q1985727"

// registry maps every property the assemblers emit to its datatype.
var registry = map[string]model.Datatype{
	model.PropInstanceOf:       model.DatatypeItem,
	model.PropStatedIn:         model.DatatypeItem,
	model.PropLanguageOfWork:   model.DatatypeItem,
	model.PropAuthor:           model.DatatypeItem,
	model.PropPublisher:        model.DatatypeItem,
	model.PropKeyword:          model.DatatypeItem,
	model.PropMeshQualifier:    model.DatatypeItem,
	model.PropMeshHeading:      model.DatatypeItem,
	model.PropMappingFrom:      model.DatatypeItem,
	model.PropMappingTo:        model.DatatypeItem,
	model.PropPublishedIn:      model.DatatypeItem,
	model.PropCopyrightHolder:  model.DatatypeItem,
	model.PropOwner:            model.DatatypeItem,
	model.PropInDatabase:       model.DatatypeItem,
	model.PropCitationSubset:   model.DatatypeItem,
	model.PropValid:            model.DatatypeItem,
	model.PropPublicationType:  model.DatatypeItem,
	model.PropCountryOfOrigin:  model.DatatypeItem,
	model.PropFundingAgency:    model.DatatypeItem,
	model.PropPrimaryInstitute: model.DatatypeItem,
	model.PropComplete:         model.DatatypeItem,
	model.PropDescriptorType:   model.DatatypeItem,
	model.PropMajorTopic:       model.DatatypeItem,
	model.PropHeadingCategory:  model.DatatypeItem,
	model.PropPublicationModel: model.DatatypeItem,
	model.PropQualifierMajor:   model.DatatypeItem,
	model.PropOnBehalfOf:       model.DatatypeItem,
	model.PropIndexingMethod:   model.DatatypeItem,
	model.PropRecordStatus:     model.DatatypeItem,
	model.PropCitedMedium:      model.DatatypeItem,
	model.PropAffiliation:      model.DatatypeItem,
	model.PropGrant:            model.DatatypeItem,
	model.PropSubstance:        model.DatatypeItem,

	model.PropTitle:           model.DatatypeMonolingualText,
	model.PropAbstract:        model.DatatypeMonolingualText,
	model.PropForeName:        model.DatatypeMonolingualText,
	model.PropISOAbbreviation: model.DatatypeMonolingualText,
	model.PropMedlineTA:       model.DatatypeMonolingualText,
	model.PropHeadingLabel:    model.DatatypeMonolingualText,
	model.PropOtherAbstract:   model.DatatypeMonolingualText,
	model.PropCopyrightNotice: model.DatatypeMonolingualText,
	model.PropCOIStatement:    model.DatatypeMonolingualText,
	model.PropLastName:        model.DatatypeMonolingualText,
	model.PropVernacularTitle: model.DatatypeMonolingualText,

	model.PropWikidataID:     model.DatatypeExternalID,
	model.PropDOI:            model.DatatypeExternalID,
	model.PropPMID:           model.DatatypeExternalID,
	model.PropISSN:           model.DatatypeExternalID,
	model.PropISSNPrint:      model.DatatypeExternalID,
	model.PropISSNElectronic: model.DatatypeExternalID,
	model.PropISSNL:          model.DatatypeExternalID,
	model.PropORCID:          model.DatatypeExternalID,
	model.PropNLMUniqueID:    model.DatatypeExternalID,
	model.PropPII:            model.DatatypeExternalID,
	model.PropGrantID:        model.DatatypeExternalID,
	model.PropCASNumber:      model.DatatypeExternalID,
	model.PropECNumber:       model.DatatypeExternalID,
	model.PropUNII:           model.DatatypeExternalID,

	model.PropPagination:       model.DatatypeString,
	model.PropVolume:           model.DatatypeString,
	model.PropIssue:            model.DatatypeString,
	model.PropEndPage:          model.DatatypeString,
	model.PropStartPage:        model.DatatypeString,
	model.PropMappingSubject:   model.DatatypeString,
	model.PropMappingObject:    model.DatatypeString,
	model.PropPMIDVersion:      model.DatatypeString,
	model.PropInitials:         model.DatatypeString,
	model.PropFundingMechanism: model.DatatypeString,
	model.PropActivityCode:     model.DatatypeString,
	model.PropSerialNumber:     model.DatatypeString,
	model.PropGrantAcronym:     model.DatatypeString,
	model.PropRegistryNumber:   model.DatatypeString,

	model.PropPublicationDate: model.DatatypeTime,
	model.PropCopyrightDate:   model.DatatypeTime,
	model.PropAvailableDate:   model.DatatypeTime,
	model.PropDateIssued:      model.DatatypeTime,
	model.PropDateCompleted:   model.DatatypeTime,
	model.PropDateRevised:     model.DatatypeTime,
	model.PropArticleDate:     model.DatatypeTime,
	model.PropEarliestDate:    model.DatatypeTime,
	model.PropLatestDate:      model.DatatypeTime,

	model.PropSeriesOrdinal: model.DatatypeQuantity,
	model.PropTruncatedAt:   model.DatatypeQuantity,
}

// qualifierWhitelist lists, per statement property, the qualifier properties
// a claim may carry. A property absent from the map allows no qualifiers.
var qualifierWhitelist = map[string][]string{
	model.PropPMID:            {model.PropPMIDVersion, model.PropValid},
	model.PropDOI:             {model.PropValid},
	model.PropPII:             {model.PropValid},
	model.PropAuthor:          {model.PropSeriesOrdinal, model.PropValid, model.PropComplete},
	model.PropGrant:           {model.PropComplete},
	model.PropAffiliation:     {model.PropSeriesOrdinal},
	model.PropMeshHeading:     {model.PropMajorTopic, model.PropDescriptorType, model.PropMeshQualifier, model.PropQualifierMajor},
	model.PropSubstance:       {model.PropRegistryNumber, model.PropCASNumber, model.PropECNumber, model.PropUNII},
	model.PropKeyword:         {model.PropMajorTopic, model.PropOwner},
	model.PropAbstract:        {model.PropSeriesOrdinal, model.PropHeadingLabel, model.PropHeadingCategory, model.PropTruncatedAt},
	model.PropOtherAbstract:   {model.PropSeriesOrdinal, model.PropHeadingLabel, model.PropHeadingCategory, model.PropTruncatedAt},
	model.PropInDatabase:      {model.PropDateRevised, model.PropDateCompleted, model.PropAvailableDate, model.PropIndexingMethod, model.PropRecordStatus, model.PropOwner, model.PropCitedMedium},
	model.PropPublicationDate: {model.PropEarliestDate, model.PropLatestDate},
	model.PropDateIssued:      {model.PropEarliestDate, model.PropLatestDate},
	model.PropArticleDate:     {model.PropPublicationModel},
	model.PropCopyrightNotice: {model.PropCopyrightDate, model.PropCopyrightHolder, model.PropPublisher, model.PropOnBehalfOf},
}

func qualifierAllowed(property, qualifier string) bool {
	for _, q := range qualifierWhitelist[property] {
		if q == qualifier {
			return true
		}
	}
	return false
}

// Serializer turns claim graphs into entities. The unit base is the concept
// URI prefix of the target instance, used for quantity units.
type Serializer struct {
	unitBase string
}

// New returns a serializer for the given Wikibase base URL.
func New(wikibaseURL string) *Serializer {
	base := strings.TrimSuffix(wikibaseURL, "/")
	if base == "" {
		base = "http://www.wikidata.org"
	}
	return &Serializer{unitBase: base + "/entity/"}
}

// Entity renders a whole claim graph, preserving property insertion order
// and carrying the graph's alias block across.
func (s *Serializer) Entity(graph *model.ClaimGraph) (*wikibase.Entity, error) {
	e := &wikibase.Entity{
		Claims:  make(map[string][]wikibase.Statement, graph.Len()),
		Aliases: make(map[string][]string, len(graph.Aliases)),
	}
	for _, property := range graph.Properties() {
		for _, claim := range graph.Claims(property) {
			st, err := s.Statement(property, claim)
			if err != nil {
				return nil, err
			}
			e.Claims[property] = append(e.Claims[property], st)
		}
		e.Order = append(e.Order, property)
	}
	for lang, aliases := range graph.Aliases {
		e.Aliases[lang] = append([]string(nil), aliases...)
	}
	return e, nil
}

// Statement renders one claim as a ranked statement with its qualifiers and
// reference block.
func (s *Serializer) Statement(property string, claim model.Claim) (wikibase.Statement, error) {
	main, err := s.snak(property, claim)
	if err != nil {
		return wikibase.Statement{}, err
	}
	st := wikibase.Statement{MainSnak: main, Type: "statement", Rank: "normal"}

	for _, q := range claim.Qualifiers {
		if !qualifierAllowed(property, q.Property) {
			return wikibase.Statement{}, &model.UnrecognizedShapeError{
				Field: property,
				Value: fmt.Sprintf("qualifier %s not allowed", q.Property),
			}
		}
		snak, err := s.snak(q.Property, q.Claim)
		if err != nil {
			return wikibase.Statement{}, err
		}
		if st.Qualifiers == nil {
			st.Qualifiers = make(map[string][]wikibase.Snak)
		}
		if _, seen := st.Qualifiers[q.Property]; !seen {
			st.QualifiersOrder = append(st.QualifiersOrder, q.Property)
		}
		st.Qualifiers[q.Property] = append(st.Qualifiers[q.Property], snak)
	}

	if claim.Reference != nil {
		block, err := s.reference(claim.Reference)
		if err != nil {
			return wikibase.Statement{}, err
		}
		st.References = []wikibase.ReferenceBlock{block}
	}
	return st, nil
}

func (s *Serializer) reference(ref *model.Reference) (wikibase.ReferenceBlock, error) {
	block := wikibase.ReferenceBlock{Snaks: make(map[string][]wikibase.Snak)}
	add := func(property string, claim model.Claim) error {
		snak, err := s.snak(property, claim)
		if err != nil {
			return err
		}
		if _, seen := block.Snaks[property]; !seen {
			block.SnaksOrder = append(block.SnaksOrder, property)
		}
		block.Snaks[property] = append(block.Snaks[property], snak)
		return nil
	}
	if ref.StatedIn != "" {
		if err := add(model.PropStatedIn, model.ItemClaim(ref.StatedIn)); err != nil {
			return wikibase.ReferenceBlock{}, err
		}
	}
	for _, part := range ref.Parts {
		if err := add(part.Property, part.Claim); err != nil {
			return wikibase.ReferenceBlock{}, err
		}
	}
	return block, nil
}

// snak renders one property-value pair, checking the claim's datatype against
// the registry first.
func (s *Serializer) snak(property string, claim model.Claim) (wikibase.Snak, error) {
	want, known := registry[property]
	if !known {
		return wikibase.Snak{}, &model.UnrecognizedShapeError{Field: property, Value: "unknown property"}
	}
	if claim.NoValue {
		return wikibase.Snak{SnakType: "novalue", Property: property}, nil
	}
	if claim.Type != want {
		return wikibase.Snak{}, &model.UnrecognizedShapeError{
			Field: property,
			Value: fmt.Sprintf("datatype %s, want %s", claim.Type, want),
		}
	}

	var value *wikibase.DataValue
	switch claim.Type {
	case model.DatatypeItem:
		value = &wikibase.DataValue{
			Type:  "wikibase-entityid",
			Value: map[string]any{"entity-type": "item", "id": claim.Value},
		}
	case model.DatatypeString, model.DatatypeExternalID:
		value = &wikibase.DataValue{Type: "string", Value: claim.Value}
	case model.DatatypeMonolingualText:
		value = &wikibase.DataValue{
			Type:  "monolingualtext",
			Value: map[string]any{"text": claim.Value, "language": claim.Language},
		}
	case model.DatatypeTime:
		value = &wikibase.DataValue{
			Type: "time",
			Value: map[string]any{
				"time":          "+" + claim.Value + "T00:00:00Z",
				"timezone":      0,
				"before":        0,
				"after":         0,
				"precision":     int(claim.Precision),
				"calendarmodel": gregorianCalendar,
			},
		}
	case model.DatatypeQuantity:
		unit := "1"
		if claim.Unit != "" {
			unit = s.unitBase + claim.Unit
		}
		value = &wikibase.DataValue{
			Type:  "quantity",
			Value: map[string]any{"amount": fmt.Sprintf("%+d", claim.Amount), "unit": unit},
		}
	}
	return wikibase.Snak{SnakType: "value", Property: property, DataValue: value}, nil
}
