package model

// Property identifiers of the target knowledge base, named by function.
// The serializer's dispatch table and the transformers both key off these.
const (
	PropInstanceOf      = "P1"
	PropWikidataID      = "P3"
	PropStatedIn        = "P21"
	PropSeriesOrdinal   = "P33"
	PropPagination      = "P57"
	PropPublicationDate = "P58"
	PropCopyrightDate   = "P59"
	PropTitle           = "P67"
	PropLanguageOfWork  = "P68"
	PropAuthor          = "P72"
	PropVolume          = "P76"
	PropIssue           = "P77"
	PropPublisher       = "P87"
	PropDOI             = "P95"
	PropKeyword         = "P136"
	PropPMID            = "P199"
	PropMeshQualifier   = "P205"
	PropMeshHeading     = "P206"
	PropMappingFrom     = "P278"
	PropMappingTo       = "P279"
	PropPublishedIn     = "P307"
	PropISSN            = "P430"
	PropISSNPrint       = "P432"
	PropISSNElectronic  = "P433"
	PropAbstract        = "P434"
	PropAvailableDate   = "P437"
	PropCopyrightHolder = "P450"
	PropDateIssued      = "P469"
	PropOwner           = "P492"
	PropEndPage         = "P510"
	PropStartPage       = "P511"
	PropISSNL           = "P526"
	PropMappingSubject  = "P561"
	PropMappingObject   = "P562"
	PropInDatabase      = "P568"

	PropTruncatedAt       = "P790"
	PropCitationSubset    = "P791"
	PropPMIDVersion       = "P792"
	PropDateCompleted     = "P793"
	PropDateRevised       = "P794"
	PropValid             = "P795"
	PropORCID             = "P796"
	PropForeName          = "P797"
	PropInitials          = "P798"
	PropPublicationType   = "P799"
	PropISOAbbreviation   = "P800"
	PropMedlineTA         = "P801"
	PropCountryOfOrigin   = "P802"
	PropNLMUniqueID       = "P803"
	PropFundingMechanism  = "P804"
	PropActivityCode      = "P805"
	PropFundingAgency     = "P806"
	PropSerialNumber      = "P807"
	PropPII               = "P808"
	PropGrantID           = "P809"
	PropGrantAcronym      = "P810"
	PropPrimaryInstitute  = "P811"
	PropComplete          = "P812"
	PropDescriptorType    = "P816"
	PropMajorTopic        = "P825"
	PropHeadingCategory   = "P826"
	PropHeadingLabel      = "P827"
	PropPublicationModel  = "P828"
	PropQualifierMajor    = "P829"
	PropOtherAbstract     = "P830"
	PropCopyrightNotice   = "P831"
	PropOnBehalfOf        = "P832"
	PropCOIStatement      = "P833"
	PropIndexingMethod    = "P834"
	PropRecordStatus      = "P835"
	PropArticleDate       = "P836"
	PropCitedMedium       = "P837"
	PropAffiliation       = "P838"
	PropLastName          = "P839"
	PropGrant             = "P840"
	PropVernacularTitle   = "P841"
	PropRegistryNumber    = "P842"
	PropCASNumber         = "P843"
	PropECNumber          = "P844"
	PropUNII              = "P845"
	PropSubstance         = "P846"
	PropEarliestDate      = "P847"
	PropLatestDate        = "P848"
)

// Item identifiers of fixed target entities.
const (
	ItemPubMed           = "Q19463"
	ItemWikidata         = "Q20285"
	ItemMappingTo        = "Q21039"
	ItemCharacter        = "Q21510"
	ItemWord             = "Q15883"
	ItemYes              = "Q23075"
	ItemNo               = "Q26205"
	ItemJournal          = "Q7205"
	ItemAuthor           = "Q20846"
	ItemGrant            = "Q5185"
	ItemInternet         = "Q1825"
	ItemPrint            = "Q22733"
	ItemNLMMappingFrom   = "Q27165"
	ItemAutomatedIndex   = "Q27177"
	ItemMedline          = "Q27187"
	ItemNLM              = "Q27188"
	ItemNotNLM           = "Q27189"
	ItemElectronicPub    = "Q27190"
	ItemPMIDMappingFrom  = "Q27192"
	ItemGeographicTopic  = "Q27278"
	ItemCuratedIndex     = "Q27775"
)

// PubMedReference is the standard provenance block: stated in PubMed.
func PubMedReference() *Reference {
	return &Reference{StatedIn: ItemPubMed}
}

// WikidataReference is the provenance block for an identifier copied over
// from Wikidata: stated in Wikidata, with the mapping subject and object
// spelled out.
func WikidataReference(subject, object string) *Reference {
	return &Reference{
		StatedIn: ItemWikidata,
		Parts: []Qualifier{
			{Property: PropMappingFrom, Claim: ItemClaim(ItemPMIDMappingFrom)},
			{Property: PropMappingTo, Claim: ItemClaim(ItemMappingTo)},
			{Property: PropMappingSubject, Claim: StringClaim(subject)},
			{Property: PropMappingObject, Claim: StringClaim(object)},
		},
	}
}
