package domain

import "fmt"

// Relationship type names known to the default registry.
const (
	RelAuthoredBy     = "AUTHORED_BY"
	RelHasMedia       = "HAS_MEDIA"
	RelHasState       = "HAS_STATE"
	RelCategorizedAs  = "CATEGORIZED_AS"
	RelCategoryParent = "CATEGORY_PARENT"
	RelHasBlock       = "HAS_BLOCK"
	RelHasRevision    = "HAS_REVISION"
	RelPageParent     = "PAGE_PARENT"
	RelPageHasSection = "PAGE_HAS_SECTION"
	RelUsesLayout     = "USES_LAYOUT"
	RelHasPlacement   = "HAS_PLACEMENT"
	RelPlacesBlock    = "PLACES_BLOCK"
)

// AuthorRole qualifies an AUTHORED_BY edge.
type AuthorRole string

const (
	RolePrimary     AuthorRole = "PRIMARY"
	RoleContributor AuthorRole = "CONTRIBUTOR"
	RoleEditor      AuthorRole = "EDITOR"
)

// Direction selects which end of an edge a traversal or lookup starts from.
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
	Both     Direction = "both"
)

// ParseDirection accepts the wire names; "" means outgoing.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "", Outgoing:
		return Outgoing, nil
	case Incoming:
		return Incoming, nil
	case Both:
		return Both, nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

// Relationship is an edge as returned by the store together with the node on
// its far end.
type Relationship struct {
	Type       string `json:"type"`
	Properties Record `json:"properties"`
	Target     Record `json:"target"`
}
