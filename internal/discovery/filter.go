package discovery

// LocationScope restricts a query by whether a worker has a real placement.
type LocationScope int

const (
	AnyLocation LocationScope = iota
	// PlacedOnly excludes workers at the [0,0] sentinel.
	PlacedOnly
	// SentinelOnly keeps only workers at the [0,0] sentinel.
	SentinelOnly
)

// Proximity bounds a query to a radius around an origin. The boundary is
// inclusive and results are ordered nearest first.
type Proximity struct {
	Origin       Coordinates
	RadiusMeters float64
}

// Filter is the structured predicate a Directory evaluates. Every Filter
// implies isAvailable = true and isBlocked = false. Text fields are already
// lowercased; matching is a case-insensitive substring test.
type Filter struct {
	// Categories match when any skill contains any category.
	Categories []string
	// FreeText matches skills, bio, name or address.
	FreeText string
	// AddressText matches the address only.
	AddressText string
	Scope       LocationScope
	Near        *Proximity
}

type FindOptions struct {
	Limit int
}

// BuildFilter produces the base predicate shared by every query of a search:
// discoverability, categories and free text.
func BuildFilter(req SearchRequest) Filter {
	categories := make([]string, len(req.Categories))
	copy(categories, req.Categories)
	return Filter{
		Categories: categories,
		FreeText:   req.FreeText,
	}
}

// proximityFilter narrows base to placed workers within the request radius.
func proximityFilter(base Filter, req SearchRequest) Filter {
	base.Scope = PlacedOnly
	base.Near = &Proximity{
		Origin:       *req.Origin,
		RadiusMeters: req.RadiusKm * 1000,
	}
	return base
}

// fallbackFilter narrows base to never-placed workers whose address matches
// the request's locality text.
func fallbackFilter(base Filter, req SearchRequest) Filter {
	base.Scope = SentinelOnly
	base.Near = nil
	base.AddressText = req.LocationText
	return base
}
