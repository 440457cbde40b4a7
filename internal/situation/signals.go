package situation

import "strings"

// Location keyword editor IDs understood by the classifier.
const (
	KeywordCity         = "LocTypeCity"
	KeywordTown         = "LocTypeTown"
	KeywordPlayerHouse  = "LocTypePlayerHouse"
	KeywordCastle       = "LocTypeCastle"
	KeywordMilitaryFort = "LocTypeMilitaryFort"
	KeywordTemple       = "LocTypeTemple"
	KeywordGuild        = "LocTypeGuild"
	KeywordJail         = "LocTypeJail"
	KeywordFarm         = "LocTypeFarm"
	KeywordLumberMill   = "LocTypeLumberMill"
	KeywordMilitaryCamp = "LocTypeMilitaryCamp"
	KeywordBarracks     = "LocTypeBarracks"
	KeywordInn          = "LocTypeInn"
	KeywordStore        = "LocTypeStore"
	KeywordDungeon      = "LocTypeDungeon"
)

// KeywordSet holds location keywords, compared case-insensitively.
type KeywordSet map[string]struct{}

func NewKeywordSet(keywords ...string) KeywordSet {
	s := make(KeywordSet, len(keywords))
	for _, k := range keywords {
		s.Add(k)
	}
	return s
}

func (s KeywordSet) Add(keyword string) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return
	}
	s[keyword] = struct{}{}
}

func (s KeywordSet) Has(keyword string) bool {
	_, ok := s[strings.ToLower(keyword)]
	return ok
}

func (s KeywordSet) Any(keywords ...string) bool {
	for _, k := range keywords {
		if s.Has(k) {
			return true
		}
	}
	return false
}

// Place is one level of a location hierarchy.
type Place interface {
	PlaceKeywords() []string
	ParentPlace() Place
}

// CollectKeywords gathers the keywords of p and all of its parents.
func CollectKeywords(p Place) KeywordSet {
	out := make(KeywordSet)
	for p != nil {
		for _, k := range p.PlaceKeywords() {
			out.Add(k)
		}
		p = p.ParentPlace()
	}
	return out
}

type DayPart uint8

const (
	Day DayPart = iota
	Night
)

func (d DayPart) String() string {
	if d == Night {
		return "night"
	}
	return "day"
}

// DayPartAt maps an hour of the in-game day (0-24) to its day part.
func DayPartAt(hour float64) DayPart {
	if hour >= 6 && hour < 20 {
		return Day
	}
	return Night
}

// Signals is everything the classifier looks at for one character.
type Signals struct {
	Tracked bool
	Loaded  bool
	// InCell is false while the character has no parent cell (in transit).
	InCell   bool
	Interior bool
	Keywords KeywordSet

	Snowy   bool
	Rainy   bool
	DayPart DayPart

	Mounted  bool
	Swimming bool
	Sleeping bool
	InWater  bool
	InCombat bool
	InScene  bool
}

func (s Signals) city() bool {
	return s.Keywords.Has(KeywordCity)
}

// town is also true in cities; a city counts as a town.
func (s Signals) town() bool {
	return s.Keywords.Any(KeywordTown, KeywordCity)
}

func (s Signals) night() bool {
	return s.DayPart == Night
}
