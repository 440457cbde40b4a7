package situation

// Options tune the rule order.
type Options struct {
	// ClimatePriority checks weather categories right after activities
	// instead of after the interior variants.
	ClimatePriority bool
}

type rule struct {
	category Category
	when     func(Signals) bool
}

// Mapped reports whether a character has an outfit for a category.
type Mapped func(Category) bool

var (
	sceneRules = []rule{
		{Scene, func(s Signals) bool { return s.InScene }},
	}

	actionRules = []rule{
		{Mounting, func(s Signals) bool { return s.Mounted }},
		{Swimming, func(s Signals) bool { return s.Swimming }},
		{Sleeping, func(s Signals) bool { return s.Sleeping }},
		{InWater, func(s Signals) bool { return s.InWater }},
		{Combat, func(s Signals) bool { return s.InCombat }},
	}

	weatherRules = []rule{
		{CitySnow, func(s Signals) bool { return s.city() && s.Snowy }},
		{CityRain, func(s Signals) bool { return s.city() && s.Rainy }},
		{TownSnow, func(s Signals) bool { return s.town() && s.Snowy }},
		{TownRain, func(s Signals) bool { return s.town() && s.Rainy }},
		{WorldSnow, func(s Signals) bool { return s.Snowy }},
		{WorldRain, func(s Signals) bool { return s.Rainy }},
	}

	placeRules = []rule{
		{PlayerHome, func(s Signals) bool { return s.Interior && s.Keywords.Has(KeywordPlayerHouse) }},
		{Castle, func(s Signals) bool { return s.Keywords.Any(KeywordCastle, KeywordMilitaryFort) }},
		{Temple, func(s Signals) bool { return s.Interior && s.Keywords.Has(KeywordTemple) }},
		{GuildHall, func(s Signals) bool { return s.Interior && s.Keywords.Has(KeywordGuild) }},
		{Jail, func(s Signals) bool { return s.Interior && s.Keywords.Has(KeywordJail) }},
		{Farm, func(s Signals) bool { return s.Keywords.Any(KeywordFarm, KeywordLumberMill) }},
		{Military, func(s Signals) bool { return s.Keywords.Any(KeywordMilitaryCamp, KeywordBarracks) }},
		{Inn, func(s Signals) bool { return s.Interior && s.Keywords.Has(KeywordInn) }},
		{Store, func(s Signals) bool { return s.Interior && s.Keywords.Has(KeywordStore) }},
		{Dungeon, func(s Signals) bool { return s.Keywords.Has(KeywordDungeon) }},
	}

	interiorRules = []rule{
		{CityInterior, func(s Signals) bool { return s.city() && s.Interior }},
		{TownInterior, func(s Signals) bool { return s.town() && s.Interior }},
		{WorldInterior, func(s Signals) bool { return s.Interior }},
	}

	genericRules = []rule{
		{CityNight, func(s Signals) bool { return s.city() && s.night() }},
		{City, func(s Signals) bool { return s.city() }},
		{TownNight, func(s Signals) bool { return s.town() && s.night() }},
		{Town, func(s Signals) bool { return s.town() }},
		{WorldNight, func(s Signals) bool { return s.night() }},
		{World, func(Signals) bool { return true }},
	}
)

var (
	climateFirst = concat(sceneRules, actionRules, weatherRules, placeRules, interiorRules, genericRules)
	climateLast  = concat(sceneRules, actionRules, placeRules, interiorRules, weatherRules, genericRules)
)

func concat(groups ...[]rule) []rule {
	var out []rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func rulesFor(opts Options) []rule {
	if opts.ClimatePriority {
		return climateFirst
	}
	return climateLast
}

// Order returns the categories in the order Classify evaluates them.
func Order(opts Options) []Category {
	rules := rulesFor(opts)
	out := make([]Category, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.category)
	}
	return out
}

// Classify returns the first mapped category whose condition holds. World is
// returned when nothing else matches, whether or not it is mapped. Characters
// that are untracked or not loaded get no result.
func Classify(sig Signals, mapped Mapped, opts Options) (Category, bool) {
	if !sig.Tracked || !sig.Loaded {
		return 0, false
	}
	if mapped == nil {
		mapped = func(Category) bool { return false }
	}
	if sig.Keywords == nil {
		sig.Keywords = KeywordSet{}
	}

	rules := rulesFor(opts)
	if !sig.InCell {
		rules = sceneRules
	}
	for _, r := range rules {
		if mapped(r.category) && r.when(sig) {
			return r.category, true
		}
	}
	return World, true
}
