package event

import "github.com/crisislens/analyzer/internal/domain"

// DefaultRules returns the built-in disaster keyword rules. The Hindi entries
// let event classification still work when the translator is down and the
// text reaches this stage untranslated.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: domain.EventFlood,
			Keywords: []string{
				"flood", "floods", "flooding", "flooded", "heavy rain", "rain",
				"rainfall", "monsoon", "overflow", "river", "dam", "inundation",
				"waterlogging", "submerged", "drowned", "drowning", "deluge",
				"बाढ़", "पानी", "बारिश",
			},
		},
		{
			Category: domain.EventFire,
			Keywords: []string{
				"fire", "fires", "burning", "burnt", "flame", "flames", "smoke",
				"blaze", "wildfire", "forest fire", "arson", "inferno",
				"firefighter", "firefighters", "extinguish", "ignite",
				"आग",
			},
		},
		{
			Category: domain.EventEarthquake,
			Keywords: []string{
				"earthquake", "quake", "tremor", "tremors", "seismic",
				"magnitude", "richter", "epicenter", "aftershock", "aftershocks",
				"tsunami", "building collapse", "rubble",
				"भूकंप",
			},
		},
		{
			Category: domain.EventLandslide,
			Keywords: []string{
				"landslide", "landslides", "mudslide", "avalanche", "debris",
				"rock fall", "rockfall", "erosion", "buried", "hillside",
				"भूस्खलन",
			},
		},
		{
			Category: domain.EventTerrorAttack,
			Keywords: []string{
				"attack", "terror", "terrorist", "terrorists", "bombing", "bomb",
				"blast", "shooting", "shooter", "gunfire", "gunman", "hostage",
				"militant", "militants", "assault",
			},
		},
	}
}
