package location

import "github.com/crisislens/analyzer/internal/domain"

// gazetteerCities maps lowercase city names to their country. The list leans
// toward disaster-prone regions; it is a fallback, not a world atlas.
var gazetteerCities = map[string]string{
	"mumbai":         "india",
	"delhi":          "india",
	"new delhi":      "india",
	"chennai":        "india",
	"kolkata":        "india",
	"bengaluru":      "india",
	"bangalore":      "india",
	"hyderabad":      "india",
	"pune":           "india",
	"ahmedabad":      "india",
	"surat":          "india",
	"guwahati":       "india",
	"patna":          "india",
	"dehradun":       "india",
	"shimla":         "india",
	"karachi":        "pakistan",
	"lahore":         "pakistan",
	"islamabad":      "pakistan",
	"dhaka":          "bangladesh",
	"chittagong":     "bangladesh",
	"kathmandu":      "nepal",
	"colombo":        "sri lanka",
	"tokyo":          "japan",
	"osaka":          "japan",
	"sendai":         "japan",
	"jakarta":        "indonesia",
	"palu":           "indonesia",
	"manila":         "philippines",
	"tacloban":       "philippines",
	"istanbul":       "turkey",
	"ankara":         "turkey",
	"gaziantep":      "turkey",
	"port-au-prince": "haiti",
	"santiago":       "chile",
	"mexico city":    "mexico",
	"los angeles":    "united states",
	"san francisco":  "united states",
	"new york":       "united states",
	"miami":          "united states",
	"new orleans":    "united states",
	"houston":        "united states",
	"london":         "united kingdom",
	"paris":          "france",
	"madrid":         "spain",
	"lisbon":         "portugal",
	"athens":         "greece",
	"sydney":         "australia",
	"wellington":     "new zealand",
	"christchurch":   "new zealand",
}

// gazetteerStates holds lowercase state/province names.
var gazetteerStates = map[string]bool{
	"maharashtra":      true,
	"kerala":           true,
	"karnataka":        true,
	"tamil nadu":       true,
	"gujarat":          true,
	"rajasthan":        true,
	"punjab":           true,
	"haryana":          true,
	"uttar pradesh":    true,
	"bihar":            true,
	"west bengal":      true,
	"odisha":           true,
	"assam":            true,
	"uttarakhand":      true,
	"himachal pradesh": true,
	"sindh":            true,
	"california":       true,
	"texas":            true,
	"florida":          true,
	"louisiana":        true,
	"queensland":       true,
	"sichuan":          true,
}

// gazetteerCountries holds lowercase country names and common aliases.
var gazetteerCountries = map[string]bool{
	"india":          true,
	"pakistan":       true,
	"bangladesh":     true,
	"nepal":          true,
	"sri lanka":      true,
	"japan":          true,
	"china":          true,
	"indonesia":      true,
	"philippines":    true,
	"turkey":         true,
	"haiti":          true,
	"chile":          true,
	"mexico":         true,
	"united states":  true,
	"usa":            true,
	"united kingdom": true,
	"france":         true,
	"spain":          true,
	"portugal":       true,
	"greece":         true,
	"italy":          true,
	"germany":        true,
	"russia":         true,
	"australia":      true,
	"new zealand":    true,
	"brazil":         true,
}

// Level classifies a known place name. Unknown names report LevelUnknown
// with ok=false; callers pick their own default.
func Level(name string) (domain.LocationLevel, bool) {
	switch {
	case gazetteerCities[name] != "":
		return domain.LevelCity, true
	case gazetteerStates[name]:
		return domain.LevelState, true
	case gazetteerCountries[name]:
		return domain.LevelCountry, true
	default:
		return domain.LevelUnknown, false
	}
}
