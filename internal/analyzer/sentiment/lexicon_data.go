package sentiment

// defaultLexicon returns the embedded valence lexicon. Values follow the
// usual [-4, 4] valence scale. The general-purpose entries are padded with
// crisis vocabulary because disaster feeds lean heavily on it.
func defaultLexicon() map[string]float64 {
	return map[string]float64{
		// general positive
		"good": 1.9, "great": 3.1, "excellent": 2.7, "amazing": 2.8,
		"love": 3.2, "like": 1.5, "happy": 2.7, "joy": 2.8, "hope": 1.9,
		"hopeful": 2.3, "thank": 1.9, "thanks": 1.9, "grateful": 2.4,
		"wonderful": 2.7, "best": 3.2, "better": 1.9, "success": 2.2,
		"successful": 2.4, "win": 2.8, "support": 1.7, "strong": 1.3,
		"praise": 2.4, "brave": 2.2, "hero": 2.6, "heroes": 2.6,
		"relief": 1.9, "recover": 1.6, "recovered": 1.8, "recovery": 1.6,
		"safe": 1.9, "safely": 1.9, "saved": 2.2, "rescued": 2.0,
		"survivor": 1.1, "survivors": 1.1, "survived": 1.5,
		"help": 1.7, "helped": 1.8, "helping": 1.7, "aid": 1.5,
		"donate": 1.7, "donation": 1.7, "volunteers": 1.6, "shelter": 0.8,

		// general negative
		"bad": -2.5, "worse": -2.1, "worst": -3.1, "terrible": -2.1,
		"horrible": -2.5, "awful": -2.0, "hate": -2.7, "sad": -2.1,
		"angry": -2.3, "fear": -2.2, "afraid": -2.2, "scared": -2.2,
		"panic": -2.4, "crisis": -1.9, "emergency": -1.8, "danger": -2.4,
		"dangerous": -2.4, "warning": -1.4, "alert": -1.0, "threat": -2.1,
		"fail": -2.3, "failed": -2.3, "failure": -2.4, "loss": -2.0,
		"lost": -1.8, "losses": -2.0, "chaos": -2.3, "horror": -2.7,

		// crisis vocabulary
		"dead": -3.3, "death": -3.0, "deaths": -3.0, "died": -3.1,
		"killed": -3.4, "kill": -3.4, "casualties": -2.8, "injured": -2.4,
		"injuries": -2.4, "victims": -2.3, "victim": -2.3, "missing": -2.1,
		"trapped": -2.5, "stranded": -2.0, "destroyed": -2.9,
		"destruction": -2.8, "devastating": -3.0, "devastated": -3.0,
		"damage": -2.2, "damaged": -2.2, "collapsed": -2.6, "collapse": -2.6,
		"evacuate": -1.3, "evacuated": -1.3, "evacuation": -1.3,
		"homeless": -2.2, "suffering": -2.6, "tragedy": -3.1,
		"tragic": -3.0, "catastrophe": -3.2, "disaster": -2.6,
		"severe": -1.8, "heavy": -0.6, "massive": -0.7, "deadly": -3.2,
		"grief": -2.6, "mourning": -2.4, "pray": 0.8, "prayers": 0.8,
	}
}
