package domain

// Era is one of the five historical periods heroes are grouped by.
type Era string

const (
	EraColonialWars     Era = "Perang Kolonial"
	EraNationalMovement Era = "Pergerakan Nasional"
	EraJapaneseRule     Era = "Pendudukan Jepang"
	EraRevolution       Era = "Revolusi & Orde Lama"
	EraPost1966         Era = "Sesudah 1966"
)

// AllEras returns all eras in chronological order.
func AllEras() []Era {
	return []Era{EraColonialWars, EraNationalMovement, EraJapaneseRule, EraRevolution, EraPost1966}
}

// Valid reports whether e is one of the known eras.
func (e Era) Valid() bool {
	for _, known := range AllEras() {
		if e == known {
			return true
		}
	}
	return false
}

// InferEra places a hero in an era from their birth year. Zero means unknown.
func InferEra(birthYear int) Era {
	switch {
	case birthYear <= 0:
		return EraNationalMovement
	case birthYear < 1900:
		return EraColonialWars
	case birthYear < 1942:
		return EraNationalMovement
	case birthYear < 1945:
		return EraJapaneseRule
	case birthYear < 1966:
		return EraRevolution
	default:
		return EraPost1966
	}
}
