package models

import "fmt"

// Damage type tags for a tooth entry. At most one tag per tooth; absence of
// an entry means no recorded damage.
const (
	DamageCavity      = "carie"
	DamageFracture    = "fratura"
	DamageMissing     = "ausente"
	DamageRestoration = "restauracao"
	DamageImplant     = "implante"
	DamageProsthesis  = "protese"
)

// OdontogramaItem is one {tooth, damage} pair of a periciado's dental chart.
// The chart is persisted as a list of these pairs and replaced wholesale on
// every save.
type OdontogramaItem struct {
	Dente     string `json:"numero" bson:"numero"`
	Descricao string `json:"descricao" bson:"descricao"`
}

// ToothCodes lists the 32 FDI two-digit codes across the four quadrants, in
// chart order (upper right, upper left, lower left, lower right).
var ToothCodes = []string{
	"18", "17", "16", "15", "14", "13", "12", "11",
	"21", "22", "23", "24", "25", "26", "27", "28",
	"38", "37", "36", "35", "34", "33", "32", "31",
	"41", "42", "43", "44", "45", "46", "47", "48",
}

var toothCodeSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(ToothCodes))
	for _, c := range ToothCodes {
		m[c] = struct{}{}
	}
	return m
}()

// ValidToothCode reports whether code is one of the 32 FDI codes.
func ValidToothCode(code string) bool {
	_, ok := toothCodeSet[code]
	return ok
}

// ValidDamageType reports whether tag is a known damage type.
func ValidDamageType(tag string) bool {
	switch tag {
	case DamageCavity, DamageFracture, DamageMissing, DamageRestoration, DamageImplant, DamageProsthesis:
		return true
	}
	return false
}

// ValidateOdontograma checks every pair of a chart before persisting it.
func ValidateOdontograma(items []OdontogramaItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if !ValidToothCode(it.Dente) {
			return fmt.Errorf("unknown tooth code %q", it.Dente)
		}
		if !ValidDamageType(it.Descricao) {
			return fmt.Errorf("unknown damage type %q", it.Descricao)
		}
		if _, dup := seen[it.Dente]; dup {
			return fmt.Errorf("duplicate entry for tooth %q", it.Dente)
		}
		seen[it.Dente] = struct{}{}
	}
	return nil
}
