package domain

import "time"

type Store struct {
	ID        string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	IBAN      string
	Commerce  string
	Province  string
	Address   string
	OwnerID   string
	CreatedAt time.Time
}

// Provinces accepted for a store's registered address.
var Provinces = map[string]struct{}{
	"Bengo":        {},
	"Benguela":     {},
	"Bié":          {},
	"Cabinda":      {},
	"Cuando":       {},
	"Cubango":      {},
	"Cuanza Norte": {},
	"Cuanza Sul":   {},
	"Cunene":       {},
	"Huambo":       {},
	"Huíla":        {},
	"Icole e Bengo": {},
	"Luanda":       {},
	"Lunda Norte":  {},
	"Lunda Sul":    {},
	"Malanje":      {},
	"Moxico":       {},
	"Moxico-Leste": {},
	"Namibe":       {},
	"Uíge":         {},
	"Zaire":        {},
}

func ValidProvince(p string) bool {
	_, ok := Provinces[p]
	return ok
}
