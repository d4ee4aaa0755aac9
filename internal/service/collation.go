package service

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"svcdir/internal/domain"
)

// SeniorPrefix marca los numeros de servicio que encabezan el directorio.
const SeniorPrefix = "N/"

type collationKey struct {
	senior bool
	rank   int64
	raw    string
}

func collationKeyOf(serviceNumber string) collationKey {
	rest, senior := strings.CutPrefix(serviceNumber, SeniorPrefix)
	key := collationKey{senior: senior, raw: serviceNumber}
	if senior {
		// Sufijos que no son solo digitos ASCII (signos incluidos) cuentan como 0.
		if allDigits(rest) {
			if n, err := strconv.ParseInt(rest, 10, 64); err == nil {
				key.rank = n
			}
		}
	}
	return key
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func compareCollation(a, b collationKey) int {
	if a.senior != b.senior {
		if a.senior {
			return -1
		}
		return 1
	}
	if a.senior {
		if c := cmp.Compare(a.rank, b.rank); c != 0 {
			return c
		}
	}
	return strings.Compare(a.raw, b.raw)
}

// OrderDirectory excluye superusuarios y ordena por numero de servicio:
// primero los "N/<n>" por valor numerico, despues el resto lexicograficamente.
// El orden es estable y no modifica la entrada.
func OrderDirectory(identities []domain.Identity) []domain.Identity {
	type keyed struct {
		key      collationKey
		identity domain.Identity
	}
	items := make([]keyed, 0, len(identities))
	for _, identity := range identities {
		if identity.IsSuperuser {
			continue
		}
		items = append(items, keyed{key: collationKeyOf(identity.ServiceNumber), identity: identity})
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		return compareCollation(a.key, b.key)
	})

	out := make([]domain.Identity, len(items))
	for i, item := range items {
		out[i] = item.identity
	}
	return out
}

// OrderServiceNumbers aplica la misma colacion a numeros sueltos.
func OrderServiceNumbers(serviceNumbers []string) []string {
	out := slices.Clone(serviceNumbers)
	slices.SortStableFunc(out, func(a, b string) int {
		return compareCollation(collationKeyOf(a), collationKeyOf(b))
	})
	return out
}
