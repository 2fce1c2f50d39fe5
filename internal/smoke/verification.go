package smoke

import (
	"fmt"

	"github.com/okian/piste/internal/domain/natkey"
)

// verifyTalentCards checks that every card belongs to a generated athlete,
// that no athlete holds two cards and that the counts add up.
func verifyTalentCards(athletes []Athlete, cards *TalentCards, stats *Stats) error {
	known := make(map[natkey.Key]bool, len(athletes))
	for _, a := range athletes {
		known[natkey.Name(a.FirstName, a.LastName)] = true
	}

	seen := map[natkey.Key]bool{}
	counted := 0
	for _, r := range cards.Records {
		k := natkey.Name(r.FirstName, r.LastName)
		if seen[k] {
			return fmt.Errorf("athlete %s %s has more than one card", r.FirstName, r.LastName)
		}
		seen[k] = true
		if r.TalentCard != "" {
			counted++
		}
	}

	total := 0
	for _, n := range cards.Counts {
		total += n
	}
	if total != counted {
		return fmt.Errorf("card counts add up to %d, records carry %d", total, counted)
	}

	mine := 0
	for k := range seen {
		if known[k] {
			mine++
		}
	}
	stats.TalentCards = mine
	return nil
}
