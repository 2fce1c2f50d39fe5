// Package category maps an athlete's age in an evaluation year to an age category.
package category

import (
	"fmt"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/numeric"
)

// Unknown is returned when no band matches.
const Unknown = "Unknown"

// Age computes evaluation year minus birth year. Inputs may be numbers or numeric strings.
func Age(birthYear, evalYear any) (int, bool) {
	b, ok := numeric.Int(birthYear)
	if !ok {
		return 0, false
	}
	e, ok := numeric.Int(evalYear)
	if !ok {
		return 0, false
	}
	return e - b, true
}

// Resolve returns the label of the first band containing the age, in band order.
// It returns Unknown and false for non-numeric input or when no band matches.
func Resolve(birthYear, evalYear any, bands []model.AgeCategoryBand) (string, bool) {
	age, ok := Age(birthYear, evalYear)
	if !ok {
		return Unknown, false
	}
	return ForAge(age, bands)
}

// ForAge resolves an already computed age.
func ForAge(age int, bands []model.AgeCategoryBand) (string, bool) {
	for _, b := range bands {
		if b.MinAge <= age && age <= b.MaxAge {
			return b.Category, true
		}
	}
	return Unknown, false
}

// Issue describes an overlap or gap between bands.
type Issue struct {
	Age     int
	Matches []string
}

func (i Issue) String() string {
	if len(i.Matches) == 0 {
		return fmt.Sprintf("age %d matches no band", i.Age)
	}
	return fmt.Sprintf("age %d matches %d bands %v", i.Age, len(i.Matches), i.Matches)
}

// Validate reports every age in [0,99] that matches zero or several bands.
// Resolve never calls it: overlapping bands still resolve first-match.
func Validate(bands []model.AgeCategoryBand) []Issue {
	var issues []Issue
	for age := 0; age <= 99; age++ {
		var matches []string
		for _, b := range bands {
			if b.MinAge <= age && age <= b.MaxAge {
				matches = append(matches, b.Category)
			}
		}
		if len(matches) != 1 {
			issues = append(issues, Issue{Age: age, Matches: matches})
		}
	}
	return issues
}
