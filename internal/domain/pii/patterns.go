package pii

import "regexp"

// Lower priority wins when spans overlap. Emails first: an address contains
// dots and digits that the weaker patterns would otherwise pick apart.
type pattern struct {
	entityType EntityType
	re         *regexp.Regexp
	priority   int
}

var patterns = []pattern{
	{entityType: TypeEmail, re: regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`), priority: 0},
	{entityType: TypeIBAN, re: regexp.MustCompile(`\b[A-Z]{2}[0-9]{2}[A-Z0-9]{11,30}\b`), priority: 1},
	{entityType: TypePhone, re: regexp.MustCompile(`\+?[0-9][0-9 ()./-]{6,}[0-9]`), priority: 2},
	{entityType: TypePerson, re: regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+)+\b`), priority: 3},
}

// Words that start a title-case run without being part of a name. A person
// candidate is trimmed from the left until its first word is not in this set.
var personStopwords = map[string]bool{
	"A": true, "An": true, "The": true, "This": true, "That": true,
	"And": true, "But": true, "Or": true, "If": true, "When": true,
	"On": true, "In": true, "At": true, "For": true, "From": true,
	"To": true, "With": true, "My": true, "Our": true, "Your": true,
	"Contact": true, "Call": true, "Email": true, "Meet": true,
	"Ask": true, "Tell": true, "Dear": true, "Hello": true, "Hi": true,
	"Please": true, "Thanks": true, "Thank": true, "Regards": true,
	"Subject": true, "Best": true, "Kind": true, "Sincerely": true,
}
