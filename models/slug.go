package models

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SlugMaxLength matches the width of the categories.slug column
const SlugMaxLength = 50

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

var cyrillicToLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "yo",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "j", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch", 'ш': "sh", 'щ': "sh", 'ъ': "",
	'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

// ValidSlug reports whether s only holds latin letters, digits, hyphens
// and underscores and fits the column
func ValidSlug(s string) bool {
	return len(s) <= SlugMaxLength && slugPattern.MatchString(s)
}

// Slugify derives a URL slug from a title, the way the admin form
// prepopulates it: lowercased, transliterated, words joined by hyphens.
func Slugify(title string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripMarks, strings.ToLower(title))
	if err != nil {
		folded = strings.ToLower(title)
	}

	var b strings.Builder
	pendingHyphen := false
	for _, r := range folded {
		var chunk string
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			chunk = string(r)
		case cyrillicToLatin[r] != "":
			chunk = cyrillicToLatin[r]
		case unicode.IsSpace(r) || r == '-':
			pendingHyphen = b.Len() > 0
			continue
		default:
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteString(chunk)
	}

	slug := b.String()
	if len(slug) > SlugMaxLength {
		slug = strings.TrimRight(slug[:SlugMaxLength], "-")
	}
	return slug
}
