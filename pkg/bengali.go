package pkg

import "strings"

var bengaliDigitsReplacer = strings.NewReplacer(
	"0", "০", "1", "১", "2", "২", "3", "৩", "4", "৪",
	"5", "৫", "6", "৬", "7", "৭", "8", "৮", "9", "৯",
)

// ToBengaliDigits replaces every ASCII digit in s with its Bengali numeral.
// Other characters are left untouched.
func ToBengaliDigits(s string) string {
	return bengaliDigitsReplacer.Replace(s)
}
