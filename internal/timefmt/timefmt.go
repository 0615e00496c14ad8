// Package timefmt converts strftime-style patterns, as used by the
// date_format config field, into Go reference layouts.
package timefmt

import "strings"

var directives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'p': "PM",
	'a': "Mon",
	'A': "Monday",
	'b': "Jan",
	'B': "January",
	'Z': "MST",
	'z': "-0700",
	'%': "%",
}

// Layout converts a strftime pattern (e.g. "%Y-%m-%d %H:%M") into a Go
// time layout. Unknown directives and literal text pass through verbatim.
func Layout(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' || i+1 >= len(pattern) {
			b.WriteByte(pattern[i])
			continue
		}
		i++
		if repl, ok := directives[pattern[i]]; ok {
			b.WriteString(repl)
		} else {
			b.WriteByte('%')
			b.WriteByte(pattern[i])
		}
	}
	return b.String()
}
