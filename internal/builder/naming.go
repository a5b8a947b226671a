package builder

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultController is used when a path does not end in a concrete resource.
const DefaultController = "AppsResource"

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
}

// Classify converts a word into a class name: "customer-orders" becomes
// "CustomerOrders". Characters after the first of each word keep their case.
func Classify(s string) string {
	// Casers are stateful; one per call keeps Classify goroutine safe.
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, w := range splitWords(s) {
		b.WriteString(caser.String(w))
	}
	return b.String()
}

// Camelize is Classify with a lower-case first letter.
func Camelize(s string) string {
	c := Classify(s)
	if c == "" {
		return c
	}
	r, size := utf8.DecodeRuneInString(c)
	return string(unicode.ToLower(r)) + c[size:]
}

func pathSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// ModuleName derives the module from the first path segment: "/foo/bar"
// resolves to "FooApi".
func ModuleName(path string) string {
	segs := pathSegments(path)
	first := ""
	if len(segs) > 0 {
		first = segs[0]
	}
	return Classify(first) + "Api"
}

// ControllerName derives the controller from the last path segment when the
// path has more than one segment and the last one is not a {parameter}.
// Everything else maps to the default AppsResourceController.
func ControllerName(path string) string {
	name := DefaultController
	segs := pathSegments(path)
	if len(segs) > 1 {
		last := segs[len(segs)-1]
		if last != "" && !strings.Contains(last, "{") {
			name = Classify(last)
		}
	}
	return name + "Controller"
}
