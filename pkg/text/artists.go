package text

import (
	"reflect"
	"strings"
)

const artistListSeparator = ", "

// Labeled is anything that carries a display label, such as a scraped artist link.
type Labeled interface {
	Label() string
}

// JoinArtists renders the labels of items as one comma separated string, preserving order.
// Blank labels are skipped; an empty result means no artist.
func JoinArtists[T Labeled](items []T) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if isNil(item) {
			continue
		}
		names = append(names, item.Label())
	}
	return JoinArtistNames(names)
}

// isNil catches nil interfaces as well as typed nil pointers, maps, slices and funcs.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// JoinArtistNames is JoinArtists for plain strings.
func JoinArtistNames(names []string) string {
	if len(names) == 0 {
		return ""
	}

	kept := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			kept = append(kept, name)
		}
	}

	return strings.Join(kept, artistListSeparator)
}
