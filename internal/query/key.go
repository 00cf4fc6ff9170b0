package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Key identifies a cached query: a resource name followed by the parameters
// that shape its result.
type Key []string

// K builds a Key. Nil pointers become "", url.Values are encoded in sorted
// order so equal filters give equal keys.
func K(parts ...any) Key {
	k := make(Key, 0, len(parts))
	for _, p := range parts {
		k = append(k, part(p))
	}
	return k
}

func part(p any) string {
	switch v := p.(type) {
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case int:
		return strconv.Itoa(v)
	case url.Values:
		return v.Encode()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Resource is the first part of the key.
func (k Key) Resource() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// HasPrefix reports whether every part of prefix matches k in order.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	return strings.Join(k, "\x1f")
}
