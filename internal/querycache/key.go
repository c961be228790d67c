package querycache

import (
	"fmt"
	"net/url"
	"strings"
)

const wildcard = "*"

// Key identifies one cacheable read: a resource name plus its parameters.
type Key struct {
	Resource string
	Params   string
}

// NewKey joins the escaped params with "/". Keys built from the same values
// are equal, and a param never splits into two or reads as the wildcard.
func NewKey(resource string, params ...any) Key {
	if len(params) == 0 {
		return Key{Resource: resource}
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, url.PathEscape(fmt.Sprint(p)))
	}
	return Key{Resource: resource, Params: strings.Join(parts, "/")}
}

// AllOf matches every key of resource when passed to Invalidate.
func AllOf(resource string) Key {
	return Key{Resource: resource, Params: wildcard}
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Resource
	}
	return k.Resource + "/" + k.Params
}

func (k Key) matches(other Key) bool {
	if k.Resource != other.Resource {
		return false
	}
	return k.Params == wildcard || k.Params == other.Params
}
