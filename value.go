package mailgun

import (
	"strconv"
	"strings"

	"github.com/aatuh/mailgun/types"
)

// value is one entry of the field mapping: a scalar or an ordered list of
// scalars.
type value struct {
	list   bool
	scalar string
	items  []string
}

func scalar(s string) value { return value{scalar: s} }

// fieldSet is the field mapping of a message. It remembers the order in
// which keys were first set.
type fieldSet struct {
	order  []string
	values map[string]value
}

func newFieldSet() *fieldSet {
	return &fieldSet{values: make(map[string]value)}
}

func (f *fieldSet) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *fieldSet) set(key, v string) {
	if !f.has(key) {
		f.order = append(f.order, key)
	}
	f.values[key] = scalar(v)
}

// add appends vs to the list under key. A scalar already stored under key
// is replaced by the list.
func (f *fieldSet) add(key string, vs ...string) {
	cur, ok := f.values[key]
	if !ok {
		f.order = append(f.order, key)
	}
	if !cur.list {
		cur = value{list: true}
	}
	cur.items = append(cur.items, vs...)
	f.values[key] = cur
}

func (f *fieldSet) list(key string) []string {
	v, ok := f.values[key]
	if !ok || !v.list {
		return nil
	}
	return v.items
}

// fileKeys hold "@path" references that the transport uploads as files.
var fileKeys = map[string]bool{keyAttachment: true, keyInline: true}

const fileMarker = "@"

// flatten expands the mapping into wire pairs. Lists become key[1..n].
// Entries under file keys become file references with the marker removed.
func (f *fieldSet) flatten() ([]types.Pair, []types.FileRef) {
	var pairs []types.Pair
	var files []types.FileRef
	for _, key := range f.order {
		v := f.values[key]
		if !v.list {
			pairs = append(pairs, types.Pair{Key: key, Value: v.scalar})
			continue
		}
		for i, item := range v.items {
			k := key + "[" + strconv.Itoa(i+1) + "]"
			if fileKeys[key] {
				files = append(files, types.FileRef{
					Key:  k,
					Path: strings.TrimPrefix(item, fileMarker),
				})
				continue
			}
			pairs = append(pairs, types.Pair{Key: k, Value: item})
		}
	}
	return pairs, files
}
