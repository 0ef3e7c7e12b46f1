package vault

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CollectionVersion is the version tag of the encoded collection
const CollectionVersion = 1

type collectionWire struct {
	Version uint8   `cbor:"v"`
	Entries []Entry `cbor:"entries"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vault: cbor encoder: %v", err))
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
		// Unknown fields would be dropped silently by the next commit
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("vault: cbor decoder: %v", err))
	}
}

// EncodeCollection serializes c deterministically: the same entries always
// produce the same bytes. The result contains passwords; wipe it after use.
func EncodeCollection(c *Collection) ([]byte, error) {
	w := collectionWire{
		Version: CollectionVersion,
		Entries: make([]Entry, 0, c.Len()),
	}
	for _, e := range c.Entries() {
		w.Entries = append(w.Entries, *e)
	}
	data, err := encMode.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode collection: %w", err)
	}
	return data, nil
}

// DecodeCollection parses data produced by EncodeCollection
func DecodeCollection(data []byte) (*Collection, error) {
	var w collectionWire
	wipe := func() {
		for i := range w.Entries {
			w.Entries[i].Wipe()
		}
	}
	if err := decMode.Unmarshal(data, &w); err != nil {
		wipe()
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	fail := func(format string, args ...any) (*Collection, error) {
		wipe()
		return nil, fmt.Errorf("%w: "+format, append([]any{ErrCorrupt}, args...)...)
	}

	if w.Version != CollectionVersion {
		return fail("unsupported collection version %d", w.Version)
	}

	c := NewCollection()
	for i := range w.Entries {
		e := &w.Entries[i]
		if e.Service == "" {
			return fail("entry %d has no service", i)
		}
		if err := c.Add(e); err != nil {
			return fail("duplicate service %q", e.Service)
		}
	}
	return c, nil
}
