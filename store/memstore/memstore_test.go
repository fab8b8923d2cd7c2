package memstore

import (
	"testing"

	"github.com/randalmurphal/blogkit/store"
	"github.com/randalmurphal/blogkit/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T, opts ...store.Option) store.Store {
		return New(opts...)
	})
}
