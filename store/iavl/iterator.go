package iavl

import (
	"sync"

	"github.com/iov-one/custodia/errors"
	"github.com/iov-one/custodia/store"
)

// lazyIterator pulls results out of a tree iteration callback without
// loading the whole range into memory up front.
type lazyIterator struct {
	read chan store.Model
	stop chan struct{}
	once sync.Once
}

var _ store.Iterator = (*lazyIterator)(nil)

func newLazyIterator() *lazyIterator {
	return &lazyIterator{
		read: make(chan store.Model),
		stop: make(chan struct{}),
	}
}

// add is used as the tree iteration callback. It returns true when the
// iteration must stop, because the iterator was released.
func (i *lazyIterator) add(key, value []byte) bool {
	m := store.Model{Key: key, Value: value}
	select {
	case i.read <- m:
		return false
	case <-i.stop:
		return true
	}
}

// finish must be called by the producer once the tree iteration is over.
func (i *lazyIterator) finish() {
	close(i.read)
}

// Next returns the next model in the iteration, or ErrIteratorDone when
// the range is exhausted.
func (i *lazyIterator) Next() ([]byte, []byte, error) {
	data, hasMore := <-i.read
	if !hasMore {
		return nil, nil, errors.Wrap(errors.ErrIteratorDone, "lazy iterator")
	}
	return data.Key, data.Value, nil
}

// Release stops the producing goroutine. It is safe to call it more than
// once.
func (i *lazyIterator) Release() {
	i.once.Do(func() {
		close(i.stop)
	})
}
