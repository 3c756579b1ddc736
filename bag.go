// Copyright 2026 The httpcall Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package httpcall

import (
	"sync"
)

var (
	bagMu sync.Mutex
	bags  = make(map[any]*Bag)
)

// A Bag is the ordered set of requests currently in flight for one
// owner, enabling bulk cancellation of related requests.
//
// The owner-to-Bag registry only retains an owner key while its Bag
// has members: a Bag joins the registry when it gains its first
// request, and a request leaving its last Bag drops the Bag from the
// registry, so an owner with no in-flight requests is not kept
// reachable by this package. That cleanup is membership-driven and
// best-effort; Cancel is the reliable disposal path for callers that
// need guaranteed cleanup.
//
// A Bag is safe for concurrent use by multiple goroutines.
type Bag struct {
	owner    any
	mu       sync.Mutex
	requests []*Request
}

// BagFor returns the registered Bag for owner, or a fresh one if the
// owner has none. A fresh Bag does not join the registry until it
// gains its first request, so looking up an owner never retains it.
// The owner must be comparable.
func BagFor(owner any) *Bag {
	bagMu.Lock()
	defer bagMu.Unlock()
	if b := bags[owner]; b != nil {
		return b
	}
	return &Bag{owner: owner}
}

// AddRequest adds a request to the Bag. Adding a request that is
// already a member is a no-op. Adding the first member registers the
// Bag for its owner.
func (b *Bag) AddRequest(r *Request) {
	b.mu.Lock()
	for _, x := range b.requests {
		if x == r {
			b.mu.Unlock()
			return
		}
	}
	b.requests = append(b.requests, r)
	first := len(b.requests) == 1
	b.mu.Unlock()

	if first {
		b.register()
	}

	r.mu.Lock()
	r.bag = b
	r.mu.Unlock()
}

// RemoveRequest removes a request from the Bag. Removing a request
// that is not a member is a no-op. Removing the last member drops the
// Bag from the owner registry.
func (b *Bag) RemoveRequest(r *Request) {
	b.mu.Lock()
	removed := false
	for i, x := range b.requests {
		if x == r {
			b.requests = append(b.requests[:i], b.requests[i+1:]...)
			removed = true
			break
		}
	}
	empty := len(b.requests) == 0
	b.mu.Unlock()

	if removed {
		r.mu.Lock()
		if r.bag == b {
			r.bag = nil
		}
		r.mu.Unlock()
	}
	if empty {
		b.release()
	}
}

// Len returns the current number of member requests.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// Cancel cancels every member request and empties the Bag. Requests
// registered for the same owner afterward get a fresh Bag.
func (b *Bag) Cancel() {
	b.mu.Lock()
	rs := b.requests
	b.requests = nil
	b.mu.Unlock()

	b.release()
	for _, r := range rs {
		r.Cancel()
	}
}

// register installs the Bag in the owner registry unless another Bag
// already holds the owner's slot.
func (b *Bag) register() {
	bagMu.Lock()
	if _, ok := bags[b.owner]; !ok {
		bags[b.owner] = b
	}
	bagMu.Unlock()
}

// release drops the Bag from the owner registry if it is still the
// registered Bag for its owner.
func (b *Bag) release() {
	bagMu.Lock()
	if bags[b.owner] == b {
		delete(bags, b.owner)
	}
	bagMu.Unlock()
}

// CancelAll cancels every in-flight request registered for owner. It
// is a no-op if the owner has no Bag.
func CancelAll(owner any) {
	bagMu.Lock()
	b := bags[owner]
	bagMu.Unlock()
	if b != nil {
		b.Cancel()
	}
}
