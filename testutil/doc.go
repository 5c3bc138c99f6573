// Package testutil provides lifecycle helpers for test components.
//
// A TestComponent is a component.Component that can also Reset, Snapshot
// and Restore its state. Concrete components live next to the package they
// stand in for, e.g. host/testutil.
//
//	func TestFetch(t *testing.T) {
//	    up := hosttest.NewComponent(host.Config{}, nil)
//	    testutil.T(t).Setup(up)
//	    // up is stopped when the test ends
//	}
//
// Manager starts several components in order and stops them in reverse.
package testutil
