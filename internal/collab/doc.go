// Package collab keeps several editor states in sync through a central
// authority.
//
// The Authority holds the canonical document and the ordered log of
// every step accepted so far. Its version is the length of that log.
// A Client applies local transactions immediately, sends its
// unconfirmed steps tagged with the version they are based on, and
// rebases them whenever it receives steps it has not seen:
//
//	if s, ok := client.SendableSteps(); ok {
//	    err := authority.ReceiveSteps(s.Version, s.Steps, s.ClientID)
//	    if errors.Is(err, collab.ErrVersionMismatch) {
//	        steps, ids, _ := authority.StepsSince(client.Version())
//	        client.Receive(steps, ids)
//	    }
//	}
//
// Rebasing maps each local step through the remote ones. A column step
// whose target was already removed maps to nil and is dropped, so all
// participants converge on the authority's document.
package collab
