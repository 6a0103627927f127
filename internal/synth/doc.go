// Package synth defines the client surface of the two external
// collaborators: the synthesis service (logic synthesis + timing analysis at
// a target frequency) and the module generator (operation signature to
// synthesizable hardware description). The driver consumes the Service
// interface; Client is the JSON-over-HTTP implementation, and tests
// substitute fakes.
package synth
