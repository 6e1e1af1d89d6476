// Package bindings turns native symbols into typed Go calls.
//
// A Tag names one calling-convention contract: how a host value is checked,
// how it is turned into an argument word, and how a return word comes back.
// The registry maps every tag to its contract once, at package
// initialization, and never changes afterwards. A Binding pairs a resolved
// symbol with an ordered tag list and performs exactly one blocking native
// call per Invoke.
package bindings
