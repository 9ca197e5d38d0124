// Package simulate provides the background actors that feed the store: the
// Producer, which appends one simulated sensor reading per tick with an
// occasional synthetic anomaly, and the Resetter, which periodically replaces
// the whole dataset with a freshly seeded generation.
//
// Both actors follow the same lifecycle: Run blocks on a ticker until the
// context is canceled, and a failed cycle is logged and discarded rather than
// retried or propagated. Neither actor blocks on the other; they only contend
// on store access.
//
// SeedValues builds the canonical fresh dataset (1000 normal-distributed
// readings plus a fixed batch of spikes and flatlines) used both for the
// initial seed at startup and by every reset.
package simulate
