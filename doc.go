// Package desim is a single-threaded, cooperative discrete-event simulation
// engine. A Sandbox owns a future-event list and an advancing logical clock;
// sandboxes compose into a tree so a root can coordinate event extraction
// across every descendant, merging their future-event lists by scheduled
// time. An HourCounter bound to a sandbox's clock accumulates time-weighted
// statistics (averages, utilization, rates, histograms, percentiles) with
// pause/resume and warm-up semantics.
//
// Domain models (generators, queues, servers) live in the sibling domain
// package and are reference consumers of this core, not part of it.
package desim
