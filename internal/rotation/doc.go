// Package rotation implements the category-weighted playlist generation engine.
//
// A generation run takes a point-in-time catalog snapshot and fills a fixed
// number of slots so that each lifecycle category receives its configured share,
// categories are interleaved evenly across the sequence, and repeat appearances
// of the same artist keep a minimum distance. The run never aborts once
// preconditions pass: dry pools are recovered by usage resets, fallback
// categories, and as a last resort a spacing relaxation, all recorded in run
// statistics.
//
// Key pieces:
//   - [Config] : validated category table (shares, spacing, fallbacks)
//   - [Classifier] : proposes lifecycle migrations before a run
//   - [BuildSchedule] : position-to-category interleaving schedule
//   - [Assembler] : drives the slot loop and produces [Result]
//
// All state for one run lives in a private runState value owned by a single
// Generate call; concurrent runs never share pools or spacing bookkeeping.
package rotation
