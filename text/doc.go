// Package text reconciles text fields produced by independent,
// individually imperfect recognition sources into one canonical set,
// and scores how well a set of fields aligns to a set of cell
// proposals. The integer alignment score is the sole quality proxy the
// fusion policy works with.
package text
