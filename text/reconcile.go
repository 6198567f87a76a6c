package text

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tablefuse/tablefuse/model"
)

// Reconciler merges text fields from two independent recognition
// sources into one canonical set.
type Reconciler struct {
	// KeepDuplicateMerges preserves the historical behavior where a
	// field from the second source that lies inside several fields of
	// the first source yields one merged field per match. Disabling it
	// stops after the first match. Kept as a flag until product intent
	// is confirmed.
	KeepDuplicateMerges bool

	// MaxJoinGap is the horizontal distance, in pixels, within which
	// two fields on the same sweep are coalesced into one line-level
	// field. The gap is signed: slightly overlapping fields still join.
	MaxJoinGap int
}

// NewReconciler returns a reconciler with default settings.
func NewReconciler() Reconciler {
	return Reconciler{
		KeepDuplicateMerges: true,
		MaxJoinGap:          20,
	}
}

// Normalize canonicalizes recognized text: NFC normalization plus
// leading/trailing whitespace removal. Recognition sources disagree on
// combining-character form, which would defeat later text comparison.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Merge reconciles source b against source a. For each field in b,
// every a field containing it (tolerance 0) yields a merged field
// covering both boxes and carrying b's text. A b field matching no a
// field passes through unmerged, as does any a field not contained in
// an already-emitted merged field. No field is silently dropped.
func (r Reconciler) Merge(a, b []model.TextField) []model.TextField {
	var merged, unmatched []model.TextField

	for _, bf := range b {
		found := false
		for _, af := range a {
			if !bf.Box.Inside(af.Box, 0) {
				continue
			}
			merged = append(merged, model.TextField{
				Box:  af.Box.Merge(bf.Box),
				Text: bf.Text,
			})
			found = true
			if !r.KeepDuplicateMerges {
				break
			}
		}
		if !found {
			unmatched = append(unmatched, bf)
		}
	}

	for _, af := range a {
		exists := false
		for _, mf := range merged {
			if af.Box.Inside(mf.Box, 0) {
				exists = true
				break
			}
		}
		if !exists {
			unmatched = append(unmatched, af)
		}
	}

	return append(merged, unmatched...)
}

// MergeClosest coalesces fragment-level fields into line-level ones.
// Fields are processed in (top, left) order in a single sweep with one
// accumulator: a field whose left edge falls within MaxJoinGap of the
// accumulator's right edge joins it, with a single space between the
// texts; anything else flushes the accumulator and starts a new one.
func (r Reconciler) MergeClosest(fields []model.TextField) []model.TextField {
	if len(fields) == 0 {
		return nil
	}
	sorted := make([]model.TextField, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Box.Y1 != sorted[j].Box.Y1 {
			return sorted[i].Box.Y1 < sorted[j].Box.Y1
		}
		return sorted[i].Box.X1 < sorted[j].Box.X1
	})

	var out []model.TextField
	cur := sorted[0]
	for _, f := range sorted[1:] {
		gap := f.Box.X1 - cur.Box.X2
		if gap > -r.MaxJoinGap && gap < r.MaxJoinGap {
			cur = model.TextField{
				Box:  cur.Box.Merge(f.Box),
				Text: cur.Text + " " + f.Text,
			}
			continue
		}
		out = append(out, cur)
		cur = f
	}
	return append(out, cur)
}
