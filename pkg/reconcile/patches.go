package reconcile

import (
	"slices"

	"github.com/aretw0/notesync/pkg/core"
)

// Skip reasons of the built-in patches.
const (
	ReasonNoTimestamp = "no timestamp"
	ReasonNoLabel     = "label absent"
)

// BackfillCreated sets the date property from the note's creation time.
// Records whose property already holds that value are left alone.
func BackfillCreated(property string) Patch {
	return func(r core.Record, n core.Note) (core.Properties, string) {
		if n.CreatedTime == nil {
			return nil, ReasonNoTimestamp
		}
		start := core.FormatISO(*n.CreatedTime)
		if current, err := core.ParseISO(r.Properties[property].Start); err == nil && core.FormatISO(current) == start {
			return nil, ReasonUnchanged
		}
		return core.Properties{property: core.DateValue(start)}, ""
	}
}

// Relabel replaces the label from with to in a multi-select property,
// keeping every other label and their order.
func Relabel(property, from, to string) Patch {
	return func(r core.Record, _ core.Note) (core.Properties, string) {
		current := r.Labels(property)
		if !slices.Contains(current, from) {
			return nil, ReasonNoLabel
		}
		labels := make([]string, 0, len(current))
		for _, l := range current {
			if l == from {
				continue
			}
			labels = append(labels, l)
		}
		if to != "" && !slices.Contains(labels, to) {
			labels = append(labels, to)
		}
		return core.Properties{property: core.MultiSelectValue(labels)}, ""
	}
}
