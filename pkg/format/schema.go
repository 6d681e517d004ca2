package format

import (
	"strings"

	"github.com/aretw0/notesync/pkg/core"
)

// keepColors are the select options offered for Google Keep note colors.
var keepColors = []string{"RED", "ORANGE", "YELLOW", "GREEN", "BLUE", "PURPLE", "PINK", "BROWN", "GRAY"}

// CollectionSchema returns the columns of a new collection for the schema.
func CollectionSchema(schema Schema) core.Schema {
	if schema == SchemaSimple {
		return core.Schema{
			PropTitle:       {Type: core.PropertyTitle},
			PropContent:     {Type: core.PropertyRichText},
			PropLabels:      {Type: core.PropertyMultiSelect},
			PropCreatedDate: {Type: core.PropertyDate},
		}
	}

	colors := make([]core.SelectOption, 0, len(keepColors))
	for _, c := range keepColors {
		colors = append(colors, core.SelectOption{Name: c, Color: strings.ToLower(c)})
	}
	return core.Schema{
		PropTitle: {Type: core.PropertyTitle},
		PropSource: {Type: core.PropertySelect, Options: []core.SelectOption{
			{Name: string(core.SourceGoogleKeep), Color: "yellow"},
			{Name: string(core.SourceAppleNotes), Color: "blue"},
		}},
		PropCreated:  {Type: core.PropertyDate},
		PropUpdated:  {Type: core.PropertyDate},
		PropArchived: {Type: core.PropertyCheckbox},
		PropPinned:   {Type: core.PropertyCheckbox},
		PropColor:    {Type: core.PropertySelect, Options: colors},
		PropTags:     {Type: core.PropertyMultiSelect},
	}
}
