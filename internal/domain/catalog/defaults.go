package catalog

// LabelPerson is the detector class used by every default compound activity.
const LabelPerson = "person"

// DefaultDefinitions returns the built-in activity table in declaration order.
func DefaultDefinitions() []ActivityDefinition {
	return []ActivityDefinition{
		{Key: "bicycle", Points: 5, Description: "Eco-friendly transportation", Icon: "🚲"},
		{Key: "potted plant", Points: 5, Description: "Indoor air purification", Icon: "🪴"},
		{Key: "tree", Points: 8, Description: "Carbon absorption champion", Icon: "🌳"},
		{Key: "person and bicycle", Points: 12, Description: "Active green commuting", Icon: "🚴", Components: []string{LabelPerson, "bicycle"}},
		{Key: "person and tree", Points: 15, Description: "Tree planting/care activity", Icon: "🌱", Components: []string{LabelPerson, "tree"}},
		{Key: "person and plant", Points: 10, Description: "Gardening & plant care", Icon: "👨‍🌾", Components: []string{LabelPerson, "potted plant"}},
		{Key: "boat", Points: 3, Description: "Water transportation", Icon: "⛵"},
	}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewWithOptions([]Option{WithDetectorLabels(LabelPerson)}, DefaultDefinitions()...)
	if err != nil {
		panic(err)
	}
	return c
}
