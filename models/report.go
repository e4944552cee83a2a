package models

// InsightReport holds computed statistics over the final unit collection
type InsightReport struct {
	TotalUnits      int
	EliteUnits      int
	UnitsByBuilding map[string]int
	UnitsByAge      map[string]int
	MostExpensive   *Unit
	TopHP           []*Unit

	// Enrichment coverage
	WithLabels  int
	EmptyLabels int
	UnsetLabels int
	WithoutWiki int
}
