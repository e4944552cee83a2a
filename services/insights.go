package services

import (
	"sort"

	"aoe2-units/models"
	"aoe2-units/utils"
)

// InsightService computes statistics over the unit collection
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService creates a new InsightService
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes the report for the given units
func (s *InsightService) Generate(units []*models.Unit) *models.InsightReport {
	report := &models.InsightReport{
		UnitsByBuilding: make(map[string]int),
		UnitsByAge:      make(map[string]int),
	}

	if len(units) == 0 {
		s.logger.Warn("No units to generate insights from")
		return report
	}

	for _, u := range units {
		report.TotalUnits++
		if u.IsElite() {
			report.EliteUnits++
		}
		if u.Building != "" {
			report.UnitsByBuilding[u.Building]++
		}
		if u.Age != "" {
			report.UnitsByAge[u.Age]++
		}

		if u.TotalCost != nil {
			if report.MostExpensive == nil || *u.TotalCost > *report.MostExpensive.TotalCost {
				report.MostExpensive = u
			}
		}

		if u.WikiURL == nil {
			report.WithoutWiki++
		}
		switch u.StrongAgainst.State() {
		case models.LabelsPopulated:
			report.WithLabels++
		case models.LabelsEmpty:
			report.EmptyLabels++
		default:
			report.UnsetLabels++
		}
	}

	// Top 5 by hit points
	withHP := make([]*models.Unit, 0, len(units))
	for _, u := range units {
		if u.HP != nil {
			withHP = append(withHP, u)
		}
	}
	sort.SliceStable(withHP, func(i, j int) bool {
		return *withHP[i].HP > *withHP[j].HP
	})
	maxTop := 5
	if len(withHP) < maxTop {
		maxTop = len(withHP)
	}
	report.TopHP = withHP[:maxTop]

	return report
}
