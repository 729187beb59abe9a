package analytics

import (
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
)

// FieldInfo describes one dimension or metric of a property.
type FieldInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// Metadata lists the dimensions and metrics available on a property.
type Metadata struct {
	Dimensions []FieldInfo
	Metrics    []FieldInfo
}

func toMetadata(md *analyticsdata.Metadata) *Metadata {
	result := &Metadata{
		Dimensions: []FieldInfo{},
		Metrics:    []FieldInfo{},
	}
	if md == nil {
		return result
	}

	for _, d := range md.Dimensions {
		if d == nil {
			continue
		}
		result.Dimensions = append(result.Dimensions, toDimensionInfo(d))
	}
	for _, m := range md.Metrics {
		if m == nil {
			continue
		}
		result.Metrics = append(result.Metrics, toMetricInfo(m))
	}
	return result
}

func toDimensionInfo(d *analyticsdata.DimensionMetadata) FieldInfo {
	return FieldInfo{
		Name:        d.ApiName,
		DisplayName: d.UiName,
		Description: d.Description,
	}
}

func toMetricInfo(m *analyticsdata.MetricMetadata) FieldInfo {
	return FieldInfo{
		Name:        m.ApiName,
		DisplayName: m.UiName,
		Description: m.Description,
	}
}
