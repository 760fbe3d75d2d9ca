package config

import "strings"

// Province represents a Belgian province served by the API
type Province struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

// SupportedProvinces lists the provinces listings are expected to carry.
// Brussels is not formally a province but appears as one in the source
// data, so it is treated as one here.
var SupportedProvinces = []Province{
	{Name: "Antwerp", Region: "Flanders"},
	{Name: "East Flanders", Region: "Flanders"},
	{Name: "Flemish Brabant", Region: "Flanders"},
	{Name: "Limburg", Region: "Flanders"},
	{Name: "West Flanders", Region: "Flanders"},
	{Name: "Hainaut", Region: "Wallonia"},
	{Name: "Liège", Region: "Wallonia"},
	{Name: "Luxembourg", Region: "Wallonia"},
	{Name: "Namur", Region: "Wallonia"},
	{Name: "Walloon Brabant", Region: "Wallonia"},
	{Name: "Brussels", Region: "Brussels"},
}

// GetProvinceNames returns the names of all supported provinces
func GetProvinceNames() []string {
	names := make([]string, len(SupportedProvinces))
	for i, province := range SupportedProvinces {
		names[i] = province.Name
	}
	return names
}

// GetProvinceByName returns a province by name, ignoring case
func GetProvinceByName(name string) *Province {
	for _, province := range SupportedProvinces {
		if strings.EqualFold(province.Name, name) {
			return &province
		}
	}
	return nil
}

// NormalizeProvince converts a province name to its URL slug form:
// lowercase with single hyphens between words
func NormalizeProvince(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "'", "")
	fields := strings.Fields(normalized)
	return strings.Join(fields, "-")
}

// ResolveProvinceSlug maps a URL slug back to the canonical province
// name, or returns the empty string when the slug is unknown
func ResolveProvinceSlug(slug string) string {
	for _, province := range SupportedProvinces {
		if NormalizeProvince(province.Name) == strings.ToLower(slug) {
			return province.Name
		}
	}
	return ""
}
