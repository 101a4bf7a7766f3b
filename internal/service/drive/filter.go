package drive

import (
	"strconv"
	"strings"

	models "clouddrive/internal/domain/models/drive"
)

const bytesPerMB = 1024 * 1024

// fileExtension returns the lowercased suffix after the last dot. A name
// without a dot is its own extension ("Makefile" -> "makefile").
func fileExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return strings.ToLower(name)
	}
	return strings.ToLower(name[i+1:])
}

// mediaType returns the lowercased part of a MIME type before the slash
func mediaType(mimeType string) string {
	top, _, _ := strings.Cut(mimeType, "/")
	return strings.ToLower(strings.TrimSpace(top))
}

// matchFilter evaluates one filter against a file.
// Unknown field/operator pairs never match.
func matchFilter(f models.Filter, file *models.Item) bool {
	value := strings.ToLower(f.Value)

	switch f.Field {
	case models.FieldName:
		name := strings.ToLower(file.Name)
		switch f.Operator {
		case models.OpEquals:
			return name == value
		case models.OpContains:
			return strings.Contains(name, value)
		case models.OpStartsWith:
			return strings.HasPrefix(name, value)
		case models.OpEndsWith:
			return strings.HasSuffix(name, value)
		}

	case models.FieldExtension:
		if f.Operator == models.OpEquals {
			return fileExtension(file.Name) == strings.TrimPrefix(value, ".")
		}

	case models.FieldMediaType:
		if f.Operator == models.OpEquals && file.MimeType != "" {
			return mediaType(file.MimeType) == value
		}

	case models.FieldSize:
		if f.Operator == models.OpGreaterThan {
			threshold, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
			if err != nil {
				return false
			}
			return float64(file.Size)/bytesPerMB > threshold
		}
	}
	return false
}

// matchFlows collects the actions of every matching flow, in flow order
func matchFlows(flows []models.FlowStep, file *models.Item) []models.Action {
	actions := []models.Action{}
	for _, flow := range flows {
		if matchFilter(flow.Filter, file) {
			actions = append(actions, flow.Actions...)
		}
	}
	return actions
}
