package reltio

import "strings"

// SimplifyAttributes collapses a Reltio attributes document down to plain
// values. Each attribute holds a list of {value: ...} items; nested value
// objects recurse, singleton lists become scalars, and attributes with no
// usable items are omitted.
func SimplifyAttributes(attributes map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for key, raw := range attributes {
		items, ok := raw.([]interface{})
		if !ok || len(items) == 0 {
			continue
		}

		simplified := make([]interface{}, 0, len(items))
		for _, item := range items {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			value, present := entry["value"]
			if !present {
				continue
			}
			if nested, ok := value.(map[string]interface{}); ok {
				simplified = append(simplified, SimplifyAttributes(nested))
			} else {
				simplified = append(simplified, value)
			}
		}

		if len(simplified) == 0 {
			continue
		}
		if len(simplified) == 1 {
			result[key] = simplified[0]
		} else {
			result[key] = simplified
		}
	}
	return result
}

// SlimCrosswalks keeps only id, type, value and createDate for each
// crosswalk. Non-object items are skipped.
func SlimCrosswalks(crosswalks []interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(crosswalks))
	for _, raw := range crosswalks {
		cw, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		var idValue interface{}
		if uri, _ := cw["uri"].(string); uri != "" && strings.Contains(uri, "/") {
			idValue = uri[strings.LastIndex(uri, "/")+1:]
		} else {
			idValue = cw["id"]
		}

		typeValue, _ := cw["type"].(string)
		if typeValue != "" && strings.Contains(typeValue, "/") {
			typeValue = typeValue[strings.LastIndex(typeValue, "/")+1:]
		}

		createDate := cw["createDate"]
		if createDate == nil {
			createDate = cw["createTime"]
		}
		if createDate == nil {
			createDate = cw["createdTime"]
		}

		out = append(out, map[string]interface{}{
			"id":         idValue,
			"type":       typeValue,
			"value":      cw["value"],
			"createDate": createDate,
		})
	}
	return out
}

// FormatEntityMatches reshapes a _transitiveMatches response into a map
// keyed by the matched entity URI.
func FormatEntityMatches(matches []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(matches))
	for _, raw := range matches {
		match, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		object, _ := match["object"].(map[string]interface{})
		uri, _ := object["uri"].(string)
		if uri == "" {
			continue
		}
		out[uri] = map[string]interface{}{
			"matchRules":  match["matchRules"],
			"createdTime": match["createdTime"],
			"matchScore":  match["matchScore"],
			"relevance":   match["relevance"],
			"label":       match["label"],
		}
	}
	return out
}

// ExtractID returns the trailing segment of an entity or relation URI.
// Plain IDs pass through unchanged, making the operation idempotent.
func ExtractID(uri string) string {
	if uri == "" {
		return "N/A"
	}
	if idx := strings.LastIndex(uri, "/"); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}

// ExtractName pulls the first Name value out of an entity attributes
// document.
func ExtractName(attributes map[string]interface{}) string {
	nameAttr, ok := attributes["Name"].([]interface{})
	if !ok || len(nameAttr) == 0 {
		return "N/A"
	}
	first, ok := nameAttr[0].(map[string]interface{})
	if !ok {
		return "N/A"
	}
	if value, ok := first["value"].(string); ok {
		return value
	}
	return "N/A"
}
