package tools

// Small JSON Schema builders for tool input descriptions.

func object(props map[string]any, required ...string) map[string]any {
	schema := map[string]any{"type": "object", "properties": props}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func integer(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func enum(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}

func array(items map[string]any, description string) map[string]any {
	return map[string]any{"type": "array", "description": description, "items": items}
}

func newsItemSchema() map[string]any {
	return object(map[string]any{
		"title":           str("Headline."),
		"summary":         str("One or two sentence summary."),
		"url":             str("Canonical article URL."),
		"source":          str("Publisher name."),
		"category":        str("Category name; reused when it already exists."),
		"confidence":      enum("Confidence in the selection; low-confidence items must be excluded instead.", "high", "medium"),
		"relevance_score": integer("Relevance from 1 to 10."),
		"published_at":    str("Publication time, RFC3339 or YYYY-MM-DD."),
	}, "title", "summary", "url", "source", "category", "confidence")
}

func excludedItemSchema() map[string]any {
	return object(map[string]any{
		"url":      str("Article URL."),
		"title":    str("Headline."),
		"category": str("Category name."),
		"reason":   enum("Why the item was excluded.", "off_topic", "duplicate", "low_priority", "outdated"),
		"score":    integer("Relevance from 1 to 10."),
		"source":   str("Publisher name."),
	}, "url", "title", "category", "reason", "score")
}
