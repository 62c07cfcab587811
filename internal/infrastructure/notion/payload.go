package notion

import "github.com/tangpeiwen/clipsync/internal/domain"

// propertiesPayload maps the fixed property set onto Notion's typed property
// values. Absent values are written as their explicit empty representation
// (null select, null url, empty arrays), never omitted.
func propertiesPayload(props domain.PageProperties) map[string]any {
	payload := map[string]any{
		"Name": map[string]any{
			"title": []any{textValue(props.Name, "")},
		},
	}

	if props.Preview != "" {
		payload["Title/Content"] = map[string]any{
			"rich_text": []any{textValue(props.Preview, "")},
		}
	} else {
		payload["Title/Content"] = map[string]any{"rich_text": []any{}}
	}

	if props.URL != "" {
		payload["URL"] = map[string]any{"url": props.URL}
	} else {
		payload["URL"] = map[string]any{"url": nil}
	}

	payload["Source"] = selectValue(props.Source)
	payload["Category"] = selectValue(props.Category)

	tags := make([]any, 0, len(props.Tags))
	for _, tag := range props.Tags {
		tags = append(tags, map[string]any{"name": tag})
	}
	payload["Tag"] = map[string]any{"multi_select": tags}

	return payload
}

func selectValue(name string) map[string]any {
	if name == "" {
		return map[string]any{"select": nil}
	}
	return map[string]any{"select": map[string]any{"name": name}}
}

// blockPayload maps one destination-agnostic block onto Notion's block JSON.
func blockPayload(block domain.Block) map[string]any {
	payload := map[string]any{
		"object": "block",
		"type":   string(block.Type),
	}

	switch block.Type {
	case domain.BlockDivider:
		payload["divider"] = map[string]any{}
	case domain.BlockImage:
		payload["image"] = imageValue(block)
	default:
		spans := make([]any, 0, len(block.Spans))
		for _, span := range block.Spans {
			spans = append(spans, spanValue(span))
		}
		payload[string(block.Type)] = map[string]any{"rich_text": spans}
	}

	return payload
}

func imageValue(block domain.Block) map[string]any {
	if block.ImageKind == domain.ImageFile {
		return map[string]any{
			"type": "file",
			"file": map[string]any{
				"url":         block.ImageURL,
				"expiry_time": block.ImageExpiry,
			},
		}
	}
	return map[string]any{
		"type":     "external",
		"external": map[string]any{"url": block.ImageURL},
	}
}

func spanValue(span domain.TextSpan) map[string]any {
	value := textValue(span.Text, span.Link)

	if span.Bold || span.Color != "" {
		annotations := map[string]any{}
		if span.Bold {
			annotations["bold"] = true
		}
		if span.Color != "" {
			annotations["color"] = span.Color
		}
		value["annotations"] = annotations
	}

	return value
}

func textValue(content, link string) map[string]any {
	text := map[string]any{"content": content}
	if link != "" {
		text["link"] = map[string]any{"url": link}
	}
	return map[string]any{
		"type": "text",
		"text": text,
	}
}
