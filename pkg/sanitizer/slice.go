package sanitizer

func NormalizeStringSlice(items []string, normalizer func(string) string) []string {
	if len(items) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(items))

	for _, item := range items {
		normalized := normalizer(item)

		if normalized == "" {
			continue
		}

		if seen[normalized] {
			continue
		}

		seen[normalized] = true
		result = append(result, normalized)
	}

	return result
}

func NormalizeUserIDs(ids []string) []string {
	return NormalizeStringSlice(ids, NormalizeID)
}

// Without returns items minus anything in exclude, preserving order.
func Without(items, exclude []string) []string {
	if len(exclude) == 0 {
		return items
	}
	drop := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		drop[e] = true
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !drop[item] {
			result = append(result, item)
		}
	}
	return result
}
