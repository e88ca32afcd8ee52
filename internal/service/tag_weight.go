package service

import "sort"

// TagUsage 描述标签在公开文章中的使用次数
type TagUsage struct {
	Name  string
	Count int64
}

// TagWeight is a tag cloud entry, weight in [floor, 1].
type TagWeight struct {
	Name   string
	Weight float64
}

// ComputeTagWeights turns usage counts into cloud weights. The most used tag gets exactly 1,
// the others are scaled against it and raised to floor when they fall below it. Unused tags are
// dropped. The result is ordered by weight desc, then name asc.
func ComputeTagWeights(usages []TagUsage, totalVisible int64, floor float64) []TagWeight {
	weights := make([]TagWeight, 0, len(usages))
	if totalVisible <= 0 {
		return weights
	}

	var maxRaw float64
	for _, usage := range usages {
		if usage.Count <= 0 {
			continue
		}
		raw := float64(usage.Count) / float64(totalVisible)
		if raw > maxRaw {
			maxRaw = raw
		}
	}
	if maxRaw == 0 {
		return weights
	}

	for _, usage := range usages {
		if usage.Count <= 0 {
			continue
		}
		raw := float64(usage.Count) / float64(totalVisible)

		var weight float64
		if raw == maxRaw {
			weight = 1
		} else {
			weight = raw / maxRaw
		}
		if weight < floor {
			weight = floor
		}
		if weight > 1 {
			weight = 1
		}
		weights = append(weights, TagWeight{Name: usage.Name, Weight: weight})
	}

	sort.SliceStable(weights, func(i, j int) bool {
		if weights[i].Weight != weights[j].Weight {
			return weights[i].Weight > weights[j].Weight
		}
		return weights[i].Name < weights[j].Name
	})
	return weights
}
