package provider

// qualityRank orders the quality labels the upstreams use. Higher rank
// means higher resolution. Unknown labels rank 0 and lose to everything.
var qualityRank = map[string]int{
	"360p":  1,
	"480p":  2,
	"540p":  3,
	"720p":  4,
	"1080p": 5,
}

// QualityRank returns the ordering rank for a quality label.
func QualityRank(quality string) int {
	return qualityRank[quality]
}

// ResolveQuality picks the quality an adapter should request upstream:
// the highest available quality that does not exceed the requested one.
// If every available quality exceeds the request, the lowest available
// is returned instead of failing: a quality preference must not make an
// episode unplayable, and the caller sees the actual level in
// VideoInfo.Quality. With no declared qualities the request passes
// through untouched.
func ResolveQuality(requested string, available []string) string {
	if len(available) == 0 {
		return requested
	}

	want := QualityRank(requested)
	best := ""
	bestRank := 0
	lowest := ""
	lowestRank := 0

	for _, q := range available {
		r := QualityRank(q)
		if lowest == "" || r < lowestRank {
			lowest, lowestRank = q, r
		}
		if q == requested {
			return q
		}
		if want > 0 && r > 0 && r <= want && r > bestRank {
			best, bestRank = q, r
		}
	}

	if best != "" {
		return best
	}
	return lowest
}
