package delivery

import "strings"

// Tier is a subscription level and the highest bitrate it is entitled to.
type Tier struct {
	Name    string
	Bitrate int
}

// tierPolicy is ordered by ascending bitrate; the first entry is the default.
var tierPolicy = []Tier{
	{Name: "free", Bitrate: 128},
	{Name: "premium", Bitrate: 192},
	{Name: "vip", Bitrate: 320},
}

// Tiers returns a copy of the tier policy, lowest bitrate first.
func Tiers() []Tier {
	out := make([]Tier, len(tierPolicy))
	copy(out, tierPolicy)
	return out
}

// LookupTier resolves a tier name. Unknown names resolve to the lowest tier.
func LookupTier(name string) Tier {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, t := range tierPolicy {
		if t.Name == n {
			return t
		}
	}
	return tierPolicy[0]
}

// RequiredBitrate returns the bitrate a tier should be served.
func RequiredBitrate(tier string) int {
	return LookupTier(tier).Bitrate
}
