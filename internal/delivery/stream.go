package delivery

import "github.com/fhuszti/music-delivery-ms-go/internal/model"

// GetStreamingURL picks the variant a listener of the given tier should receive.
func (s *Service) GetStreamingURL(variants model.Variants, tier string) (string, error) {
	return ResolveStreamingURL(variants, tier)
}

// ResolveStreamingURL applies, in order: exact match on the tier's bitrate, the highest
// bitrate not exceeding it, then the lowest bitrate available.
func ResolveStreamingURL(variants model.Variants, tier string) (string, error) {
	if len(variants) == 0 {
		return "", ErrNoVariantsAvailable
	}

	required := RequiredBitrate(tier)
	if url, ok := variants[required]; ok {
		return url, nil
	}

	bitrates := variants.Bitrates()
	best, found := 0, false
	for _, b := range bitrates {
		if b > required {
			break
		}
		best, found = b, true
	}
	if found {
		return variants[best], nil
	}

	return variants[bitrates[0]], nil
}
