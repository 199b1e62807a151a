package retrieval

// Tunable constants for the aggregate quality heuristic. The score mixes
// how full the result set is against the requested top-k, the mean
// relevance across hits, and the best single hit; shallow sections that
// rest on a single source document take a breadth penalty. Each term is
// monotonic in its input, so more or better evidence never lowers the
// score.
const (
	countWeight  = 0.5
	meanWeight   = 0.3
	topWeight    = 0.2
	depthPenalty = 0.1

	// Sections at this level or shallower are expected to synthesize
	// evidence from more than one source document.
	broadEvidenceLevel = 2
)

func scoreQuality(fragments []DocumentFragment, topK, sectionLevel int) float64 {
	if len(fragments) == 0 || topK <= 0 {
		return 0
	}

	countRatio := float64(len(fragments)) / float64(topK)
	if countRatio > 1 {
		countRatio = 1
	}

	var sum, top float64
	sources := map[string]bool{}
	for _, f := range fragments {
		sum += f.Relevance
		if f.Relevance > top {
			top = f.Relevance
		}
		if f.SourceDocID != "" {
			sources[f.SourceDocID] = true
		}
	}
	mean := sum / float64(len(fragments))

	score := countWeight*countRatio + meanWeight*mean + topWeight*top
	if sectionLevel >= 1 && sectionLevel <= broadEvidenceLevel && len(sources) < 2 {
		score -= depthPenalty
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
