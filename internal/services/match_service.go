package services

import (
	"context"
	"strings"
	"time"

	"github.com/alimgiray/devmatch/internal/models"
	"github.com/alimgiray/devmatch/pkg/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PairEvaluation is the full outcome of applying the Bird heuristic to one pair
type PairEvaluation struct {
	Evidence models.MatchEvidence

	SameEmail       bool
	CommonPrefix    bool
	StrongNameMatch bool
	// EmailBasedMatch is computed for auditing but takes no part in Included
	// until the intended heuristic is clarified.
	EmailBasedMatch bool
}

// Included reports whether the pair belongs in the match report
func (e PairEvaluation) Included() bool {
	return !e.SameEmail && e.StrongNameMatch
}

// MatchService finds pairs of developer identities that likely belong to the same person
type MatchService struct {
	normalizer *NormalizerService
	similarity *TextSimilarityService
	prefixes   CommonPrefixSet
	workers    int
}

func NewMatchService(
	normalizer *NormalizerService,
	similarity *TextSimilarityService,
	prefixes CommonPrefixSet,
	workers int,
) *MatchService {
	if workers < 1 {
		workers = 1
	}
	return &MatchService{
		normalizer: normalizer,
		similarity: similarity,
		prefixes:   prefixes,
		workers:    workers,
	}
}

// Match evaluates every unordered pair of devs and returns the pairs judged to
// be the same identity, ordered by (i, j) position.
func (s *MatchService) Match(ctx context.Context, devs []models.Developer, threshold float64) (*models.MatchReport, error) {
	if err := models.ValidateThreshold(threshold); err != nil {
		return nil, err
	}

	start := time.Now()
	n := len(devs)

	normalized := make([]models.NormalizedDeveloper, n)
	for i, dev := range devs {
		normalized[i] = s.normalizer.Normalize(dev)
	}

	// One slot per first index; concatenating them in order reproduces
	// the sequential enumeration order.
	shards := make([][]models.MatchEvidence, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := 0; i < n-1; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var matches []models.MatchEvidence
			for a, b := range PairsFrom(i, n) {
				eval := s.evaluate(devs[a], devs[b], normalized[a], normalized[b], threshold)
				if eval.Included() {
					matches = append(matches, eval.Evidence)
				}
			}
			shards[i] = matches
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &models.MatchReport{
		Threshold:      threshold,
		DeveloperCount: n,
		PairsEvaluated: PairCount(n),
		Matches:        make([]models.MatchEvidence, 0),
	}
	for _, shard := range shards {
		report.Matches = append(report.Matches, shard...)
	}

	logger.WithFields(logrus.Fields{
		"developers": n,
		"pairs":      report.PairsEvaluated,
		"matches":    len(report.Matches),
		"threshold":  threshold,
		"workers":    s.workers,
		"duration":   time.Since(start).String(),
	}).Info("Match completed")

	return report, nil
}

// Evaluate applies the heuristic to a single pair of raw developers
func (s *MatchService) Evaluate(a, b models.Developer, threshold float64) PairEvaluation {
	return s.evaluate(a, b, s.normalizer.Normalize(a), s.normalizer.Normalize(b), threshold)
}

func (s *MatchService) evaluate(rawA, rawB models.Developer, a, b models.NormalizedDeveloper, threshold float64) PairEvaluation {
	evidence := models.MatchEvidence{
		Name1:  rawA.Name,
		Email1: rawA.Email,
		Name2:  rawB.Name,
		Email2: rawB.Email,
		C1:     s.similarity.CalculateSimilarity(a.FullName, b.FullName),
		C2:     s.similarity.CalculateSimilarity(a.EmailLocal, b.EmailLocal),
		C31:    s.similarity.CalculateSimilarity(a.First, b.First),
		C32:    s.similarity.CalculateSimilarity(a.Last, b.Last),
		C4:     initialAndLastInLocal(a, b.EmailLocal),
		C5:     lastInitialAndFirstInLocal(a, b.EmailLocal),
		C6:     initialAndLastInLocal(b, a.EmailLocal),
		C7:     lastInitialAndFirstInLocal(b, a.EmailLocal),
	}

	eval := PairEvaluation{
		Evidence:     evidence,
		SameEmail:    rawA.Email == rawB.Email,
		CommonPrefix: s.prefixes.Contains(a.EmailLocal) || s.prefixes.Contains(b.EmailLocal),
		StrongNameMatch: evidence.C1 >= threshold ||
			(evidence.C31 >= threshold && evidence.C32 >= threshold),
	}

	if !eval.CommonPrefix {
		eval.EmailBasedMatch = evidence.C2 >= threshold ||
			evidence.C4 || evidence.C5 || evidence.C6 || evidence.C7
	}

	return eval
}

// initialAndLastInLocal detects local-parts like "jsmith" for "John Smith"
func initialAndLastInLocal(dev models.NormalizedDeveloper, local string) bool {
	if dev.InitialFirst == "" || dev.Last == "" {
		return false
	}
	return strings.Contains(local, dev.InitialFirst) && strings.Contains(local, dev.Last)
}

// lastInitialAndFirstInLocal detects local-parts like "johns" for "John Smith"
func lastInitialAndFirstInLocal(dev models.NormalizedDeveloper, local string) bool {
	if dev.InitialLast == "" {
		return false
	}
	return strings.Contains(local, dev.InitialLast) && strings.Contains(local, dev.First)
}
