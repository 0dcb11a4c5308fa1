package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cidade-aberta/urbanq/internal/domain"
)

// Counting answers aggregate questions directly from the structured
// tables instead of going through retrieval.
type Counting struct {
	counter Counter
}

// NewCounting creates the counting agent.
func NewCounting(counter Counter) *Counting {
	return &Counting{counter: counter}
}

func (a *Counting) Type() string { return domain.AgentCounting }

const zoneListLimit = 50

func (a *Counting) Execute(ctx context.Context, query string, actx Context) (domain.AgentResult, error) {
	folded := strings.ToLower(query)

	if nb := actx.Classification.Entities.Neighborhood; nb != "" {
		recs, err := a.counter.ZonesForNeighborhood(ctx, nb, zoneListLimit)
		if err != nil {
			return domain.AgentResult{}, fmt.Errorf("count zones for %s: %w", nb, err)
		}
		zones := zoneCodes(recs)
		res := a.result(
			fmt.Sprintf("O bairro %s possui %d zona(s): %s.", nb, len(zones), strings.Join(zones, ", ")),
			map[string]string{"subject": "bairro", "bairro": nb, "count": fmt.Sprintf("%d", len(zones))},
		)
		res.Data = recs
		return res, nil
	}

	if strings.Contains(folded, "zona") || strings.Contains(folded, "zot") {
		n, err := a.counter.CountZones(ctx)
		if err != nil {
			return domain.AgentResult{}, fmt.Errorf("count zones: %w", err)
		}
		return a.result(
			fmt.Sprintf("Porto Alegre possui %d zonas de ordenamento territorial.", n),
			map[string]string{"subject": "zonas", "count": fmt.Sprintf("%d", n)},
		), nil
	}

	n, err := a.counter.CountNeighborhoods(ctx)
	if err != nil {
		return domain.AgentResult{}, fmt.Errorf("count neighborhoods: %w", err)
	}
	return a.result(
		fmt.Sprintf("Porto Alegre possui %d bairros.", n),
		map[string]string{"subject": "bairros", "count": fmt.Sprintf("%d", n)},
	), nil
}

func zoneCodes(recs []domain.Record) []string {
	var zones []string
	seen := make(map[string]struct{})
	for _, r := range recs {
		z := r.Metadata["zona"]
		if z == "" {
			continue
		}
		if _, dup := seen[z]; dup {
			continue
		}
		seen[z] = struct{}{}
		zones = append(zones, z)
	}
	return zones
}

func (a *Counting) result(summary string, meta map[string]string) domain.AgentResult {
	return domain.AgentResult{
		Type:       domain.AgentCounting,
		Confidence: 0.9,
		Summary:    summary,
		Metadata:   meta,
	}
}
