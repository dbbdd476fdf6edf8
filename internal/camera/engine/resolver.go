package engine

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/camsync/internal/camera/cloud"
	"github.com/dmitrijs2005/camsync/internal/camera/models"
)

// Disposition is the resolved action for one record: upload (no node),
// no-op (node in target folder or in trash) or copy (node elsewhere).
// Computed fresh per invocation, never cached across batches.
type Disposition struct {
	// ExistsInTarget is nil when the matching node is in the trash and must
	// be ignored for copy purposes.
	ExistsInTarget *bool
	// Node is nil when no match was found anywhere, meaning upload required.
	Node *cloud.Node
}

// resolveDisposition searches the cloud for a node matching either of the
// record's fingerprints and classifies it against the target folder. When
// several nodes match, one already in the target folder wins, then any
// non-trashed node, then a trashed one.
func resolveDisposition(ctx context.Context, searcher cloud.Searcher, rec *models.UploadRecord, target cloud.NodeID) (Disposition, error) {
	fingerprints := []string{rec.OriginalFingerprint}
	if rec.GeneratedFingerprint != "" && rec.GeneratedFingerprint != rec.OriginalFingerprint {
		fingerprints = append(fingerprints, rec.GeneratedFingerprint)
	}

	var candidates []cloud.Node
	for _, fp := range fingerprints {
		if fp == "" {
			continue
		}
		nodes, err := searcher.SearchByFingerprint(ctx, fp)
		if err != nil {
			return Disposition{}, fmt.Errorf("search by fingerprint: %w", err)
		}
		candidates = append(candidates, nodes...)
	}

	if len(candidates) == 0 {
		return Disposition{}, nil
	}

	best := candidates[0]
	for _, n := range candidates[1:] {
		if rank(n, target) > rank(best, target) {
			best = n
		}
	}

	if best.InTrash {
		return Disposition{Node: &best}, nil
	}

	inTarget := best.ParentID == target
	return Disposition{ExistsInTarget: &inTarget, Node: &best}, nil
}

func rank(n cloud.Node, target cloud.NodeID) int {
	switch {
	case !n.InTrash && n.ParentID == target:
		return 2
	case !n.InTrash:
		return 1
	default:
		return 0
	}
}
