// ABOUTME: Access hierarchy graph generation
// ABOUTME: Renders the users a viewer can see, with reporting lines, as Graphviz DOT
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/models"
)

// HierarchyGraph draws every user visible to viewer. Edges run from a
// leader to each rep that reports to them; the viewer is filled.
func HierarchyGraph(ctx context.Context, viewer models.User, all []models.User) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.TBRank)
	graph.SetLabel(fmt.Sprintf("Report scope for %s", viewer.Name))

	visible := analytics.VisibleUsers(viewer, all)
	nodes := make(map[string]*cgraph.Node, len(visible))
	for _, u := range visible {
		node, err := graph.CreateNodeByName(u.ID)
		if err != nil {
			return "", fmt.Errorf("failed to create node for %s: %w", u.ID, err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%s", u.Name, u.Role))
		node.SetShape(roleShape(u.Role))
		if u.ID == viewer.ID {
			node.SetStyle(cgraph.FilledNodeStyle)
			node.SetFillColor("lightblue")
		}
		nodes[u.ID] = node
	}

	for _, u := range visible {
		if u.TeamLeaderID == nil {
			continue
		}
		leader, ok := nodes[*u.TeamLeaderID]
		if !ok {
			continue
		}
		edge, err := graph.CreateEdgeByName(u.ID+"_reports_to", leader, nodes[u.ID])
		if err != nil {
			return "", fmt.Errorf("failed to create edge for %s: %w", u.ID, err)
		}
		edge.SetLabel("leads")
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

func roleShape(r models.Role) cgraph.Shape {
	switch r {
	case models.RoleAdmin, models.RoleSalesAdmin:
		return cgraph.DoubleOctagonShape
	case models.RoleTeamLeader:
		return cgraph.BoxShape
	}
	return cgraph.EllipseShape
}
