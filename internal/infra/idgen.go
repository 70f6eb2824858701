package infra

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// FolioGenerator hands out unique, time-ordered folios for movement batches
// and request IDs.
type FolioGenerator struct {
	node *snowflake.Node
}

// NewFolioGenerator creates a generator for the given node (0..1023).
func NewFolioGenerator(nodeID int64) (*FolioGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &FolioGenerator{node: node}, nil
}

// Nuevo returns a folio like "MOV-1J4K9ZQ2X0".
func (g *FolioGenerator) Nuevo(prefijo string) string {
	return prefijo + "-" + strings.ToUpper(g.node.Generate().Base36())
}

// ID returns a raw base36 snowflake id.
func (g *FolioGenerator) ID() string {
	return g.node.Generate().Base36()
}
