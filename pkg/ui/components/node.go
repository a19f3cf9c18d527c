package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	nodedomain "github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/internal/asset"
)

// NodeComponent renders the base node snapshot and sync progress.
type NodeComponent struct {
	status    nodedomain.BaseNodeStatus
	seen      bool
	syncPhase string
	syncPct   float64
	peers     []string
}

func NewNodeComponent() *NodeComponent {
	return &NodeComponent{}
}

func (c *NodeComponent) SetStatus(s nodedomain.BaseNodeStatus) {
	c.status = s
	c.seen = true
}

func (c *NodeComponent) SetSync(phase string, pct float64) {
	c.syncPhase = phase
	c.syncPct = pct
}

func (c *NodeComponent) SetPeers(peers []string) {
	c.peers = peers
}

func (c *NodeComponent) View() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)

	var b strings.Builder
	b.WriteString(header.Render("BASE NODE"))
	b.WriteString("\n\n")

	if !c.seen {
		b.WriteString(muted.Render("  Waiting for node..."))
		return b.String()
	}

	synced := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Render("synced")
	if !c.status.IsSynced {
		synced = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).
			Render(fmt.Sprintf("syncing %s %.0f%%", c.syncPhase, c.syncPct*100))
	}

	fmt.Fprintf(&b, "  Height:      %s (%s)\n", value.Render(fmt.Sprintf("#%d", c.status.BlockHeight)), synced)
	fmt.Fprintf(&b, "  Reward:      %s\n", value.Render(asset.NewAmountFromUint64(asset.XTM, c.status.BlockReward).String()))
	fmt.Fprintf(&b, "  RandomX:     %s\n", value.Render(FormatHashRate(float64(c.status.RandomXNetworkHashrate))))
	fmt.Fprintf(&b, "  Sha3x:       %s\n", value.Render(FormatHashRate(float64(c.status.ShaNetworkHashrate))))
	fmt.Fprintf(&b, "  Connections: %s\n", value.Render(fmt.Sprintf("%d", c.status.NumConnections)))

	for i, p := range c.peers {
		if i == 3 {
			b.WriteString(muted.Render(fmt.Sprintf("  … %d more\n", len(c.peers)-3)))
			break
		}
		b.WriteString(muted.Render("  · " + p + "\n"))
	}
	return b.String()
}

// FormatHashRate renders a hash rate with a metric suffix.
func FormatHashRate(h float64) string {
	units := []string{"H/s", "kH/s", "MH/s", "GH/s", "TH/s", "PH/s"}
	i := 0
	for h >= 1000 && i < len(units)-1 {
		h /= 1000
		i++
	}
	return fmt.Sprintf("%.2f %s", h, units[i])
}
