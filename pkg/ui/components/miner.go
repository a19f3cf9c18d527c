package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	hwdomain "github.com/mmrrnn/universe/business/hardware/domain"
	minerdomain "github.com/mmrrnn/universe/business/miner/domain"
	"github.com/mmrrnn/universe/internal/asset"
)

// MinerComponent renders CPU mining and GPU device state.
type MinerComponent struct {
	cpu     minerdomain.CPUMinerStatus
	devices []hwdomain.PublicDeviceProperties
}

func NewMinerComponent() *MinerComponent {
	return &MinerComponent{}
}

func (c *MinerComponent) SetCPU(s minerdomain.CPUMinerStatus) {
	c.cpu = s
}

func (c *MinerComponent) SetDevices(d []hwdomain.PublicDeviceProperties) {
	c.devices = d
}

func (c *MinerComponent) View() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	value := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	good := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))

	var b strings.Builder
	b.WriteString(header.Render("CPU MINING"))
	b.WriteString("\n\n")

	state := muted.Render("idle")
	if c.cpu.IsMining {
		state = good.Render("mining")
	}
	brand := c.cpu.CPUBrand
	if brand == "" {
		brand = "Unknown CPU"
	}
	fmt.Fprintf(&b, "  %s (%s)\n", brand, state)
	fmt.Fprintf(&b, "  Hash rate: %s  │  CPU: %s\n",
		value.Render(FormatHashRate(c.cpu.HashRate)),
		value.Render(fmt.Sprintf("%d%%", c.cpu.CPUUsage)))
	fmt.Fprintf(&b, "  Est. daily: %s\n", value.Render(asset.NewAmountFromUint64(asset.XTM, c.cpu.EstimatedEarnings).StringFixed(2)))

	b.WriteString("\n")
	b.WriteString(header.Render("GPU DEVICES"))
	b.WriteString("\n\n")
	if len(c.devices) == 0 {
		b.WriteString(muted.Render("  No GPUs detected"))
		return b.String()
	}
	for _, d := range c.devices {
		line := fmt.Sprintf("  %s %s", d.Vendor, d.Name)
		switch {
		case !d.Status.IsReaderImplemented:
			line += muted.Render("  (no reader)")
		case d.Parameters == nil:
			line += muted.Render("  (no reading)")
		default:
			line += fmt.Sprintf("  %.0f%%  %.0f°C / %.0f°C",
				d.Parameters.UsagePercentage,
				d.Parameters.CurrentTemperature,
				d.Parameters.MaxTemperature)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
