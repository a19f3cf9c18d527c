package infra

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmrrnn/universe/business/events/domain"
	hwdomain "github.com/mmrrnn/universe/business/hardware/domain"
	minerdomain "github.com/mmrrnn/universe/business/miner/domain"
	nodedomain "github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/pkg/ui"
)

// TUISink forwards events to the terminal dashboard. Events without a
// dashboard view are skipped.
type TUISink struct {
	send func(tea.Msg)
}

// NewTUISink creates a sink that delivers through send, usually ui.Send.
func NewTUISink(send func(tea.Msg)) *TUISink {
	return &TUISink{send: send}
}

func (s *TUISink) Name() string { return "tui" }

func (s *TUISink) Publish(_ context.Context, event domain.Event, _ []byte) error {
	if msg := toMsg(event); msg != nil {
		s.send(msg)
	}
	return nil
}

func toMsg(event domain.Event) tea.Msg {
	switch p := event.Payload.(type) {
	case nodedomain.BaseNodeStatus:
		return ui.NodeStatusMsg{Status: p}
	case domain.NewBlockHeightPayload:
		return ui.BlockMsg{Height: p.BlockHeight}
	case minerdomain.CPUMinerStatus:
		return ui.CPUMinerMsg{Status: p}
	case []hwdomain.PublicDeviceProperties:
		return ui.GPUDevicesMsg{Devices: p}
	case []string:
		if event.EventType == domain.ConnectedPeersUpdate {
			return ui.PeersMsg{Peers: p}
		}
	}
	return nil
}
