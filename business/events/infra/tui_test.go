package infra

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrrnn/universe/business/events/domain"
	nodedomain "github.com/mmrrnn/universe/business/node/domain"
	"github.com/mmrrnn/universe/pkg/ui"
)

func TestTUISink_MapsPayloads(t *testing.T) {
	var got []tea.Msg
	sink := NewTUISink(func(m tea.Msg) { got = append(got, m) })
	ctx := context.Background()

	require.NoError(t, sink.Publish(ctx, domain.Event{
		EventType: domain.BaseNodeUpdate,
		Payload:   nodedomain.BaseNodeStatus{BlockHeight: 5},
	}, nil))
	require.NoError(t, sink.Publish(ctx, domain.Event{
		EventType: domain.NewBlockHeight,
		Payload:   domain.NewBlockHeightPayload{BlockHeight: 6},
	}, nil))
	require.NoError(t, sink.Publish(ctx, domain.Event{
		EventType: domain.ConnectedPeersUpdate,
		Payload:   []string{"/ip4/1.2.3.4/tcp/18189"},
	}, nil))
	require.NoError(t, sink.Publish(ctx, domain.Event{
		EventType: domain.WalletAddressUpdate,
		Payload:   domain.WalletAddressPayload{Base58: "x"},
	}, nil))

	require.Len(t, got, 3)
	assert.Equal(t, ui.NodeStatusMsg{Status: nodedomain.BaseNodeStatus{BlockHeight: 5}}, got[0])
	assert.Equal(t, ui.BlockMsg{Height: 6}, got[1])
	assert.Equal(t, ui.PeersMsg{Peers: []string{"/ip4/1.2.3.4/tcp/18189"}}, got[2])
}
