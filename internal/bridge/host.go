package bridge

import (
	"context"

	"bricklabels.dev/internal/protocol"
)

// The client implements the service's Host interface.

func (c *Client) Player(ctx context.Context, name string) (protocol.PlayerInfo, error) {
	var p protocol.PlayerInfo
	err := c.Call(ctx, protocol.MethodGetPlayer, protocol.GetPlayerParams{Name: name}, &p)
	return p, err
}

func (c *Client) SaveData(ctx context.Context, center, extent *[3]int) (*protocol.SaveData, error) {
	var data protocol.SaveData
	params := protocol.GetSaveDataParams{Center: center, Extent: extent}
	if err := c.Call(ctx, protocol.MethodGetSaveData, params, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) Whisper(playerID, text string) {
	c.Notify(protocol.MethodWhisper, protocol.MessageParams{PlayerID: playerID, Text: text})
}

func (c *Client) MiddlePrint(playerID, text string) {
	c.Notify(protocol.MethodMiddlePrint, protocol.MessageParams{PlayerID: playerID, Text: text})
}
