package casper

import (
	"github.com/caspernetworks/casper/src/message"
)

// toCasperMessage converts a routed packet into the protocol message it
// carries. It returns false for unknown type identifiers and for content
// that does not parse; the dispatcher silently drops both, since such
// packets belong to other handlers in the host process or to broken peers.
func toCasperMessage(p *message.Packet) (interface{}, bool) {
	switch p.TypeID {
	case message.TypeBlockMessage:
		var body message.BlockBody
		if err := p.DecodeContent(&body); err != nil {
			return nil, false
		}
		return &message.Block{Body: body}, true

	case message.TypeBlockRequest:
		var m message.BlockRequest
		if err := p.DecodeContent(&m); err != nil {
			return nil, false
		}
		return &m, true

	case message.TypeForkChoiceTipRequest:
		var m message.ForkChoiceTipRequest
		if err := p.DecodeContent(&m); err != nil {
			return nil, false
		}
		return &m, true

	case message.TypeApprovedBlock:
		var m message.ApprovedBlock
		if err := p.DecodeContent(&m); err != nil {
			return nil, false
		}
		return &m, true

	case message.TypeApprovedBlockRequest:
		var m message.ApprovedBlockRequest
		if err := p.DecodeContent(&m); err != nil {
			return nil, false
		}
		return &m, true

	case message.TypeUnapprovedBlock:
		var m message.UnapprovedBlock
		if err := p.DecodeContent(&m); err != nil {
			return nil, false
		}
		return &m, true

	case message.TypeBlockApproval:
		var m message.BlockApproval
		if err := p.DecodeContent(&m); err != nil {
			return nil, false
		}
		return &m, true

	case message.TypeNoApprovedBlockAvailable:
		var m message.NoApprovedBlockAvailable
		if err := p.DecodeContent(&m); err != nil {
			return nil, false
		}
		return &m, true

	default:
		return nil, false
	}
}
