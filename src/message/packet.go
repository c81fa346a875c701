package message

// Type identifiers registered on the transport routing layer. They map
// one-to-one onto the protocol messages and must match the identifiers used
// by every other node on the network.
const (
	TypeBlockMessage             = "casper.BlockMessage"
	TypeBlockRequest             = "casper.BlockRequest"
	TypeForkChoiceTipRequest     = "casper.ForkChoiceTipRequest"
	TypeApprovedBlock            = "casper.ApprovedBlock"
	TypeApprovedBlockRequest     = "casper.ApprovedBlockRequest"
	TypeUnapprovedBlock          = "casper.UnapprovedBlock"
	TypeBlockApproval            = "casper.BlockApproval"
	TypeNoApprovedBlockAvailable = "casper.NoApprovedBlockAvailable"
)

// Packet is the routing-layer envelope: a registered type identifier plus
// the canonical encoding of the corresponding message.
type Packet struct {
	TypeID  string
	Content []byte
}

// NewPacket encodes msg under typeID.
func NewPacket(typeID string, msg interface{}) (*Packet, error) {
	content, err := marshal(msg)
	if err != nil {
		return nil, err
	}
	return &Packet{TypeID: typeID, Content: content}, nil
}

// NewBlockMessagePacket ...
func NewBlockMessagePacket(b *Block) (*Packet, error) {
	return NewPacket(TypeBlockMessage, &b.Body)
}

// NewBlockRequestPacket ...
func NewBlockRequestPacket(r *BlockRequest) (*Packet, error) {
	return NewPacket(TypeBlockRequest, r)
}

// NewForkChoiceTipRequestPacket ...
func NewForkChoiceTipRequestPacket() (*Packet, error) {
	return NewPacket(TypeForkChoiceTipRequest, &ForkChoiceTipRequest{})
}

// NewApprovedBlockPacket ...
func NewApprovedBlockPacket(ab *ApprovedBlock) (*Packet, error) {
	return NewPacket(TypeApprovedBlock, ab)
}

// NewApprovedBlockRequestPacket ...
func NewApprovedBlockRequestPacket(r *ApprovedBlockRequest) (*Packet, error) {
	return NewPacket(TypeApprovedBlockRequest, r)
}

// NewUnapprovedBlockPacket ...
func NewUnapprovedBlockPacket(ub *UnapprovedBlock) (*Packet, error) {
	return NewPacket(TypeUnapprovedBlock, ub)
}

// NewBlockApprovalPacket ...
func NewBlockApprovalPacket(a *BlockApproval) (*Packet, error) {
	return NewPacket(TypeBlockApproval, a)
}

// NewNoApprovedBlockAvailablePacket ...
func NewNoApprovedBlockAvailablePacket(na *NoApprovedBlockAvailable) (*Packet, error) {
	return NewPacket(TypeNoApprovedBlockAvailable, na)
}

// DecodeContent decodes the packet content into v. The caller is expected to
// have matched the TypeID first.
func (p *Packet) DecodeContent(v interface{}) error {
	return unmarshal(p.Content, v)
}
