package text

// MessageRecord is one decoded message of a message table.
type MessageRecord struct {
	ID             uint16
	TextboxType    uint8
	TextboxYPos    uint8
	Icon           uint16
	NextMessageID  uint16
	FirstItemCost  uint16
	SecondItemCost uint16

	// SegmentID is the high byte of the message offset word.
	SegmentID uint8
	// Offset is the payload offset inside the message data segment.
	Offset uint32
	// Text contains all payload bytes including control codes, their
	// arguments and the terminator.
	Text []byte
}

// IsLast returns whether the record ends its message table.
func (m MessageRecord) IsLast() bool {
	return m.ID == lastMessageID || m.ID == endMessageID
}
