package protocol

// StripTransportPadding removes the slack nibble the transceiver may append
// to a received payload.
//
// The frame carries no length field, so the body length is inferred: a
// dictionary body must be a whole number of 5-character references, and an
// encrypted body is a 4-character block ID followed by such references. When
// that does not hold, exactly one trailing character is dropped. A payload
// that genuinely ends one nibble short cannot be told apart from a padded one.
func StripTransportPadding(packetType PacketType, payload string) string {
	var bodyLen int

	switch packetType {
	case PacketTypeDict:
		bodyLen = len(payload)
	case PacketTypeEncryptedDict:
		bodyLen = len(payload) - BlockIDHexLen
	default:
		return payload
	}

	if bodyLen > 0 && bodyLen%WordRefHexLen != 0 {
		return payload[:len(payload)-1]
	}

	return payload
}
