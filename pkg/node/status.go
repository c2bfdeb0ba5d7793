package node

// Status summarises what the node can do and what it has done
type Status struct {
	TxID                 uint16 `json:"txId"`
	DictionaryLoaded     bool   `json:"dictionaryLoaded"`
	Dictionaries         int    `json:"dictionaries"`
	Words                int    `json:"words"`
	CryptoLoaded         bool   `json:"cryptoLoaded"`
	PadID                string `json:"padId,omitempty"`
	NextBlock            int    `json:"nextBlock"`
	RemainingBlocks      int    `json:"remainingBlocks"`
	BlockCapacity        int    `json:"blockCapacity"`
	RespondToAck         bool   `json:"respondToAck"`
	RespondToRebroadcast bool   `json:"respondToRebroadcast"`
	Received             uint64 `json:"received"`
	Sent                 uint64 `json:"sent"`
	Relayed              uint64 `json:"relayed"`
	Acked                uint64 `json:"acked"`
}

// Status returns a snapshot of the node state
func (n *Node) Status() Status {
	s := Status{
		TxID:                 n.opts.TxID,
		DictionaryLoaded:     n.codec.DictionaryLoaded(),
		CryptoLoaded:         n.codec.CryptoLoaded(),
		RespondToAck:         n.opts.RespondToAck,
		RespondToRebroadcast: n.opts.RespondToRebroadcast,
		Received:             n.received.Load(),
		Sent:                 n.sent.Load(),
		Relayed:              n.relayed.Load(),
		Acked:                n.acked.Load(),
	}

	if n.dict != nil {
		s.Dictionaries = len(n.dict.Dictionaries())
		s.Words = n.dict.Len()
	}

	if n.pad != nil {
		meta := n.pad.Metadata()
		s.PadID = meta.OTPID
		s.NextBlock = meta.CurrentBlockID
		s.RemainingBlocks = n.pad.Remaining()
		s.BlockCapacity = n.pad.Capacity()
	}

	return s
}
