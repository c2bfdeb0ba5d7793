package radio

// TransceiverConfig mirrors the firmware's global radio configuration
type TransceiverConfig struct {
	RFFrequency               uint32 `json:"RF_FREQUENCY"`
	RFIQInversion             int    `json:"RF_IQ_INVERSION"`
	TxOutputPower             int    `json:"TX_OUTPUT_POWER"`
	LoRaBandwidth             int    `json:"LORA_BANDWIDTH"`
	LoRaSpreadingFactor       int    `json:"LORA_SPREADING_FACTOR"`
	LoRaCodingRate            int    `json:"LORA_CODINGRATE"`
	LoRaPreambleLength        int    `json:"LORA_PREAMBLE_LENGTH"`
	LoRaSymbolTimeout         int    `json:"LORA_SYMBOL_TIMEOUT"`
	LoRaFixLengthPayloadOn    bool   `json:"LORA_FIX_LENGTH_PAYLOAD_ON"`
	LoRaIQInversionOn         bool   `json:"LORA_IQ_INVERSION_ON"`
	RxSymTimeout              int    `json:"RX_SYM_TIMEOUT"`
	RxFixedLengthPackets      int    `json:"RX_FIXED_LENGTH_PACKETS"`
	RxFixedPayloadLength      int    `json:"RX_FIXED_PAYLOAD_LENGTH"`
	RxCRCEnabled              int    `json:"RX_CRC_ENABLED"`
	RxIntraPacketFreqHop      int    `json:"RX_INTRA_PACKET_FREQ_HOP_ENABLED"`
	RxIntraPacketHopPeriod    int    `json:"RX_INTRA_PACKET_HOP_PERIOD"`
	RxIQInversion             int    `json:"RX_IQ_INVERSION"`
	RxReceptionContinuous     bool   `json:"RX_RECEP_CONT"`
	RxChannelScanMilliseconds uint32 `json:"RX_CS_MS"`
}

// DefaultTransceiverConfig returns an EU868 SF7/125kHz profile
func DefaultTransceiverConfig() TransceiverConfig {
	return TransceiverConfig{
		RFFrequency:           868000000,
		TxOutputPower:         14,
		LoRaBandwidth:         0,
		LoRaSpreadingFactor:   7,
		LoRaCodingRate:        1,
		LoRaPreambleLength:    8,
		LoRaSymbolTimeout:     5,
		RxCRCEnabled:          1,
		RxReceptionContinuous: true,
	}
}
