package protocol

// RxMessage is a frame handed up by the transceiver together with the
// link quality it was received at
type RxMessage struct {
	Payload string `json:"messagePayload"`
	Size    int    `json:"messageSize"`
	RSSI    int    `json:"messageRssi"`
	SNR     int    `json:"messageSnr"`
}
