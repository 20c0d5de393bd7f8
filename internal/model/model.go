package model

// Protocol numbers we care about when rendering statistics. Anything else is
// reported by its raw value.
const (
	ProtocolTCP uint8 = 6
	ProtocolUDP uint8 = 17
)

// FlowRecord is one observed network event after schema normalization.
// Records are immutable once produced.
type FlowRecord struct {
	SrcIP     string `json:"src_ip"`
	DstIP     string `json:"dst_ip"`
	SrcPort   uint16 `json:"src_port"`
	DstPort   uint16 `json:"dst_port"`
	Protocol  uint8  `json:"protocol"`
	Bytes     int64  `json:"bytes"`
	Packets   int64  `json:"packets"`
	Timestamp int64  `json:"timestamp"`
}

// FlowKey identifies the flow a record belongs to: the directional
// (source IP, destination IP) pair. It is a structured pair rather than a
// delimited string so that an address containing a separator character can
// never alias another flow.
type FlowKey struct {
	SrcIP string
	DstIP string
}

// Key returns the record's flow identity.
func (r FlowRecord) Key() FlowKey {
	return FlowKey{SrcIP: r.SrcIP, DstIP: r.DstIP}
}

// String renders the key in the conventional "src-dst" display form.
func (k FlowKey) String() string {
	return k.SrcIP + "-" + k.DstIP
}

// AlertRecord is one worker's classification decision for an observation
// window, as emitted by the external detector processes. Field order mirrors
// the alerts CSV layout.
type AlertRecord struct {
	WorkerRank       int     `json:"worker_rank"`
	AttackFlag       int     `json:"attack_flag"`
	SuspiciousIP     string  `json:"suspicious_ip"`
	Entropy          float64 `json:"entropy"`
	AvgRate          float64 `json:"avg_rate"`
	SpikeScore       float64 `json:"spike_score"`
	TotalPackets     int64   `json:"total_packets"`
	TotalFlows       int64   `json:"total_flows"`
	EntropyDetected  int     `json:"entropy_detected"`
	CusumDetected    int     `json:"cusum_detected"`
	MLDetected       int     `json:"ml_detected"`
	GlobalAttack     int     `json:"global_attack"`
	ChosenIP         string  `json:"chosen_ip"`
	ProcessingTimeMS float64 `json:"processing_time_ms"`
	MemoryUsedKB     float64 `json:"memory_used_kb"`
}

// BlockingRecord is one worker's mitigation outcome.
type BlockingRecord struct {
	BlockedIP                string  `json:"blocked_ip"`
	AttackPacketsBlocked     int64   `json:"attack_packets_blocked"`
	LegitimatePacketsBlocked int64   `json:"legitimate_packets_blocked"`
	BlockingEfficiency       float64 `json:"blocking_efficiency"`
	CollateralDamage         float64 `json:"collateral_damage"`
	BlockTimeMS              float64 `json:"block_time_ms"`
}
